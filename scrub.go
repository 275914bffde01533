package sivkmac

import "runtime"

// scrubBytes overwrites b with zeros. runtime.KeepAlive pins b past the
// final write so the compiler cannot prove the store is dead and elide it,
// the Go equivalent of the teacher corpus's ZeroizeKey/ZeroizeKeys helpers
// for OPENSSL_cleanse-style scrubbing.
func scrubBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
