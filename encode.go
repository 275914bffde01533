package sivkmac

import "fmt"

// minimalBytes returns the minimum number of bytes needed to hold x in a
// big-endian representation, treating 0 as requiring one byte.
func minimalBytes(x uint64) int {
	if x == 0 {
		return 1
	}
	n := 0
	for v := x; v != 0; v >>= 8 {
		n++
	}
	return n
}

// leftEncode returns left_encode(x): the byte-count n followed by the
// n-byte big-endian encoding of x. left_encode(0) = 0x01 0x00.
func leftEncode(x uint64) []byte {
	n := minimalBytes(x)
	out := make([]byte, n+1)
	out[0] = byte(n)
	for i := n; i >= 1; i-- {
		out[i] = byte(x)
		x >>= 8
	}
	return out
}

// rightEncode returns right_encode(x): the n-byte big-endian encoding of x
// followed by the byte-count n.
func rightEncode(x uint64) []byte {
	n := minimalBytes(x)
	out := make([]byte, n+1)
	out[n] = byte(n)
	for i := n; i >= 1; i-- {
		out[i-1] = byte(x)
		x >>= 8
	}
	return out
}

// encodeString returns encode_string(S) = left_encode(8*|S|) || S, per SP
// 800-185 §2.3.2. left_encode's bit-length prefix is itself a variable
// number of bytes — one byte for S up to 31 bytes, two bytes up to 8191
// bytes, and so on — and SP 800-185 places no cap on |S| that would limit
// it to a single magnitude byte. KMAC's own mandatory key path encodes a
// 255-byte-capable key through encode_string (kmac.go's SetKey), which
// already needs the two-byte form for any key over 31 bytes, so that
// narrower single-byte reading cannot be applied here. No input length is
// rejected: the error return is always nil.
func encodeString(s []byte) ([]byte, error) {
	bitLen := uint64(len(s)) * 8
	enc := leftEncode(bitLen)
	out := make([]byte, 0, len(enc)+len(s))
	out = append(out, enc...)
	out = append(out, s...)
	return out, nil
}

// bytepad returns left_encode(w) || x, zero-padded on the right to the next
// multiple of w (w in bytes). w must be positive.
func bytepad(x []byte, w int) ([]byte, error) {
	if w <= 0 {
		return nil, fmt.Errorf("%w: bytepad block size must be positive, got %d", ErrEncodingOverflow, w)
	}
	prefix := leftEncode(uint64(w))
	total := len(prefix) + len(x)
	padded := (total + w - 1) / w * w

	out := make([]byte, padded)
	copy(out, prefix)
	copy(out[len(prefix):], x)
	return out, nil
}
