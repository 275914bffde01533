package sivkmac

import "golang.org/x/crypto/sha3"

// kmacFunctionName is the cSHAKE function-name parameter N that turns a
// plain cSHAKE into KMAC, per SP 800-185 §4. Its encode_string encoding is
// exactly the six bytes 01 20 4B 4D 41 43 called out in spec.md §4.5.
var kmacFunctionName = []byte("KMAC")

// xofEngine is the cSHAKE external-capability interface of spec.md §4.6:
// new(variant); absorb(bytes); finalize_xof(buf, want_len); duplicate().
// golang.org/x/crypto/sha3's ShakeHash interface (Write/Read/Clone) maps
// onto this directly. The initial bytepad(encode_string("KMAC") ||
// encode_string(S), w) block that spec.md §4.5 describes is exactly what
// NewCShake{128,256}(N, S) primes the sponge with; passing N/S there
// delegates that priming to the cSHAKE engine itself (the collaborator
// spec.md §1 places out of scope), rather than re-deriving it with the
// in-scope encoders, which are instead exercised by encoded_key and the
// right_encode trailer at finalize.
type xofEngine struct {
	sponge sha3.ShakeHash
	w      int // sponge block size in bytes: 168 (KMAC128) or 136 (KMAC256)
}

// newXOFEngine constructs the cSHAKE sponge underlying KMAC128/256, keyed
// with function-name "KMAC" and the caller's customization string.
func newXOFEngine(capacity256 bool, custom []byte) *xofEngine {
	if capacity256 {
		return &xofEngine{sponge: sha3.NewCShake256(kmacFunctionName, custom), w: 136}
	}
	return &xofEngine{sponge: sha3.NewCShake128(kmacFunctionName, custom), w: 168}
}

func (x *xofEngine) absorb(p []byte) error {
	if _, err := x.sponge.Write(p); err != nil {
		return NewCipherError("xof", "absorb failed", err)
	}
	return nil
}

func (x *xofEngine) squeeze(buf []byte) error {
	if _, err := x.sponge.Read(buf); err != nil {
		return NewCipherError("xof", "squeeze failed", err)
	}
	return nil
}

func (x *xofEngine) duplicate() *xofEngine {
	return &xofEngine{sponge: x.sponge.Clone(), w: x.w}
}
