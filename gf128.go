package sivkmac

import "encoding/binary"

// gf128Poly is the reduction constant for GF(2^128) under
// p(x) = x^128 + x^7 + x^2 + x + 1, applied to the low byte of a block
// whose top bit was set before the shift.
const gf128Poly = 0x87

// dbl computes 2*b mod p(x) over GF(2^128), writing the result into dst.
// b is interpreted as a big-endian 128-bit integer. dst and b may overlap
// only if they are the same slice.
//
// The carry-out of the shift is turned into a mask (0 or 0xff...ff) rather
// than a branch, so the XOR of the reduction constant does not depend on
// secret data through control flow.
func dbl(dst, b []byte) {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	msb := hi >> 63

	hi = (hi << 1) | (lo >> 63)
	lo = lo << 1

	binary.BigEndian.PutUint64(dst[0:8], hi)
	binary.BigEndian.PutUint64(dst[8:16], lo)

	mask := 0 - msb // all-ones if msb==1, all-zero otherwise
	dst[15] ^= byte(mask) & gf128Poly
}

// dblInPlace doubles b in place.
func dblInPlace(b []byte) {
	dbl(b, b)
}

// xor16 XORs the first 16 bytes of src into dst, in place.
func xor16(dst, src []byte) {
	for i := 0; i < 16; i++ {
		dst[i] ^= src[i]
	}
}
