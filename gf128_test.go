package sivkmac

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDbl_NoCarry(t *testing.T) {
	b := make([]byte, 16) // top bit clear
	b[15] = 0x01
	want := make([]byte, 16)
	want[15] = 0x02

	got := make([]byte, 16)
	dbl(got, b)
	if !bytes.Equal(got, want) {
		t.Errorf("dbl(0x00...01) = %x, want %x", got, want)
	}
}

func TestDbl_CarryAppliesReductionPolynomial(t *testing.T) {
	b := make([]byte, 16)
	b[0] = 0x80 // top bit set: doubling must reduce mod p(x)
	got := make([]byte, 16)
	dbl(got, b)

	want := make([]byte, 16)
	want[15] = gf128Poly // shifting 0x80.. left gives all-zero, XORed with 0x87
	if !bytes.Equal(got, want) {
		t.Errorf("dbl with MSB set = %x, want %x", got, want)
	}
}

func TestDbl_RFC5297Zero(t *testing.T) {
	// dbl(0) = 0 regardless of the MSB branch.
	b := make([]byte, 16)
	got := make([]byte, 16)
	dbl(got, b)
	if !bytes.Equal(got, b) {
		t.Errorf("dbl(0) = %x, want all-zero", got)
	}
}

func TestDblInPlace_MatchesDbl(t *testing.T) {
	b, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	if err != nil {
		t.Fatalf("invalid hex: %v", err)
	}
	want := make([]byte, 16)
	dbl(want, b)

	got := append([]byte(nil), b...)
	dblInPlace(got)
	if !bytes.Equal(got, want) {
		t.Errorf("dblInPlace = %x, want %x", got, want)
	}
}

func TestXor16(t *testing.T) {
	dst := []byte{0xff, 0x00, 0xaa, 0x55}
	dst = append(dst, make([]byte, 12)...)
	src := []byte{0x0f, 0xf0, 0xaa, 0x55}
	src = append(src, make([]byte, 12)...)

	xor16(dst, src)
	want := []byte{0xf0, 0xf0, 0x00, 0x00}
	if !bytes.Equal(dst[:4], want) {
		t.Errorf("xor16 first four bytes = %x, want %x", dst[:4], want)
	}
	for i := 4; i < 16; i++ {
		if dst[i] != 0 {
			t.Errorf("xor16 byte %d = %x, want 0", i, dst[i])
		}
	}
}

// TestDbl_RepeatedDoublingPreservesLength doubles a block 256 times, pushing
// the starting bit through the top-bit carry and reduction path, and checks
// that it never panics or changes length, a cheap sanity check on the
// shift/reduction plumbing.
func TestDbl_RepeatedDoublingPreservesLength(t *testing.T) {
	b := make([]byte, 16)
	b[15] = 0x01
	for i := 0; i < 256; i++ {
		dblInPlace(b)
		if len(b) != 16 {
			t.Fatalf("dblInPlace changed length to %d", len(b))
		}
	}
}
