package sivkmac

// s2vState carries the running S2V accumulator D (RFC 5297 §2.4) and the
// CMAC template keyed with K1 used to derive it.
type s2vState struct {
	d    [16]byte
	cmac *cmacTemplate
}

// newS2VState computes the initial D = CMAC_K1(0^128).
func newS2VState(cmac *cmacTemplate) (*s2vState, error) {
	zero := make([]byte, 16)
	t, err := cmac.mac(zero)
	if err != nil {
		return nil, err
	}
	s := &s2vState{cmac: cmac}
	copy(s.d[:], t)
	return s, nil
}

// absorbAAD folds one associated-data segment into D: D <- 2*D xor CMAC(A).
func (s *s2vState) absorbAAD(segment []byte) error {
	t, err := s.cmac.mac(segment)
	if err != nil {
		return err
	}
	dblInPlace(s.d[:])
	xor16(s.d[:], t)
	return nil
}

// finish consumes the final input M (the plaintext, or its recovered
// candidate on decrypt) and returns CMAC-derived output per RFC 5297 §2.4.
// D is left untouched so the same s2vState can be reused to verify a
// decrypt candidate without re-running the AAD loop.
func (s *s2vState) finish(m []byte) ([]byte, error) {
	if len(m) >= 16 {
		mixed := make([]byte, len(m))
		copy(mixed, m)
		xor16(mixed[len(mixed)-16:], s.d[:])
		return s.cmac.mac(mixed)
	}

	padded := make([]byte, 16)
	copy(padded, m)
	padded[len(m)] = 0x80

	var d2 [16]byte
	dbl(d2[:], s.d[:])
	xor16(padded, d2[:])
	return s.cmac.mac(padded)
}
