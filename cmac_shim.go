package sivkmac

import (
	"crypto/aes"

	"github.com/chmike/cmac-go"
)

// macPRF is the CMAC external-capability interface of spec.md §4.6:
// new(key, block_cipher) -> M; M.update(bytes); M.finalize(buf, want_len);
// M.duplicate() -> M'. It is satisfied here by github.com/chmike/cmac-go
// keyed with AES, the block cipher spec.md explicitly places out of scope
// ("consumed through a CMAC primitive").
type macPRF interface {
	// Write absorbs bytes into the running MAC. Matches hash.Hash so
	// cmac-go's return value can be used directly.
	Write(p []byte) (int, error)
	// Sum returns the current 16-byte MAC, appended to in.
	Sum(in []byte) []byte
	// Reset clears the accumulated state so the instance can be reused
	// for a new message under the same key.
	Reset()
}

// cmacTemplate holds the AES key for K1 and constructs fresh CMAC
// instances on demand. spec.md describes a "cmac_template... prepared
// once and duplicated per S2V stage"; cmac-go's CMAC state is cheap to
// rebuild from the key, so "duplicate" here means "construct a fresh
// keyed instance," which is observably identical to deep-copying a
// freshly-reset template.
type cmacTemplate struct {
	key []byte
}

func newCMACTemplate(key []byte) (*cmacTemplate, error) {
	// Validate the key once, up front, so a bad key fails at init rather
	// than on the first CMAC call.
	if _, err := aes.NewCipher(key); err != nil {
		return nil, NewCipherError("cmac", "invalid AES key for CMAC", err)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &cmacTemplate{key: k}, nil
}

// duplicate returns a fresh macPRF instance keyed the same as t.
func (t *cmacTemplate) duplicate() (macPRF, error) {
	m, err := cmac.New(aes.NewCipher, t.key)
	if err != nil {
		return nil, NewCipherError("cmac", "failed to construct CMAC instance", err)
	}
	return m, nil
}

// mac computes CMAC_K1(data) in one shot.
func (t *cmacTemplate) mac(data []byte) ([]byte, error) {
	m, err := t.duplicate()
	if err != nil {
		return nil, err
	}
	if _, err := m.Write(data); err != nil {
		return nil, NewCipherError("cmac", "write failed", err)
	}
	return m.Sum(nil), nil
}

func (t *cmacTemplate) scrub() {
	scrubBytes(t.key)
}
