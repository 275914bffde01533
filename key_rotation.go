package sivkmac

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MultiKeyProvider tries multiple key providers in order for decryption.
// This is useful during key rotation/migration: the primary provider keys
// new SIV/KMAC contexts, while the others let a caller still open data
// encrypted under a prior passphrase or HSM-backed key.
type MultiKeyProvider struct {
	providers []KeyProvider
	primary   KeyProvider // primary provider for new key material
}

// NewMultiKeyProvider creates a new multi-key provider.
// The first provider is used for new key derivations, others for fallback.
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one key provider required")
	}

	return &MultiKeyProvider{
		providers: providers,
		primary:   providers[0],
	}, nil
}

// DeriveKey uses the primary provider.
func (m *MultiKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	return m.primary.DeriveKey(salt)
}

// GenerateSalt uses the primary provider.
func (m *MultiKeyProvider) GenerateSalt() ([]byte, error) {
	return m.primary.GenerateSalt()
}

// TryDeriveKey attempts to derive a key using each provider in order,
// returning the first successful derivation.
func (m *MultiKeyProvider) TryDeriveKey(salt []byte) ([]byte, error) {
	var lastErr error
	for _, provider := range m.providers {
		key, err := provider.DeriveKey(salt)
		if err != nil {
			lastErr = err
			continue
		}
		return key, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all key providers failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no key providers available")
}

// KeyGeneration is one rotation generation of SIV/KMAC key material,
// tagged with a UUID so callers can record which generation produced a
// given tag or digest (e.g. alongside an encrypted record) without storing
// the key itself.
type KeyGeneration struct {
	ID        uuid.UUID
	Key       []byte
	CreatedAt time.Time
	retired   bool
}

// KeyRing tracks an ordered sequence of key generations: exactly one
// current generation used for new SIV/KMAC contexts, and zero or more
// retired generations kept around only long enough to decrypt data that
// predates the most recent rotation.
type KeyRing struct {
	current  *KeyGeneration
	retired  []*KeyGeneration
	provider KeyProvider
}

// NewKeyRing creates a key ring whose first generation is derived from
// provider using a freshly generated salt.
func NewKeyRing(provider KeyProvider) (*KeyRing, error) {
	ring := &KeyRing{provider: provider}
	if err := ring.Rotate(); err != nil {
		return nil, err
	}
	return ring, nil
}

// Rotate derives a new key generation from the ring's provider and makes
// it current, retiring the previous generation rather than discarding it.
func (r *KeyRing) Rotate() error {
	salt, err := r.provider.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt for rotation: %w", err)
	}
	key, err := r.provider.DeriveKey(salt)
	if err != nil {
		return fmt.Errorf("failed to derive key for rotation: %w", err)
	}

	if r.current != nil {
		r.retired = append(r.retired, r.current)
	}
	r.current = &KeyGeneration{ID: uuid.New(), Key: key, CreatedAt: timeNow()}
	return nil
}

// Current returns the active key generation.
func (r *KeyRing) Current() *KeyGeneration {
	return r.current
}

// ByID returns the key generation (current or retired) matching id, for
// decrypting data tagged with an older generation.
func (r *KeyRing) ByID(id uuid.UUID) (*KeyGeneration, bool) {
	if r.current != nil && r.current.ID == id {
		return r.current, true
	}
	for _, g := range r.retired {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// Retire permanently scrubs and drops a retired generation's key material.
// The current generation cannot be retired directly; Rotate first.
func (r *KeyRing) Retire(id uuid.UUID) error {
	for i, g := range r.retired {
		if g.ID == id {
			scrubBytes(g.Key)
			g.retired = true
			r.retired = append(r.retired[:i], r.retired[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("key generation %s not found among retired generations", id)
}

// timeNow is a seam so tests can observe KeyRing without depending on wall
// clock ordering beyond "later rotations sort after earlier ones."
var timeNow = time.Now
