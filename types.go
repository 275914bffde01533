package sivkmac

// HashFunc selects the hash function underlying PBKDF2 key derivation.
type HashFunc uint8

const (
	SHA256 HashFunc = iota
	SHA512
)

// PBKDF2Params contains parameters for PBKDF2 key derivation.
type PBKDF2Params struct {
	Iterations int      // number of iterations (minimum 100,000 recommended)
	HashFunc   HashFunc // hash function to use
	SaltSize   int      // salt size in bytes (default 32)
	KeySize    int      // derived key size in bytes (64 for an SIV double-length key)
}

// Argon2idParams contains parameters for Argon2id key derivation.
type Argon2idParams struct {
	Memory      uint32 // memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // number of iterations (time parameter)
	Parallelism uint8  // degree of parallelism
	SaltSize    int    // salt size in bytes (default 32)
	KeySize     int    // derived key size in bytes (64 for an SIV double-length key)
}

// KeyProvider supplies key material derived from a passphrase and salt, for
// SIV or KMAC keys alike.
type KeyProvider interface {
	// DeriveKey derives key material of the provider's configured size
	// from the given salt.
	DeriveKey(salt []byte) ([]byte, error)

	// GenerateSalt generates a new random salt.
	GenerateSalt() ([]byte, error)
}
