package sivkmac

import "fmt"

// Input validation helpers, kept in the teacher's defensive-programming
// style and retargeted at SIV/KMAC argument shapes instead of filesystem
// buffers and offsets.

// ValidateBuffer checks if a buffer is valid (non-nil and has expected size).
func ValidateBuffer(buf []byte, name string, minSize int) error {
	if buf == nil {
		return &ValidationError{Field: name, Message: "buffer cannot be nil"}
	}
	if minSize > 0 && len(buf) < minSize {
		return &ValidationError{
			Field:   name,
			Value:   len(buf),
			Message: fmt.Sprintf("buffer too small: got %d bytes, need at least %d bytes", len(buf), minSize),
		}
	}
	return nil
}

// ValidateExactSize checks that buf is exactly size bytes, as SIV tags and
// CMAC/CTR keys require.
func ValidateExactSize(buf []byte, name string, size int) error {
	if len(buf) != size {
		return &ValidationError{
			Field:   name,
			Value:   len(buf),
			Message: fmt.Sprintf("expected exactly %d bytes, got %d", size, len(buf)),
		}
	}
	return nil
}

// ValidateEvenKey checks that an SIV double-length key splits evenly.
func ValidateEvenKey(key []byte) error {
	if len(key) == 0 {
		return &ValidationError{Field: "key", Message: "key cannot be empty"}
	}
	if len(key)%2 != 0 {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: "SIV key length must be even",
		}
	}
	return nil
}

// ValidateRange checks that n falls within [minN, maxN] inclusive, as KMAC
// key and customization string lengths require.
func ValidateRange(n int, name string, minN, maxN int) error {
	if n < minN || n > maxN {
		return &ValidationError{
			Field:   name,
			Value:   n,
			Message: fmt.Sprintf("%d out of range [%d, %d]", n, minN, maxN),
		}
	}
	return nil
}

// ValidatePositive checks that n is strictly positive, as KMAC's out_len
// requires.
func ValidatePositive(n int, name string) error {
	if n <= 0 {
		return &ValidationError{Field: name, Value: n, Message: "must be positive"}
	}
	return nil
}
