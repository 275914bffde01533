package sivkmac

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const filenameKMACTagLen = 16

// FilenameEncryptor handles encryption and decryption of filenames
type FilenameEncryptor interface {
	// EncryptFilename encrypts a filename
	EncryptFilename(plaintext string) (string, error)

	// DecryptFilename decrypts a filename
	DecryptFilename(ciphertext string) (string, error)

	// EncryptPath encrypts a full path (including directory separators)
	EncryptPath(plaintext string) (string, error)

	// DecryptPath decrypts a full path
	DecryptPath(ciphertext string) (string, error)
}

// noOpFilenameEncryptor passes through filenames without encryption
type noOpFilenameEncryptor struct{}

func (n *noOpFilenameEncryptor) EncryptFilename(plaintext string) (string, error) {
	return plaintext, nil
}

func (n *noOpFilenameEncryptor) DecryptFilename(ciphertext string) (string, error) {
	return ciphertext, nil
}

func (n *noOpFilenameEncryptor) EncryptPath(plaintext string) (string, error) {
	return plaintext, nil
}

func (n *noOpFilenameEncryptor) DecryptPath(ciphertext string) (string, error) {
	return ciphertext, nil
}

// deterministicFilenameEncryptor encrypts each path component with AES-SIV-128
// (same plaintext always produces the same ciphertext, which is what lets an
// encrypted tree still support directory listing and lookup by path) and
// appends a KMAC128 tag over the component's cleartext length, which
// DecryptFilename checks against the decrypted length. The tag covers the
// length only: it does not bind a component to its position in a path, so
// a whole encrypted component moved to another position still decrypts.
type deterministicFilenameEncryptor struct {
	mu                 sync.Mutex
	siv                *Context
	kmacKey            []byte
	preserveExtensions bool
	separator          string
}

// NewDeterministicFilenameEncryptor creates a new deterministic filename
// encryptor. masterKey is stretched via HKDF-SHA256 into an independent SIV
// key and KMAC key; see deriveFilenameKeys.
func NewDeterministicFilenameEncryptor(masterKey []byte, preserveExtensions bool, separator string) (*deterministicFilenameEncryptor, error) {
	sivKey, kmacKey, err := deriveFilenameKeys(masterKey, "sivkmac filename v1")
	if err != nil {
		return nil, fmt.Errorf("failed to derive filename keys: %w", err)
	}

	// NewUnlimited: one Context serves every component encrypted over the
	// encryptor's lifetime, not a single crypto operation.
	siv, err := NewUnlimited(sivKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SIV context: %w", err)
	}

	return &deterministicFilenameEncryptor{
		siv:                siv,
		kmacKey:            kmacKey,
		preserveExtensions: preserveExtensions,
		separator:          separator,
	}, nil
}

func (d *deterministicFilenameEncryptor) componentTag(plaintextLen int) ([]byte, error) {
	mac := New128()
	if err := mac.SetKey(d.kmacKey); err != nil {
		return nil, err
	}
	if err := mac.SetOutLen(filenameKMACTagLen); err != nil {
		return nil, err
	}
	if err := mac.Init(); err != nil {
		return nil, err
	}
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(plaintextLen))
	if err := mac.Update(lenBytes[:]); err != nil {
		return nil, err
	}
	tag := make([]byte, filenameKMACTagLen)
	if _, err := mac.Final(tag); err != nil {
		return nil, err
	}
	mac.Free()
	return tag, nil
}

func (d *deterministicFilenameEncryptor) EncryptFilename(plaintext string) (string, error) {
	if plaintext == "" || plaintext == "." || plaintext == ".." {
		return plaintext, nil
	}

	var base, ext string
	if d.preserveExtensions {
		ext = filepath.Ext(plaintext)
		base = strings.TrimSuffix(plaintext, ext)
	} else {
		base = plaintext
	}

	kmacTag, err := d.componentTag(len(base))
	if err != nil {
		return "", fmt.Errorf("failed to compute filename length tag: %w", err)
	}

	d.mu.Lock()
	ciphertext := make([]byte, len(base))
	_, err = d.siv.Encrypt([]byte(base), ciphertext)
	var sivTag [16]byte
	if err == nil {
		err = d.siv.GetTag(sivTag[:])
	}
	d.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to encrypt filename: %w", err)
	}

	blob := make([]byte, 0, 16+len(ciphertext)+filenameKMACTagLen)
	blob = append(blob, sivTag[:]...)
	blob = append(blob, ciphertext...)
	blob = append(blob, kmacTag...)

	encoded := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(blob)

	if d.preserveExtensions && ext != "" {
		return encoded + ext, nil
	}
	return encoded, nil
}

func (d *deterministicFilenameEncryptor) DecryptFilename(ciphertext string) (string, error) {
	if ciphertext == "" || ciphertext == "." || ciphertext == ".." {
		return ciphertext, nil
	}

	var encoded, ext string
	if d.preserveExtensions {
		ext = filepath.Ext(ciphertext)
		encoded = strings.TrimSuffix(ciphertext, ext)
	} else {
		encoded = ciphertext
	}

	blob, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode filename: %w", err)
	}
	if len(blob) < 16+filenameKMACTagLen {
		return "", fmt.Errorf("encrypted filename too short")
	}
	sivTag := blob[:16]
	kmacTag := blob[len(blob)-filenameKMACTagLen:]
	ct := blob[16 : len(blob)-filenameKMACTagLen]

	d.mu.Lock()
	var perr error
	plaintext := make([]byte, len(ct))
	if err := d.siv.SetTag(sivTag); err != nil {
		perr = err
	} else if _, err := d.siv.Decrypt(ct, plaintext); err != nil {
		perr = err
	}
	d.mu.Unlock()
	if perr != nil {
		return "", fmt.Errorf("failed to decrypt filename: %w", perr)
	}

	expectedTag, err := d.componentTag(len(plaintext))
	if err != nil {
		return "", fmt.Errorf("failed to verify filename length tag: %w", err)
	}
	if subtle.ConstantTimeCompare(expectedTag, kmacTag) != 1 {
		return "", fmt.Errorf("filename length tag mismatch")
	}

	if d.preserveExtensions && ext != "" {
		return string(plaintext) + ext, nil
	}
	return string(plaintext), nil
}

func (d *deterministicFilenameEncryptor) EncryptPath(plaintext string) (string, error) {
	if plaintext == "" || plaintext == "." {
		return plaintext, nil
	}

	parts := strings.Split(plaintext, d.separator)
	for i, part := range parts {
		if part != "" && part != "." && part != ".." {
			encrypted, err := d.EncryptFilename(part)
			if err != nil {
				return "", err
			}
			parts[i] = encrypted
		}
	}

	return strings.Join(parts, d.separator), nil
}

func (d *deterministicFilenameEncryptor) DecryptPath(ciphertext string) (string, error) {
	if ciphertext == "" || ciphertext == "." {
		return ciphertext, nil
	}

	parts := strings.Split(ciphertext, d.separator)
	for i, part := range parts {
		if part != "" && part != "." && part != ".." {
			decrypted, err := d.DecryptFilename(part)
			if err != nil {
				return "", err
			}
			parts[i] = decrypted
		}
	}

	return strings.Join(parts, d.separator), nil
}

// randomFilenameEncryptor assigns each plaintext path component a random
// UUID and records the mapping in a metadata file, for deployments that
// cannot tolerate deterministic encryption's same-plaintext-same-ciphertext
// property leaking which files share a name across directories.
type randomFilenameEncryptor struct {
	metadata  *FilenameMetadata
	separator string
	mu        sync.RWMutex
}

// FilenameMetadata stores mappings between encrypted and plaintext filenames
type FilenameMetadata struct {
	// Map from encrypted path to plaintext path
	Mappings map[string]string `json:"mappings"`
	// Map from plaintext path to encrypted path (reverse lookup)
	Reverse map[string]string `json:"reverse"`
	mu      sync.RWMutex
}

// NewFilenameMetadata creates a new metadata store
func NewFilenameMetadata() *FilenameMetadata {
	return &FilenameMetadata{
		Mappings: make(map[string]string),
		Reverse:  make(map[string]string),
	}
}

// Load loads metadata from a file
func (m *FilenameMetadata) Load(fs absfs.FileSystem, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}

	m.Reverse = make(map[string]string)
	for encrypted, plaintext := range m.Mappings {
		m.Reverse[plaintext] = encrypted
	}

	return nil
}

// Save saves metadata to a file
func (m *FilenameMetadata) Save(fs absfs.FileSystem, path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	return nil
}

// Add adds a mapping
func (m *FilenameMetadata) Add(encrypted, plaintext string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Mappings[encrypted] = plaintext
	m.Reverse[plaintext] = encrypted
}

// Get retrieves a plaintext filename from an encrypted one
func (m *FilenameMetadata) Get(encrypted string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plaintext, ok := m.Mappings[encrypted]
	return plaintext, ok
}

// GetReverse retrieves an encrypted filename from a plaintext one
func (m *FilenameMetadata) GetReverse(plaintext string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	encrypted, ok := m.Reverse[plaintext]
	return encrypted, ok
}

// NewRandomFilenameEncryptor creates a new random filename encryptor. Unlike
// the deterministic encryptor it needs no key at all: the mapping lives
// entirely in metadata, so the UUID alone carries no recoverable information.
func NewRandomFilenameEncryptor(metadata *FilenameMetadata, separator string) (*randomFilenameEncryptor, error) {
	return &randomFilenameEncryptor{
		metadata:  metadata,
		separator: separator,
	}, nil
}

func (r *randomFilenameEncryptor) EncryptFilename(plaintext string) (string, error) {
	if plaintext == "" || plaintext == "." || plaintext == ".." {
		return plaintext, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if encrypted, ok := r.metadata.GetReverse(plaintext); ok {
		return encrypted, nil
	}

	id := uuid.New()
	encrypted := id.String()
	r.metadata.Add(encrypted, plaintext)

	return encrypted, nil
}

func (r *randomFilenameEncryptor) DecryptFilename(ciphertext string) (string, error) {
	if ciphertext == "" || ciphertext == "." || ciphertext == ".." {
		return ciphertext, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	plaintext, ok := r.metadata.Get(ciphertext)
	if !ok {
		return "", fmt.Errorf("no mapping found for encrypted filename: %s", ciphertext)
	}

	return plaintext, nil
}

func (r *randomFilenameEncryptor) EncryptPath(plaintext string) (string, error) {
	if plaintext == "" || plaintext == "." {
		return plaintext, nil
	}

	parts := strings.Split(plaintext, r.separator)
	for i, part := range parts {
		if part != "" && part != "." && part != ".." {
			encrypted, err := r.EncryptFilename(part)
			if err != nil {
				return "", err
			}
			parts[i] = encrypted
		}
	}

	return strings.Join(parts, r.separator), nil
}

func (r *randomFilenameEncryptor) DecryptPath(ciphertext string) (string, error) {
	if ciphertext == "" || ciphertext == "." {
		return ciphertext, nil
	}

	parts := strings.Split(ciphertext, r.separator)
	for i, part := range parts {
		if part != "" && part != "." && part != ".." {
			decrypted, err := r.DecryptFilename(part)
			if err != nil {
				return "", err
			}
			parts[i] = decrypted
		}
	}

	return strings.Join(parts, r.separator), nil
}

// FilenameEncryptionMode selects how path components are encrypted.
type FilenameEncryptionMode int

const (
	FilenameEncryptionNone FilenameEncryptionMode = iota
	FilenameEncryptionDeterministic
	FilenameEncryptionRandom
)

// FilenameEncryptorConfig configures NewFilenameEncryptor.
type FilenameEncryptorConfig struct {
	Mode               FilenameEncryptionMode
	PreserveExtensions bool
	MetadataPath       string
}

// NewFilenameEncryptor creates a filename encryptor based on the configuration
func NewFilenameEncryptor(config *FilenameEncryptorConfig, key []byte, fs absfs.FileSystem) (FilenameEncryptor, error) {
	separator := string([]byte{fs.Separator()})

	switch config.Mode {
	case FilenameEncryptionNone:
		return &noOpFilenameEncryptor{}, nil

	case FilenameEncryptionDeterministic:
		return NewDeterministicFilenameEncryptor(key, config.PreserveExtensions, separator)

	case FilenameEncryptionRandom:
		metadata := NewFilenameMetadata()
		if config.MetadataPath != "" {
			if err := metadata.Load(fs, config.MetadataPath); err != nil {
				return nil, fmt.Errorf("failed to load filename metadata: %w", err)
			}
		}
		return NewRandomFilenameEncryptor(metadata, separator)

	default:
		return &noOpFilenameEncryptor{}, nil
	}
}

// deriveFilenameKeys stretches masterKey via HKDF-SHA256 into a 64-byte SIV
// key and a 32-byte KMAC key, domain-separated by info so the two never
// collide even if called twice with the same masterKey and different info.
func deriveFilenameKeys(masterKey []byte, info string) (sivKey, kmacKey []byte, err error) {
	r := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	out := make([]byte, 64+32)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, nil, err
	}
	return out[:64], out[64:], nil
}
