package sivkmac

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/absfs/memfs"
)

func TestDeterministicFilenameEncryptor(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	enc, err := NewDeterministicFilenameEncryptor(key, false, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple file", "test.txt"},
		{"no extension", "myfile"},
		{"long name", "very-long-filename-with-many-characters.doc"},
		{"special chars", "file_with-special.chars.txt"},
		{"unicode", "文件名.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := enc.EncryptFilename(tt.plaintext)
			if err != nil {
				t.Fatalf("EncryptFilename failed: %v", err)
			}
			if encrypted == tt.plaintext {
				t.Error("Encrypted filename should be different from plaintext")
			}

			decrypted, err := enc.DecryptFilename(encrypted)
			if err != nil {
				t.Fatalf("DecryptFilename failed: %v", err)
			}
			if decrypted != tt.plaintext {
				t.Errorf("Round-trip failed:\ngot:  %q\nwant: %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDeterministicFilenameEncryptor_Deterministic(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	enc, err := NewDeterministicFilenameEncryptor(key, false, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	plaintext := "deterministic.txt"

	encrypted1, err := enc.EncryptFilename(plaintext)
	if err != nil {
		t.Fatalf("First encryption failed: %v", err)
	}
	encrypted2, err := enc.EncryptFilename(plaintext)
	if err != nil {
		t.Fatalf("Second encryption failed: %v", err)
	}
	if encrypted1 != encrypted2 {
		t.Errorf("Encryption is not deterministic:\nfirst:  %q\nsecond: %q", encrypted1, encrypted2)
	}
}

func TestDeterministicFilenameEncryptor_PreserveExtensions(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	enc, err := NewDeterministicFilenameEncryptor(key, true, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	tests := []struct {
		plaintext string
		extension string
	}{
		{"test.txt", ".txt"},
		{"myfile.pdf", ".pdf"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.plaintext, func(t *testing.T) {
			encrypted, err := enc.EncryptFilename(tt.plaintext)
			if err != nil {
				t.Fatalf("EncryptFilename failed: %v", err)
			}
			if tt.extension != "" && !strings.HasSuffix(encrypted, tt.extension) {
				t.Errorf("Extension not preserved:\ngot:  %q\nwant suffix: %q", encrypted, tt.extension)
			}

			decrypted, err := enc.DecryptFilename(encrypted)
			if err != nil {
				t.Fatalf("DecryptFilename failed: %v", err)
			}
			if decrypted != tt.plaintext {
				t.Errorf("Round-trip failed:\ngot:  %q\nwant: %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDeterministicFilenameEncryptor_Paths(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	enc, err := NewDeterministicFilenameEncryptor(key, false, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"simple path", "/home/user/file.txt"},
		{"nested path", "/a/b/c/d/e.txt"},
		{"root file", "/file.txt"},
		{"relative path", "dir/file.txt"},
		{"current dir", "."},
		{"parent dir", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := enc.EncryptPath(tt.path)
			if err != nil {
				t.Fatalf("EncryptPath failed: %v", err)
			}

			if tt.path == "." || tt.path == ".." {
				if encrypted != tt.path {
					t.Errorf("Special path should remain unchanged: %q -> %q", tt.path, encrypted)
				}
				return
			}

			plainParts := strings.Split(tt.path, "/")
			encryptedParts := strings.Split(encrypted, "/")
			if len(plainParts) != len(encryptedParts) {
				t.Errorf("Path structure not preserved:\noriginal: %d parts\nencrypted: %d parts", len(plainParts), len(encryptedParts))
			}

			decrypted, err := enc.DecryptPath(encrypted)
			if err != nil {
				t.Fatalf("DecryptPath failed: %v", err)
			}
			if decrypted != tt.path {
				t.Errorf("Round-trip failed:\ngot:  %q\nwant: %q", decrypted, tt.path)
			}
		})
	}
}

func TestDeterministicFilenameEncryptor_RejectsTamperedLengthTag(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)
	enc, err := NewDeterministicFilenameEncryptor(key, false, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	encrypted, err := enc.EncryptFilename("some-name")
	if err != nil {
		t.Fatalf("EncryptFilename failed: %v", err)
	}

	blob, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(encrypted)
	if err != nil {
		t.Fatalf("failed to decode test fixture: %v", err)
	}
	// Flip a bit in the trailing KMAC length tag without touching the SIV
	// tag or ciphertext, which must still be caught at decrypt time.
	blob[len(blob)-1] ^= 0x01
	tampered := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(blob)

	if _, err := enc.DecryptFilename(tampered); err == nil {
		t.Error("DecryptFilename should reject a tampered length tag")
	}
}

func TestRandomFilenameEncryptor(t *testing.T) {
	metadata := NewFilenameMetadata()
	enc, err := NewRandomFilenameEncryptor(metadata, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	plaintext := "test.txt"

	encrypted, err := enc.EncryptFilename(plaintext)
	if err != nil {
		t.Fatalf("EncryptFilename failed: %v", err)
	}
	if encrypted == plaintext {
		t.Error("Encrypted filename should be different from plaintext")
	}

	decrypted, err := enc.DecryptFilename(encrypted)
	if err != nil {
		t.Fatalf("DecryptFilename failed: %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("Round-trip failed:\ngot:  %q\nwant: %q", decrypted, plaintext)
	}
}

func TestRandomFilenameEncryptor_Consistency(t *testing.T) {
	metadata := NewFilenameMetadata()
	enc, err := NewRandomFilenameEncryptor(metadata, "/")
	if err != nil {
		t.Fatalf("Failed to create encryptor: %v", err)
	}

	plaintext := "consistent.txt"

	encrypted1, err := enc.EncryptFilename(plaintext)
	if err != nil {
		t.Fatalf("First encryption failed: %v", err)
	}
	encrypted2, err := enc.EncryptFilename(plaintext)
	if err != nil {
		t.Fatalf("Second encryption failed: %v", err)
	}
	if encrypted1 != encrypted2 {
		t.Errorf("Random encryption should be consistent with metadata:\nfirst:  %q\nsecond: %q", encrypted1, encrypted2)
	}
}

func TestFilenameMetadata_SaveLoad(t *testing.T) {
	fs, _ := memfs.NewFS()
	metadataPath := "/.metadata.json"

	metadata := NewFilenameMetadata()
	metadata.Add("encrypted1", "plain1.txt")
	metadata.Add("encrypted2", "plain2.txt")

	if err := metadata.Save(fs, metadataPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewFilenameMetadata()
	if err := loaded.Load(fs, metadataPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if plain, ok := loaded.Get("encrypted1"); !ok || plain != "plain1.txt" {
		t.Errorf("Mapping 1 not loaded correctly: got %q, want %q", plain, "plain1.txt")
	}
	if plain, ok := loaded.Get("encrypted2"); !ok || plain != "plain2.txt" {
		t.Errorf("Mapping 2 not loaded correctly: got %q, want %q", plain, "plain2.txt")
	}
	if enc, ok := loaded.GetReverse("plain1.txt"); !ok || enc != "encrypted1" {
		t.Errorf("Reverse mapping 1 not loaded correctly: got %q, want %q", enc, "encrypted1")
	}
}

func TestNoOpFilenameEncryptor(t *testing.T) {
	enc := &noOpFilenameEncryptor{}

	tests := []string{"test.txt", "/path/to/file.txt", ".", ".."}

	for _, plaintext := range tests {
		t.Run(plaintext, func(t *testing.T) {
			encrypted, err := enc.EncryptFilename(plaintext)
			if err != nil {
				t.Fatalf("EncryptFilename failed: %v", err)
			}
			if encrypted != plaintext {
				t.Errorf("NoOp should not change filename: got %q, want %q", encrypted, plaintext)
			}

			decrypted, err := enc.DecryptFilename(encrypted)
			if err != nil {
				t.Fatalf("DecryptFilename failed: %v", err)
			}
			if decrypted != plaintext {
				t.Errorf("NoOp should not change filename: got %q, want %q", decrypted, plaintext)
			}
		})
	}
}

func TestNewFilenameEncryptor(t *testing.T) {
	key := make([]byte, 32)
	rand.Read(key)

	fs, _ := memfs.NewFS()

	tests := []struct {
		name string
		mode FilenameEncryptionMode
	}{
		{"none", FilenameEncryptionNone},
		{"deterministic", FilenameEncryptionDeterministic},
		{"random", FilenameEncryptionRandom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &FilenameEncryptorConfig{
				Mode:               tt.mode,
				PreserveExtensions: false,
				MetadataPath:       "/.metadata.json",
			}

			enc, err := NewFilenameEncryptor(config, key, fs)
			if err != nil {
				t.Fatalf("NewFilenameEncryptor failed: %v", err)
			}
			if enc == nil {
				t.Fatal("Encryptor should not be nil")
			}

			plaintext := "test.txt"
			encrypted, err := enc.EncryptFilename(plaintext)
			if err != nil {
				t.Fatalf("EncryptFilename failed: %v", err)
			}

			decrypted, err := enc.DecryptFilename(encrypted)
			if err != nil {
				t.Fatalf("DecryptFilename failed: %v", err)
			}
			if decrypted != plaintext {
				t.Errorf("Round-trip failed: got %q, want %q", decrypted, plaintext)
			}
		})
	}
}

func BenchmarkDeterministicFilenameEncryptor(b *testing.B) {
	key := make([]byte, 32)
	rand.Read(key)

	enc, _ := NewDeterministicFilenameEncryptor(key, false, "/")
	plaintext := "benchmark-file.txt"

	b.Run("Encrypt", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			enc.EncryptFilename(plaintext)
		}
	})

	encrypted, _ := enc.EncryptFilename(plaintext)

	b.Run("Decrypt", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			enc.DecryptFilename(encrypted)
		}
	})
}

func BenchmarkRandomFilenameEncryptor(b *testing.B) {
	metadata := NewFilenameMetadata()
	enc, _ := NewRandomFilenameEncryptor(metadata, "/")
	plaintext := "benchmark-file.txt"

	b.Run("Encrypt", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			enc.EncryptFilename(plaintext)
		}
	})

	encrypted, _ := enc.EncryptFilename(plaintext)

	b.Run("Decrypt", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			enc.DecryptFilename(encrypted)
		}
	})
}
