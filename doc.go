// Package sivkmac implements two symmetric primitives side by side: AES-SIV
// (RFC 5297), a nonce-misuse-resistant authenticated cipher built from S2V
// and AES-CTR, and KMAC128/KMAC256 (NIST SP 800-185), a cSHAKE-based keyed
// MAC and extendable-output function.
//
// # AES-SIV
//
// A Context absorbs zero or more AAD segments (the last of which conventionally
// carries the nonce, since SIV does not distinguish it from other associated
// data) and then performs exactly one Encrypt or Decrypt:
//
//	ctx, err := sivkmac.New(key) // key is double-length: K1||K2
//	ctx.AAD(header)
//	ctx.AAD(nonce)
//	n, err := ctx.Encrypt(plaintext, ciphertext)
//	var tag [16]byte
//	ctx.GetTag(tag[:])
//
// Decryption requires the tag up front:
//
//	ctx.SetTag(tag[:])
//	n, err := ctx.Decrypt(ciphertext, plaintext) // AuthenticationError on mismatch
//
// # KMAC
//
// A KMACContext is configured with SetKey (required), SetCustom and SetOutLen
// (optional), then driven through Init, any number of Update calls, and Final:
//
//	mac := sivkmac.New128()
//	mac.SetKey(key)
//	mac.SetCustom([]byte("My Tag"))
//	mac.Init()
//	mac.Update(message)
//	var out [32]byte
//	mac.Final(out[:])
//
// SetXOF(true) turns KMAC into KMACXOF, an extendable-output function with no
// length bound on the requested output.
//
// # Key management
//
// PasswordKeyProvider and EnvKeyProvider (key_provider.go) derive SIV/KMAC
// key material from a passphrase or a pre-provisioned secret; KeyRing
// (key_rotation.go) tracks successive key generations so callers can decrypt
// data produced under a prior generation while encrypting new data under the
// current one. FilenameEncryptor (filename.go) layers deterministic,
// SIV-encrypted path components — each bound to a KMAC128 tag over its
// cleartext length — onto an absfs.FileSystem tree.
//
// # Security considerations
//
// Protected against:
//   - Nonce reuse and misuse (SIV degrades gracefully rather than catastrophically)
//   - Ciphertext tampering (SIV tag verification; KMAC as a standalone MAC)
//   - Tampering with an encrypted filename's trailing KMAC length tag
//
// Not protected against:
//   - Length leakage on deterministically-encrypted filenames: an encrypted
//     component is its cleartext length plus 32 bytes before base64 encoding;
//     the KMAC length tag authenticates that length but does not hide it
//   - Memory dumps of live key material (Cleanup/Free scrub only on a clean exit path)
//   - Key exhaustion: reusing an AES-SIV key across an astronomical number of
//     messages still erodes its security margin; rotate via KeyRing
//   - Traffic analysis of ciphertext sizes and access patterns
package sivkmac
