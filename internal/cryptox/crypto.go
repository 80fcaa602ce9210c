// Package cryptox holds the key derivation, authenticated encryption and
// digest primitives for the journal artifact.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dmitrijs2005/journalkeeper/internal/common"
)

// KeySize is the symmetric key width in bytes.
const KeySize = chacha20poly1305.KeySize

// Key is a session encryption key. It is derived from a passphrase, held in
// memory for the session, and never persisted.
type Key [KeySize]byte

// Derive maps a passphrase to a Key deterministically: sha256 over the
// passphrase bytes, used directly as the AEAD key.
//
// There is deliberately no salt: the same passphrase must yield the same key
// across process runs so an existing artifact stays readable. Passphrase
// strength is therefore the sole confidentiality boundary.
func Derive(passphrase string) Key {
	return Key(sha256.Sum256([]byte(passphrase)))
}

// Encrypt seals plaintext with XChaCha20-Poly1305 under key. The returned
// blob is nonce || ciphertext with a fresh random 24-byte nonce per call;
// a random nonce is mandatory here because the salt-free key is reused for
// every write.
func Encrypt(plaintext []byte, key Key) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. It fails with
// common.ErrWrongKeyOrCorrupt when the key does not match or the blob has
// been truncated or tampered with; it never returns unauthenticated
// plaintext.
func Decrypt(blob []byte, key Key) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	if len(blob) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: blob too short", common.ErrWrongKeyOrCorrupt)
	}

	nonce, ct := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrWrongKeyOrCorrupt, err)
	}
	return plaintext, nil
}

// DigestHex returns the sha256 digest of b as a lowercase hex string. It is
// a pure function of the bytes, used for external integrity verification of
// both the decrypted serialization and the raw encrypted artifact.
func DigestHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
