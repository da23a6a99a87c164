// Package cryptox implements the key derivation and symmetric encryption
// used for vault content: PBKDF2-HMAC-SHA256 key stretching and AES-128-GCM
// with a random nonce, serialized as a single Base64 line.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"vaultkeeper/internal/shared"
)

const (
	// KeySize is the derived AES key length in bytes.
	KeySize = 16
	// SaltSize is the per-vault PBKDF2 salt length in bytes.
	SaltSize = 16
	// Iterations is the PBKDF2 iteration count.
	Iterations = 65536
)

// ErrDecrypt is returned whenever a ciphertext cannot be authenticated and
// decrypted with the supplied key. Callers must not distinguish a wrong key
// from tampered data.
var ErrDecrypt = errors.New("decryption failed")

// DeriveKey stretches a password and salt into an AES key.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return shared.GenerateRandByteArray(SaltSize)
}

// EncryptString encrypts plaintext under key and returns
// Base64(nonce || ciphertext || tag) as a single line with no newlines.
func EncryptString(key []byte, plaintext string) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	nonce := shared.GenerateRandByteArray(aead.NonceSize())
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. Any failure, malformed Base64, a
// truncated payload, or an authentication error, is reported as ErrDecrypt.
func DecryptString(key []byte, encoded string) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrDecrypt
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm mode: %w", err)
	}
	return aead, nil
}
