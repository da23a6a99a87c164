package cryptox

import (
	"crypto/sha256"
	"encoding/base64"

	"vaultkeeper/internal/shared"
)

const (
	alnumCharset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	masterCharset = alnumCharset + "!@#$%^&*()-_=+<>?"
	digits        = "0123456789"

	recoveryTokenLen = 32
	masterTokenLen   = 39
	passwordLen      = 16
)

// NewRecoveryToken returns a random alphanumeric recovery token. Only its
// hash is ever persisted; the plain token is shown to the user once.
func NewRecoveryToken() string {
	return shared.RandString(recoveryTokenLen, alnumCharset)
}

// HashRecoveryToken returns Base64(SHA-256(token)), the form stored in the
// vault recovery header.
func HashRecoveryToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// NewMasterToken returns a random high-entropy master password offered
// during vault setup and recovery rekeying.
func NewMasterToken() string {
	return shared.RandString(masterTokenLen, masterCharset)
}

// NewPassword returns a random site password. The first character is always
// a digit, the remainder is drawn from the alphanumeric set.
func NewPassword() string {
	return shared.RandString(1, digits) + shared.RandString(passwordLen-1, alnumCharset)
}
