// Package session implements vault lifecycle and authentication: first-run
// setup, master password verification, and recovery-token rekeying.
package session

import (
	"errors"
	"fmt"
	"os"

	"vaultkeeper/internal/cryptox"
	"vaultkeeper/internal/filex"
	"vaultkeeper/internal/shared"
	"vaultkeeper/internal/vault"
)

var (
	// ErrAuthentication reports a master password that does not verify
	// against the vault's verification section.
	ErrAuthentication = errors.New("authentication failed")
	// ErrRecoveryMismatch reports a recovery token whose hash does not match
	// the vault's recovery section.
	ErrRecoveryMismatch = errors.New("recovery token does not match")
	// ErrNoRecovery reports a recovery attempt on a vault without a
	// recovery section.
	ErrNoRecovery = errors.New("vault has no recovery token")
)

// SetupResult carries the credentials generated for a new or rekeyed vault.
// Both tokens are shown to the user exactly once and never persisted in the
// clear.
type SetupResult struct {
	MasterToken   string
	RecoveryToken string
}

// Exists reports whether a vault file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Setup creates a brand new empty vault at path. An empty password asks for
// a generated master token; otherwise the given password becomes the master
// credential. Either way a recovery token is generated, the salt and
// verification sections are written atomically, and both credentials are
// returned for one-time display.
func Setup(path, password string) (*SetupResult, error) {
	res := &SetupResult{
		MasterToken:   password,
		RecoveryToken: cryptox.NewRecoveryToken(),
	}
	if res.MasterToken == "" {
		res.MasterToken = cryptox.NewMasterToken()
	}

	f, err := newVaultFile(res.MasterToken, res.RecoveryToken)
	if err != nil {
		return nil, err
	}
	if err := vault.Write(path, f); err != nil {
		return nil, err
	}
	return res, nil
}

// Unlock loads the vault at path, derives the key from password under the
// vault's own salt, and proves it against the verification section. It
// returns the parsed file and the derived key.
func Unlock(path, password string) (*vault.File, []byte, error) {
	f, err := vault.Load(path)
	if err != nil {
		return nil, nil, err
	}

	key := cryptox.DeriveKey(password, f.Header.Salt)
	plain, err := cryptox.DecryptString(key, f.Header.Verification)
	if err != nil || plain != vault.VerificationPlaintext {
		shared.WipeByteArray(key)
		return nil, nil, ErrAuthentication
	}
	return f, key, nil
}

// Authenticate verifies password against the vault at path and, on success,
// returns the opened entry store.
func Authenticate(path, password string) (*vault.Store, error) {
	_, key, err := Unlock(path, password)
	if err != nil {
		return nil, err
	}
	return vault.Open(path, key)
}

// VerifyRecoveryToken checks token against the vault's recovery hash.
func VerifyRecoveryToken(path, token string) error {
	f, err := vault.Load(path)
	if err != nil {
		return err
	}
	if f.Header.RecoveryHash == "" {
		return ErrNoRecovery
	}
	if cryptox.HashRecoveryToken(token) != f.Header.RecoveryHash {
		return ErrRecoveryMismatch
	}
	return nil
}

// Rekey replaces the vault's credentials after a successful recovery. The
// password rules are the same as Setup's: empty asks for a generated master
// token. The still-encrypted vault is first exported to exportPath; only
// then is the header rewritten with a fresh salt, verification and recovery
// token. Entry ciphertext is carried over byte for byte, so existing
// entries stay in the file but are unreadable under the new key.
func Rekey(path, exportPath, password string) (*SetupResult, error) {
	old, err := vault.Load(path)
	if err != nil {
		return nil, err
	}

	if err := filex.CopyFile(path, exportPath); err != nil {
		return nil, fmt.Errorf("export before rekey: %w", err)
	}

	res := &SetupResult{
		MasterToken:   password,
		RecoveryToken: cryptox.NewRecoveryToken(),
	}
	if res.MasterToken == "" {
		res.MasterToken = cryptox.NewMasterToken()
	}

	f, err := newVaultFile(res.MasterToken, res.RecoveryToken)
	if err != nil {
		return nil, err
	}
	f.Entries = old.Entries

	if err := vault.Write(path, f); err != nil {
		return nil, err
	}
	return res, nil
}

func newVaultFile(masterToken, recoveryToken string) (*vault.File, error) {
	salt := cryptox.NewSalt()
	key := cryptox.DeriveKey(masterToken, salt)
	defer shared.WipeByteArray(key)

	verification, err := cryptox.EncryptString(key, vault.VerificationPlaintext)
	if err != nil {
		return nil, err
	}

	return &vault.File{
		Header: vault.Header{
			Salt:         salt,
			Verification: verification,
			RecoveryHash: cryptox.HashRecoveryToken(recoveryToken),
		},
	}, nil
}
