package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/vault"
)

func TestSetupAndAuthenticate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.txt")

	assert.False(t, Exists(path))

	res, err := Setup(path, "")
	require.NoError(t, err)
	assert.Len(t, res.MasterToken, 39)
	assert.Len(t, res.RecoveryToken, 32)
	assert.True(t, Exists(path))

	s, err := Authenticate(path, res.MasterToken)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.NotEmpty(t, s.Header().RecoveryHash)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.txt")
	_, err := Setup(path, "")
	require.NoError(t, err)

	_, err = Authenticate(path, "not-the-master-token")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticate_CorruptVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.txt")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0o600))

	_, err := Authenticate(path, "anything")
	assert.ErrorIs(t, err, vault.ErrCorruptVault)
}

func TestVerifyRecoveryToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.txt")
	res, err := Setup(path, "")
	require.NoError(t, err)

	require.NoError(t, VerifyRecoveryToken(path, res.RecoveryToken))
	assert.ErrorIs(t, VerifyRecoveryToken(path, "wrong-token"), ErrRecoveryMismatch)
}

func TestVerifyRecoveryToken_NoRecoverySection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.txt")
	res, err := Setup(path, "")
	require.NoError(t, err)

	f, err := vault.Load(path)
	require.NoError(t, err)
	f.Header.RecoveryHash = ""
	require.NoError(t, vault.Write(path, f))

	assert.ErrorIs(t, VerifyRecoveryToken(path, res.RecoveryToken), ErrNoRecovery)
}

func TestRekey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.txt")
	exportPath := filepath.Join(dir, "vault.export.txt")

	res, err := Setup(path, "")
	require.NoError(t, err)

	s, err := Authenticate(path, res.MasterToken)
	require.NoError(t, err)
	require.NoError(t, s.Add("site.com", "pw"))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	newRes, err := Rekey(path, exportPath, "")
	require.NoError(t, err)
	assert.NotEqual(t, res.MasterToken, newRes.MasterToken)
	assert.Len(t, newRes.MasterToken, 39)

	// export is a byte-for-byte copy of the pre-rekey vault
	exported, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, before, exported)

	// old credentials no longer work, new ones do
	_, err = Authenticate(path, res.MasterToken)
	assert.ErrorIs(t, err, ErrAuthentication)
	require.NoError(t, VerifyRecoveryToken(path, newRes.RecoveryToken))

	// entry ciphertext is carried over verbatim but is unreadable now
	oldFile, err := vault.Parse(before)
	require.NoError(t, err)
	newFile, err := vault.Load(path)
	require.NoError(t, err)
	assert.Equal(t, oldFile.Entries, newFile.Entries)

	reopened, err := Authenticate(path, newRes.MasterToken)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Len())
	assert.Equal(t, 1, reopened.Unreadable())
}

func TestRekey_ChosenPassword(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.txt")

	res, err := Setup(path, "")
	require.NoError(t, err)
	require.NoError(t, VerifyRecoveryToken(path, res.RecoveryToken))

	newRes, err := Rekey(path, filepath.Join(dir, "vault.export.txt"), "my-new-passphrase")
	require.NoError(t, err)
	assert.Equal(t, "my-new-passphrase", newRes.MasterToken)

	_, err = Authenticate(path, "my-new-passphrase")
	assert.NoError(t, err)
}

func TestRekey_ExportFailureLeavesVaultUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.txt")
	_, err := Setup(path, "")
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = Rekey(path, filepath.Join(dir, "no-such-dir", "export.txt"), "")
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
