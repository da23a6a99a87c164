package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecoveryToken(t *testing.T) {
	tok := NewRecoveryToken()
	assert.Len(t, tok, 32)
	for _, r := range tok {
		assert.Contains(t, alnumCharset, string(r))
	}
	assert.NotEqual(t, tok, NewRecoveryToken())
}

func TestHashRecoveryToken(t *testing.T) {
	h1 := HashRecoveryToken("token-a")
	h2 := HashRecoveryToken("token-a")
	h3 := HashRecoveryToken("token-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotContains(t, h1, "token-a")
}

func TestNewMasterToken(t *testing.T) {
	tok := NewMasterToken()
	assert.Len(t, tok, 39)
	for _, r := range tok {
		assert.Contains(t, masterCharset, string(r))
	}
}

func TestNewPassword(t *testing.T) {
	pw := NewPassword()
	assert.Len(t, pw, 16)
	assert.Contains(t, digits, string(pw[0]))
}

func TestFileHash(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "vault.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))

	h, err := FileHash(path)
	require.NoError(t, err)
	// well-known sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.Equal(t, strings.ToLower(h), h)

	_, err = FileHash(filepath.Join(tmp, "missing"))
	assert.Error(t, err)
}
