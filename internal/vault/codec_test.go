package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/cryptox"
)

func newTestFile(t *testing.T, recovery bool, entries int) (*File, []byte) {
	t.Helper()

	salt := cryptox.NewSalt()
	key := cryptox.DeriveKey("master", salt)

	verification, err := cryptox.EncryptString(key, VerificationPlaintext)
	require.NoError(t, err)

	f := &File{Header: Header{Salt: salt, Verification: verification}}
	if recovery {
		f.Header.RecoveryHash = cryptox.HashRecoveryToken(cryptox.NewRecoveryToken())
	}

	for i := 0; i < entries; i++ {
		w, err := cryptox.EncryptString(key, "site"+string(rune('a'+i))+".com")
		require.NoError(t, err)
		p, err := cryptox.EncryptString(key, "pw")
		require.NoError(t, err)
		f.Entries = append(f.Entries, RawEntry{Website: w, Password: p})
	}
	return f, key
}

func TestParse_RoundTrip(t *testing.T) {
	f, _ := newTestFile(t, true, 3)

	got, err := Parse(f.Encode())
	require.NoError(t, err)

	assert.Equal(t, f.Header, got.Header)
	assert.Equal(t, f.Entries, got.Entries)
}

func TestParse_NoRecoverySection(t *testing.T) {
	f, _ := newTestFile(t, false, 1)

	got, err := Parse(f.Encode())
	require.NoError(t, err)
	assert.Empty(t, got.Header.RecoveryHash)
	assert.Len(t, got.Entries, 1)
}

func TestParse_EmptyVault(t *testing.T) {
	f, _ := newTestFile(t, false, 0)

	got, err := Parse(f.Encode())
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestParse_CRLFTolerated(t *testing.T) {
	f, _ := newTestFile(t, true, 2)
	crlf := strings.ReplaceAll(string(f.Encode()), "\n", "\r\n")

	got, err := Parse([]byte(crlf))
	require.NoError(t, err)
	assert.Len(t, got.Entries, 2)
}

func TestParse_Corrupt(t *testing.T) {
	f, _ := newTestFile(t, true, 2)
	good := string(f.Encode())
	lines := strings.Split(strings.TrimSuffix(good, "\n"), "\n")

	mutate := func(fn func([]string) []string) []byte {
		cp := append([]string{}, lines...)
		return []byte(strings.Join(fn(cp), "\n") + "\n")
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty file", data: []byte("")},
		{name: "missing salt marker", data: mutate(func(l []string) []string { return l[1:] })},
		{name: "bad salt base64", data: mutate(func(l []string) []string { l[1] = "%%%"; return l })},
		{name: "missing separator", data: mutate(func(l []string) []string {
			return append(l[:2], l[3:]...)
		})},
		{name: "entry with one line", data: mutate(func(l []string) []string {
			// drop the password line of the last entry
			return append(l[:len(l)-2], l[len(l)-1])
		})},
		{name: "trailing garbage", data: append([]byte(good), []byte("dangling\n")...)},
		{name: "blank content line", data: mutate(func(l []string) []string { l[4] = ""; return l })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, ErrCorruptVault)
		})
	}
}

func TestWriteLoad(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "vault.txt")

	f, _ := newTestFile(t, true, 2)
	require.NoError(t, Write(path, f))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.Header, got.Header)
	assert.Equal(t, f.Entries, got.Entries)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
