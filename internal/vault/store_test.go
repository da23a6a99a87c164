package vault

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/cryptox"
)

func newTestStore(t *testing.T) (*Store, []byte) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vault.txt")
	f, key := newTestFile(t, false, 0)
	require.NoError(t, Write(path, f))

	s, err := Open(path, key)
	require.NoError(t, err)
	return s, key
}

func TestStore_AddListReveal(t *testing.T) {
	s, key := newTestStore(t)

	require.NoError(t, s.Add("github.com", "pw-one"))
	require.NoError(t, s.Add("bank.example", "pw-two"))

	assert.Equal(t, []string{"bank.example", "github.com"}, s.List())

	pw, err := s.Reveal("github.com")
	require.NoError(t, err)
	assert.Equal(t, "pw-one", pw)

	// changes survive a reopen
	reopened, err := Open(s.Path(), key)
	require.NoError(t, err)
	assert.Equal(t, s.List(), reopened.List())
	pw, err = reopened.Reveal("bank.example")
	require.NoError(t, err)
	assert.Equal(t, "pw-two", pw)
}

func TestStore_AddDuplicateCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Add("GitHub.com", "pw"))
	err := s.Add("github.COM", "other")
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.Equal(t, 1, s.Len())
}

func TestStore_RevealCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Add("Example.org", "pw"))
	pw, err := s.Reveal("EXAMPLE.ORG")
	require.NoError(t, err)
	assert.Equal(t, "pw", pw)
}

func TestStore_UpdatePassword(t *testing.T) {
	s, key := newTestStore(t)

	require.NoError(t, s.Add("site.com", "old"))
	require.NoError(t, s.UpdatePassword("site.com", "new"))

	reopened, err := Open(s.Path(), key)
	require.NoError(t, err)
	pw, err := reopened.Reveal("site.com")
	require.NoError(t, err)
	assert.Equal(t, "new", pw)

	err = s.UpdatePassword("missing.com", "x")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestStore_Delete(t *testing.T) {
	s, key := newTestStore(t)

	require.NoError(t, s.Add("one.com", "1"))
	require.NoError(t, s.Add("two.com", "2"))
	require.NoError(t, s.Delete("one.com"))

	assert.Equal(t, []string{"two.com"}, s.List())

	reopened, err := Open(s.Path(), key)
	require.NoError(t, err)
	assert.Equal(t, []string{"two.com"}, reopened.List())

	err = s.Delete("one.com")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestStore_Search(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Add("github.com", "1"))
	require.NoError(t, s.Add("gitlab.com", "2"))
	require.NoError(t, s.Add("bank.example", "3"))

	assert.Equal(t, []string{"github.com", "gitlab.com"}, s.Search("GIT"))
	assert.Empty(t, s.Search("zzz"))
}

func TestOpen_UndecryptableEntriesBecomeOpaque(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add("site.com", "pw"))

	other := cryptox.DeriveKey("other", cryptox.NewSalt())
	opened, err := Open(s.Path(), other)
	require.NoError(t, err)

	assert.Equal(t, 0, opened.Len())
	assert.Equal(t, 1, opened.Unreadable())
	assert.Empty(t, opened.List())
	assert.False(t, opened.Has("site.com"))
}

func TestStore_OpaqueEntriesSurviveRewrites(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add("legacy.com", "old-pw"))

	other := cryptox.DeriveKey("other", cryptox.NewSalt())
	opened, err := Open(s.Path(), other)
	require.NoError(t, err)

	// a mutation under the new key must not drop the opaque block
	require.NoError(t, opened.Add("fresh.com", "new-pw"))

	f, err := Load(s.Path())
	require.NoError(t, err)
	assert.Len(t, f.Entries, 2)
	assert.Equal(t, 1, opened.Unreadable())
}
