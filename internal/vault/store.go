package vault

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vaultkeeper/internal/cryptox"
)

var (
	// ErrDuplicateEntry reports an add for a website label that already
	// exists, compared case-insensitively.
	ErrDuplicateEntry = errors.New("entry already exists")
	// ErrEntryNotFound reports an operation on a website label the vault
	// does not contain.
	ErrEntryNotFound = errors.New("entry not found")
)

// Entry is a vault entry as seen by an authenticated session: the website
// label in the clear, the password still ciphertext until revealed. Entries
// whose label does not decrypt under the session key are opaque: they are
// carried through every rewrite untouched but never listed or matched.
// Opaque entries appear after a recovery rekey, which replaces the key while
// keeping the old ciphertext in place.
type Entry struct {
	Website string
	raw     RawEntry
	opaque  bool
}

// Store is the authenticated, decrypted view over one vault file. Website
// labels are decrypted eagerly on open; passwords stay encrypted in memory
// and are decrypted only on demand. Every mutation rewrites the file
// atomically before returning.
type Store struct {
	path    string
	key     []byte
	header  Header
	entries []Entry
}

// Open loads the vault at path and eagerly decrypts all website labels with
// key. Labels that fail to decrypt become opaque entries rather than failing
// the open; the key itself must already be verified by the caller.
func Open(path string, key []byte) (*Store, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, key: key, header: f.Header}
	for _, raw := range f.Entries {
		website, err := cryptox.DecryptString(key, raw.Website)
		if err != nil {
			s.entries = append(s.entries, Entry{raw: raw, opaque: true})
			continue
		}
		s.entries = append(s.entries, Entry{Website: website, raw: raw})
	}
	return s, nil
}

// Path returns the vault file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// Header returns a copy of the vault header.
func (s *Store) Header() Header {
	return s.header
}

// Len returns the number of readable entries.
func (s *Store) Len() int {
	n := 0
	for _, e := range s.entries {
		if !e.opaque {
			n++
		}
	}
	return n
}

// Unreadable returns the number of opaque entries.
func (s *Store) Unreadable() int {
	return len(s.entries) - s.Len()
}

// List returns all readable website labels sorted case-insensitively.
func (s *Store) List() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if e.opaque {
			continue
		}
		out = append(out, e.Website)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// Has reports whether a label exists, compared case-insensitively.
func (s *Store) Has(website string) bool {
	return s.find(website) >= 0
}

// Add encrypts and appends a new entry, then rewrites the file. The label
// must not collide with an existing one under case-insensitive comparison.
func (s *Store) Add(website, password string) error {
	if s.find(website) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, website)
	}

	encWebsite, err := cryptox.EncryptString(s.key, website)
	if err != nil {
		return err
	}
	encPassword, err := cryptox.EncryptString(s.key, password)
	if err != nil {
		return err
	}

	s.entries = append(s.entries, Entry{
		Website: website,
		raw:     RawEntry{Website: encWebsite, Password: encPassword},
	})
	if err := s.persist(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return err
	}
	return nil
}

// Reveal decrypts and returns the password for a label.
func (s *Store) Reveal(website string) (string, error) {
	i := s.find(website)
	if i < 0 {
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, website)
	}
	return cryptox.DecryptString(s.key, s.entries[i].raw.Password)
}

// UpdatePassword re-encrypts the password for an existing label and
// rewrites the file.
func (s *Store) UpdatePassword(website, password string) error {
	i := s.find(website)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, website)
	}

	encPassword, err := cryptox.EncryptString(s.key, password)
	if err != nil {
		return err
	}

	prev := s.entries[i].raw.Password
	s.entries[i].raw.Password = encPassword
	if err := s.persist(); err != nil {
		s.entries[i].raw.Password = prev
		return err
	}
	return nil
}

// Delete removes the entry for a label and rewrites the file.
func (s *Store) Delete(website string) error {
	i := s.find(website)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, website)
	}

	prev := s.entries
	s.entries = append(append([]Entry{}, s.entries[:i]...), s.entries[i+1:]...)
	if err := s.persist(); err != nil {
		s.entries = prev
		return err
	}
	return nil
}

// Search returns labels containing term, compared case-insensitively,
// sorted like List.
func (s *Store) Search(term string) []string {
	needle := strings.ToLower(term)
	var out []string
	for _, e := range s.entries {
		if e.opaque {
			continue
		}
		if strings.Contains(strings.ToLower(e.Website), needle) {
			out = append(out, e.Website)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func (s *Store) find(website string) int {
	for i, e := range s.entries {
		if e.opaque {
			continue
		}
		if strings.EqualFold(e.Website, website) {
			return i
		}
	}
	return -1
}

func (s *Store) persist() error {
	f := &File{Header: s.header}
	for _, e := range s.entries {
		f.Entries = append(f.Entries, e.raw)
	}
	return Write(s.path, f)
}
