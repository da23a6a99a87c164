// Package merge implements cross-vault imports: pulling entries out of a
// second vault file, or out of already-plaintext credentials, into the
// currently authenticated vault.
package merge

import (
	"vaultkeeper/internal/cryptox"
	"vaultkeeper/internal/session"
	"vaultkeeper/internal/shared"
	"vaultkeeper/internal/vault"
)

// Credential is a decrypted website/password pair in transit between vaults.
type Credential struct {
	Website  string
	Password string
}

// Report summarizes one import run. Every source entry lands in exactly one
// of the three counters.
type Report struct {
	Added   int
	Skipped int
	Failed  int
	// SkippedSites lists labels already present in the destination.
	SkippedSites []string
	// FailedSites lists labels whose password could not be processed. An
	// entry whose label itself failed to decrypt counts in Failed but has
	// no name to report.
	FailedSites []string
}

// ImportVault merges the vault at srcPath into dst. The source is unlocked
// with its own salt and srcPassword; a wrong password fails the whole run
// with session.ErrAuthentication before anything is written. Individual
// entries are best effort: undecryptable ones are counted and skipped,
// duplicates of destination labels are skipped, the rest are re-encrypted
// under the destination key and appended.
func ImportVault(dst *vault.Store, srcPath, srcPassword string) (*Report, error) {
	f, key, err := session.Unlock(srcPath, srcPassword)
	if err != nil {
		return nil, err
	}
	defer shared.WipeByteArray(key)

	r := &Report{}
	for _, raw := range f.Entries {
		website, err := cryptox.DecryptString(key, raw.Website)
		if err != nil {
			r.Failed++
			continue
		}
		password, err := cryptox.DecryptString(key, raw.Password)
		if err != nil {
			r.Failed++
			r.FailedSites = append(r.FailedSites, website)
			continue
		}
		mergeOne(dst, Credential{Website: website, Password: password}, r)
	}
	return r, nil
}

// DecryptVault unlocks the vault at path and returns every entry it can
// decrypt, without touching any destination. Entries that fail to decrypt
// are only counted in the report.
func DecryptVault(path, password string) ([]Credential, *Report, error) {
	f, key, err := session.Unlock(path, password)
	if err != nil {
		return nil, nil, err
	}
	defer shared.WipeByteArray(key)

	r := &Report{}
	var out []Credential
	for _, raw := range f.Entries {
		website, err := cryptox.DecryptString(key, raw.Website)
		if err != nil {
			r.Failed++
			continue
		}
		password, err := cryptox.DecryptString(key, raw.Password)
		if err != nil {
			r.Failed++
			r.FailedSites = append(r.FailedSites, website)
			continue
		}
		out = append(out, Credential{Website: website, Password: password})
	}
	return out, r, nil
}

// ImportPlaintext merges already-decrypted credentials into dst under the
// same duplicate rules as ImportVault.
func ImportPlaintext(dst *vault.Store, creds []Credential) *Report {
	r := &Report{}
	for _, c := range creds {
		mergeOne(dst, c, r)
	}
	return r
}

func mergeOne(dst *vault.Store, c Credential, r *Report) {
	if dst.Has(c.Website) {
		r.Skipped++
		r.SkippedSites = append(r.SkippedSites, c.Website)
		return
	}
	if err := dst.Add(c.Website, c.Password); err != nil {
		r.Failed++
		r.FailedSites = append(r.FailedSites, c.Website)
		return
	}
	r.Added++
}
