package blobstore

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// TimestampLayout is the token embedded in every backup key.
	TimestampLayout = "2006-01-02_15-04-05"
	// BackupExt marks an object as an encrypted vault backup.
	BackupExt = ".pm.enc"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeBase reduces a vault file basename to characters safe in an
// object key.
func SanitizeBase(vaultPath string) string {
	return unsafeKeyChars.ReplaceAllString(filepath.Base(vaultPath), "-")
}

// BackupKey builds the object key for a backup of vaultPath taken at ts.
// The vault basename is preserved so backups of different vaults can share
// a bucket. With timestampFirst the token leads, which makes plain
// lexicographic listings chronological.
func BackupKey(vaultPath string, ts time.Time, timestampFirst bool) string {
	base := SanitizeBase(vaultPath)
	token := ts.UTC().Format(TimestampLayout)
	if timestampFirst {
		return token + "__" + base + BackupExt
	}
	return base + "__" + token + BackupExt
}

// MatchesBackup reports whether key names a backup of vaultPath, under
// either key ordering.
func MatchesBackup(key, vaultPath string) bool {
	if !strings.HasSuffix(key, BackupExt) {
		return false
	}
	base := SanitizeBase(vaultPath)
	trimmed := strings.TrimSuffix(key, BackupExt)
	return strings.HasPrefix(trimmed, base+"__") || strings.HasSuffix(trimmed, "__"+base)
}
