package merge

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"vaultkeeper/internal/filex"
	"vaultkeeper/internal/vault"
)

// ReadPlainFile parses a plaintext backup: blocks of a website line, a
// password line and a separator line, all in the clear. Parsing is lenient
// the way the exporting side is strict: lines are trimmed, the separator is
// consumed without being checked, and a trailing website with no password
// line is ignored.
func ReadPlainFile(path string) ([]Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plaintext backup %s: %w", path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	var creds []Credential
	for i := 0; i < len(lines); i += 3 {
		website := strings.TrimSpace(lines[i])
		if website == "" || i+1 >= len(lines) {
			break
		}
		password := strings.TrimSpace(lines[i+1])
		creds = append(creds, Credential{Website: website, Password: password})
	}
	return creds, nil
}

// WritePlainFile writes credentials as a plaintext backup in the same
// 3-line block format ReadPlainFile parses. The file holds passwords in the
// clear; callers confirm that with the user first.
func WritePlainFile(path string, creds []Credential) error {
	var b bytes.Buffer
	for _, c := range creds {
		b.WriteString(c.Website)
		b.WriteByte('\n')
		b.WriteString(c.Password)
		b.WriteByte('\n')
		b.WriteString(vault.Separator)
		b.WriteByte('\n')
	}
	return filex.ReplaceAtomic(path, b.Bytes())
}

// ImportPlainFile merges a plaintext backup file into dst under the same
// duplicate rules as ImportVault.
func ImportPlainFile(dst *vault.Store, srcPath string) (*Report, error) {
	creds, err := ReadPlainFile(srcPath)
	if err != nil {
		return nil, err
	}
	return ImportPlaintext(dst, creds), nil
}
