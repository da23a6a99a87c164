// Package vault implements the on-disk vault format and the authenticated
// entry store built on top of it.
//
// A vault is a line-oriented UTF-8 file. It opens with a salt section and a
// verification section, optionally followed by a recovery section, then zero
// or more entry blocks. Every section and every entry block is closed by the
// same separator line:
//
//	__SALT__
//	<Base64 salt>
//	------------------------
//	__VERIFICATION__
//	<ciphertext>
//	------------------------
//	__RECOVERY__
//	<Base64 token hash>
//	------------------------
//	<website ciphertext>
//	<password ciphertext>
//	------------------------
//
// Framing is strict: anything that deviates from this shape fails the whole
// load with ErrCorruptVault. There is no partial recovery.
package vault

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"vaultkeeper/internal/filex"
)

const (
	MarkerSalt         = "__SALT__"
	MarkerVerification = "__VERIFICATION__"
	MarkerRecovery     = "__RECOVERY__"
	Separator          = "------------------------"
)

// VerificationPlaintext is the known plaintext encrypted into the
// verification section. Decrypting it proves the derived key is correct.
const VerificationPlaintext = "check123"

// ErrCorruptVault reports a vault file that does not match the expected
// framing. The message carries the offending line number.
var ErrCorruptVault = errors.New("corrupt vault file")

// Header holds the decoded header sections of a vault file.
type Header struct {
	Salt         []byte
	Verification string
	// RecoveryHash is Base64(SHA-256(recovery token)), empty when the vault
	// has no recovery section.
	RecoveryHash string
}

// RawEntry is one entry block as stored on disk: two independent ciphertext
// lines for the website label and the password.
type RawEntry struct {
	Website  string
	Password string
}

// File is a fully parsed vault file. Entries remain ciphertext; decryption
// is the store's job.
type File struct {
	Header  Header
	Entries []RawEntry
}

// Load reads and parses a vault file, validating the framing strictly.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vault %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes vault file contents.
func Parse(data []byte) (*File, error) {
	lines := splitLines(data)
	p := &parser{lines: lines}

	f := &File{}

	if err := p.expectMarker(MarkerSalt); err != nil {
		return nil, err
	}
	saltLine, err := p.contentLine()
	if err != nil {
		return nil, err
	}
	salt, err := base64.StdEncoding.DecodeString(saltLine)
	if err != nil {
		return nil, corruptf(p.pos, "salt is not valid base64")
	}
	f.Header.Salt = salt
	if err := p.expectSeparator(); err != nil {
		return nil, err
	}

	if err := p.expectMarker(MarkerVerification); err != nil {
		return nil, err
	}
	if f.Header.Verification, err = p.contentLine(); err != nil {
		return nil, err
	}
	if err := p.expectSeparator(); err != nil {
		return nil, err
	}

	if p.peek() == MarkerRecovery {
		p.next()
		if f.Header.RecoveryHash, err = p.contentLine(); err != nil {
			return nil, err
		}
		if err := p.expectSeparator(); err != nil {
			return nil, err
		}
	}

	for !p.done() {
		var e RawEntry
		if e.Website, err = p.contentLine(); err != nil {
			return nil, err
		}
		if e.Password, err = p.contentLine(); err != nil {
			return nil, err
		}
		if err := p.expectSeparator(); err != nil {
			return nil, err
		}
		f.Entries = append(f.Entries, e)
	}

	return f, nil
}

// Encode renders the file back to its on-disk byte form.
func (f *File) Encode() []byte {
	var b bytes.Buffer

	writeSection := func(marker, content string) {
		b.WriteString(marker)
		b.WriteByte('\n')
		b.WriteString(content)
		b.WriteByte('\n')
		b.WriteString(Separator)
		b.WriteByte('\n')
	}

	writeSection(MarkerSalt, base64.StdEncoding.EncodeToString(f.Header.Salt))
	writeSection(MarkerVerification, f.Header.Verification)
	if f.Header.RecoveryHash != "" {
		writeSection(MarkerRecovery, f.Header.RecoveryHash)
	}

	for _, e := range f.Entries {
		b.WriteString(e.Website)
		b.WriteByte('\n')
		b.WriteString(e.Password)
		b.WriteByte('\n')
		b.WriteString(Separator)
		b.WriteByte('\n')
	}

	return b.Bytes()
}

// Write persists the file atomically: the encoded bytes land in a temp
// sibling that is fsynced and renamed over the target.
func Write(path string, f *File) error {
	return filex.ReplaceAtomic(path, f.Encode())
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) done() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) peek() string {
	if p.done() {
		return ""
	}
	return p.lines[p.pos]
}

func (p *parser) next() string {
	line := p.lines[p.pos]
	p.pos++
	return line
}

func (p *parser) expectMarker(marker string) error {
	if p.done() || p.next() != marker {
		return corruptf(p.pos, "expected marker %s", marker)
	}
	return nil
}

func (p *parser) expectSeparator() error {
	if p.done() || p.next() != Separator {
		return corruptf(p.pos, "expected separator")
	}
	return nil
}

// contentLine consumes one payload line. Markers, separators and blank lines
// are not valid payloads.
func (p *parser) contentLine() (string, error) {
	if p.done() {
		return "", corruptf(p.pos, "unexpected end of file")
	}
	line := p.next()
	switch line {
	case "", Separator, MarkerSalt, MarkerVerification, MarkerRecovery:
		return "", corruptf(p.pos, "expected content line")
	}
	return line, nil
}

func corruptf(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrCorruptVault, line, fmt.Sprintf(format, args...))
}

// splitLines splits on \n, tolerates \r\n, and drops a single trailing
// empty element produced by a final newline.
func splitLines(data []byte) []string {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
