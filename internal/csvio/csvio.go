// Package csvio reads and writes the credential CSV interchange format:
// a header of type,name,login_password followed by one row per credential.
// Only rows typed "login" carry credentials; other row types are ignored on
// import.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var header = []string{"type", "name", "login_password"}

// ErrBadHeader reports a CSV whose first row is not the expected header.
var ErrBadHeader = errors.New("unexpected csv header")

// Record is one credential row.
type Record struct {
	Name     string
	Password string
}

// Read parses credential rows from r. A UTF-8 BOM before the header is
// tolerated. Rows with a type other than "login" are skipped.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\uFEFF")
	}
	for i, want := range header {
		if i >= len(first) || !strings.EqualFold(first[i], want) {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, first)
		}
	}

	var out []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if !strings.EqualFold(row[0], "login") {
			continue
		}
		out = append(out, Record{Name: row[1], Password: row[2]})
	}
}

// Write renders records to w, header first.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write([]string{"login", rec.Name, rec.Password}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFile reads credential rows from a file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// WriteFile writes credential rows to a file, truncating it.
func WriteFile(path string, records []Record) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
