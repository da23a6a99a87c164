package cli

import (
	"context"
	"fmt"
	"os"

	"vaultkeeper/internal/csvio"
	"vaultkeeper/internal/filex"
	"vaultkeeper/internal/merge"
	"vaultkeeper/internal/shared"
)

func (a *App) promptSourceVault() (string, string, error) {
	path, err := getSimpleText(a.reader, "Path to the source vault", os.Stdout)
	if err != nil {
		return "", "", err
	}
	password, err := getSecret("Source vault password", os.Stdout)
	if err != nil {
		return "", "", err
	}
	defer shared.WipeByteArray(password)
	return path, string(password), nil
}

func printReport(r *merge.Report) {
	printlnFn(fmt.Sprintf("Added %d, skipped %d, failed %d.", r.Added, r.Skipped, r.Failed))
	for _, site := range r.SkippedSites {
		printlnFn("  skipped (already present):", site)
	}
	for _, site := range r.FailedSites {
		printlnFn("  failed:", site)
	}
}

// ImportVault merges entries from another vault file into the open one.
func (a *App) ImportVault(ctx context.Context) error {
	path, password, err := a.promptSourceVault()
	if err != nil {
		return err
	}

	r, err := merge.ImportVault(a.store, path, password)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "vault import finished",
		"source", path, "added", r.Added, "skipped", r.Skipped, "failed", r.Failed)
	printReport(r)
	return nil
}

// Inspect decrypts another vault file and prints its entries without
// changing anything.
func (a *App) Inspect(ctx context.Context) error {
	path, password, err := a.promptSourceVault()
	if err != nil {
		return err
	}

	creds, r, err := merge.DecryptVault(path, password)
	if err != nil {
		return err
	}
	for _, c := range creds {
		printlnFn(c.Website, " ", c.Password)
	}
	if r.Failed > 0 {
		printlnFn(fmt.Sprintf("(%d entries could not be decrypted)", r.Failed))
	}
	return nil
}

// ImportCSV merges credentials from a CSV export into the open vault.
func (a *App) ImportCSV(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to the CSV file", os.Stdout)
	if err != nil {
		return err
	}

	records, err := csvio.ReadFile(path)
	if err != nil {
		return err
	}

	creds := make([]merge.Credential, 0, len(records))
	for _, rec := range records {
		creds = append(creds, merge.Credential{Website: rec.Name, Password: rec.Password})
	}

	r := merge.ImportPlaintext(a.store, creds)
	a.logger.Info(ctx, "csv import finished",
		"source", path, "added", r.Added, "skipped", r.Skipped, "failed", r.Failed)
	printReport(r)
	return nil
}

// ExportCSV writes all readable entries to a CSV file in the clear, after
// an explicit confirmation.
func (a *App) ExportCSV(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path for the CSV export", os.Stdout)
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader,
		"The export contains plaintext passwords. Continue? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		printlnFn("Cancelled.")
		return nil
	}

	var records []csvio.Record
	for _, site := range a.store.List() {
		pw, err := a.store.Reveal(site)
		if err != nil {
			return err
		}
		records = append(records, csvio.Record{Name: site, Password: pw})
	}

	if err := csvio.WriteFile(path, records); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Exported %d entries to %s.", len(records), path))
	return nil
}

// ImportPlain merges a 3-line plaintext backup file into the open vault.
func (a *App) ImportPlain(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to the plaintext backup", os.Stdout)
	if err != nil {
		return err
	}

	r, err := merge.ImportPlainFile(a.store, path)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "plaintext import finished",
		"source", path, "added", r.Added, "skipped", r.Skipped, "failed", r.Failed)
	printReport(r)
	return nil
}

// ExportPlain writes all readable entries to a 3-line plaintext backup
// file, after an explicit confirmation.
func (a *App) ExportPlain(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path for the plaintext backup", os.Stdout)
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader,
		"The backup contains plaintext passwords. Continue? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		printlnFn("Cancelled.")
		return nil
	}

	var creds []merge.Credential
	for _, site := range a.store.List() {
		pw, err := a.store.Reveal(site)
		if err != nil {
			return err
		}
		creds = append(creds, merge.Credential{Website: site, Password: pw})
	}

	if err := merge.WritePlainFile(path, creds); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Exported %d entries to %s.", len(creds), path))
	return nil
}

// Export copies the encrypted vault file as is, master password not
// required to read it back later with the right credentials.
func (a *App) Export(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path for the vault copy", os.Stdout)
	if err != nil {
		return err
	}
	if err := filex.CopyFile(a.config.VaultPath, path); err != nil {
		return err
	}
	printlnFn("Exported encrypted vault to", path)
	return nil
}
