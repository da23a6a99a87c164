package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"vaultkeeper/internal/cryptox"
	"vaultkeeper/internal/shared"
)

// siteArg takes the website label from the command arguments when present
// and prompts for it otherwise.
func (a *App) siteArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return getSimpleText(a.reader, "Website", os.Stdout)
}

// List prints all website labels.
func (a *App) List(ctx context.Context) error {
	sites := a.store.List()
	if len(sites) == 0 {
		printlnFn("The vault is empty.")
		return nil
	}
	for _, site := range sites {
		printlnFn(site)
	}
	if n := a.store.Unreadable(); n > 0 {
		printlnFn(fmt.Sprintf("(%d entries predate the last recovery and cannot be read)", n))
	}
	return nil
}

// Add prompts for a website and password and stores a new entry. An empty
// password is replaced with a generated one, which is printed.
func (a *App) Add(ctx context.Context) error {
	site, err := getSimpleText(a.reader, "Website", os.Stdout)
	if err != nil {
		return err
	}
	if site == "" {
		return fmt.Errorf("website cannot be empty")
	}

	password, err := getSecret("Password (empty to generate)", os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	pw := string(password)
	if pw == "" {
		pw = cryptox.NewPassword()
		printlnFn("Generated password:", pw)
	}

	if err := a.store.Add(site, pw); err != nil {
		return err
	}
	printlnFn("Stored.")
	return nil
}

// Show prints the password for one website.
func (a *App) Show(ctx context.Context, args []string) error {
	site, err := a.siteArg(args)
	if err != nil {
		return err
	}
	pw, err := a.store.Reveal(site)
	if err != nil {
		return err
	}
	printlnFn(pw)
	return nil
}

// Edit replaces the password of an existing entry.
func (a *App) Edit(ctx context.Context, args []string) error {
	site, err := a.siteArg(args)
	if err != nil {
		return err
	}

	password, err := getSecret("New password (empty to generate)", os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	pw := string(password)
	if pw == "" {
		pw = cryptox.NewPassword()
		printlnFn("Generated password:", pw)
	}

	if err := a.store.UpdatePassword(site, pw); err != nil {
		return err
	}
	printlnFn("Updated.")
	return nil
}

// Delete removes an entry after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	site, err := a.siteArg(args)
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s? (y/n)", site), os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.store.Delete(site); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// Search prints labels containing the given term.
func (a *App) Search(ctx context.Context, args []string) error {
	var term string
	var err error
	if len(args) > 0 {
		term = strings.Join(args, " ")
	} else if term, err = getSimpleText(a.reader, "Search term", os.Stdout); err != nil {
		return err
	}

	matches := a.store.Search(term)
	if len(matches) == 0 {
		printlnFn("No matches.")
		return nil
	}
	for _, site := range matches {
		printlnFn(site)
	}
	return nil
}

// Generate prints a fresh random password without storing anything.
func (a *App) Generate(ctx context.Context) error {
	printlnFn(cryptox.NewPassword())
	return nil
}
