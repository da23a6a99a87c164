package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"vaultkeeper/internal/session"
	"vaultkeeper/internal/shared"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// maxAuthAttempts is how many wrong passwords end the program.
const maxAuthAttempts = 3

// recoverCommand typed at the password prompt switches to token recovery.
const recoverCommand = "recover"

// authFlow takes the user from program start to an open vault store. Three
// states are possible on return:
//   - a.store is set: normal authenticated session
//   - a.store is nil, err is nil: a recovery rekey ran, restart required
//   - err is set: setup declined, attempts exhausted, or an I/O failure
func (a *App) authFlow(ctx context.Context) error {
	if !session.Exists(a.config.VaultPath) {
		return a.setupFlow(ctx)
	}

	for attempts := 0; attempts < maxAuthAttempts; {
		password, err := getSecret(fmt.Sprintf("Master password (or %q)", recoverCommand), os.Stdout)
		if err != nil {
			return err
		}

		if string(password) == recoverCommand {
			shared.WipeByteArray(password)
			err := a.recoveryFlow(ctx)
			if errors.Is(err, session.ErrRecoveryMismatch) {
				// a rejected token goes back to the password prompt,
				// nothing was changed and no attempt was spent
				printlnFn("Recovery token rejected.")
				continue
			}
			return err
		}

		store, err := session.Authenticate(a.config.VaultPath, string(password))
		shared.WipeByteArray(password)
		if err == nil {
			a.store = store
			a.logger.Info(ctx, "vault unlocked", "path", a.config.VaultPath)
			if n := store.Unreadable(); n > 0 {
				printlnFn(fmt.Sprintf("Note: %d entries predate the last recovery and cannot be read.", n))
			}
			return nil
		}
		if !errors.Is(err, session.ErrAuthentication) {
			return err
		}
		attempts++
		printlnFn(fmt.Sprintf("Wrong password (%d of %d attempts).", attempts, maxAuthAttempts))
	}

	return session.ErrAuthentication
}

func (a *App) setupFlow(ctx context.Context) error {
	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("No vault found at %s. Create one? (y/n)", a.config.VaultPath), os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		return errors.New("no vault to open")
	}

	password, err := getSecret("Master password (empty to generate)", os.Stdout)
	if err != nil {
		return err
	}
	res, err := session.Setup(a.config.VaultPath, string(password))
	shared.WipeByteArray(password)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "vault created", "path", a.config.VaultPath)

	printlnFn("Vault created. Write these down, they are shown only once.")
	printlnFn("Master token:  ", res.MasterToken)
	printlnFn("Recovery token:", res.RecoveryToken)

	store, err := session.Authenticate(a.config.VaultPath, res.MasterToken)
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

// recoveryFlow verifies the recovery token, exports the still-encrypted
// vault, and rekeys it. The old entries stay in the file but are unreadable
// under the new key; the export keeps them recoverable with the old
// password.
func (a *App) recoveryFlow(ctx context.Context) error {
	token, err := getSecret("Recovery token", os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(token)

	if err := session.VerifyRecoveryToken(a.config.VaultPath, string(token)); err != nil {
		return err
	}

	exportPath, err := getSimpleText(a.reader,
		fmt.Sprintf("Export path for the current vault (default %s.export)", a.config.VaultPath), os.Stdout)
	if err != nil {
		return err
	}
	if exportPath == "" {
		exportPath = a.config.VaultPath + ".export"
	}

	password, err := getSecret("New master password (empty to generate)", os.Stdout)
	if err != nil {
		return err
	}
	res, err := session.Rekey(a.config.VaultPath, exportPath, string(password))
	shared.WipeByteArray(password)
	if err != nil {
		return err
	}
	a.logger.Info(ctx, "vault rekeyed", "path", a.config.VaultPath, "export", exportPath)

	printlnFn("Vault rekeyed. Write these down, they are shown only once.")
	printlnFn("Master token:  ", res.MasterToken)
	printlnFn("Recovery token:", res.RecoveryToken)
	printlnFn("The previous vault was exported to", exportPath)
	printlnFn("Restart the program and log in with the new master token.")
	return nil
}
