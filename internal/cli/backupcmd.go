package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"vaultkeeper/internal/backup"
	"vaultkeeper/internal/blobstore"
)

var errBackupsUnavailable = errors.New("backups are not available in this session")

// BackupNow uploads the vault immediately if it changed since the last
// upload.
func (a *App) BackupNow(ctx context.Context) error {
	if a.backupSvc == nil {
		return errBackupsUnavailable
	}

	key, err := a.backupSvc.BackupIfChanged(ctx)
	if err != nil {
		return err
	}
	if key == "" {
		printlnFn("Vault unchanged since the last backup.")
		return nil
	}
	printlnFn("Uploaded", key)
	return nil
}

// Backups lists this vault's remote backups, newest first.
func (a *App) Backups(ctx context.Context) error {
	if a.backupSvc == nil {
		return errBackupsUnavailable
	}

	objs, err := a.backupSvc.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		printlnFn("No backups found.")
		return nil
	}
	for _, o := range objs {
		printlnFn(fmt.Sprintf("%s  %6d bytes  %s", o.LastModified.Format("2006-01-02 15:04:05"), o.Size, o.Key))
	}
	return nil
}

// Restore downloads a backup next to the vault file, never over it. With no
// key argument the newest backup is taken.
func (a *App) Restore(ctx context.Context, args []string) error {
	if a.backupSvc == nil {
		return errBackupsUnavailable
	}

	destPath := a.config.VaultPath + ".restored"

	if len(args) > 0 {
		key := args[0]
		if !blobstore.MatchesBackup(key, a.config.VaultPath) {
			return fmt.Errorf("%s is not a backup of this vault", key)
		}
		if err := a.backupSvc.Restore(ctx, key, destPath); err != nil {
			return err
		}
		printlnFn("Restored", key, "to", destPath)
		return nil
	}

	key, err := a.backupSvc.RestoreLatest(ctx, destPath)
	if err != nil {
		return err
	}
	printlnFn("Restored", key, "to", destPath)
	printlnFn("Open it with importvault to merge its entries.")
	return nil
}

// Prune deletes backups beyond the retention count.
func (a *App) Prune(ctx context.Context) error {
	if a.backupSvc == nil {
		return errBackupsUnavailable
	}

	n, err := a.backupSvc.Prune(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Deleted %d backups.", n))
	return nil
}

// Schedule shows the current backup schedule and optionally rewrites it.
// Saved changes are applied to the running scheduler right away.
func (a *App) Schedule(ctx context.Context) error {
	settings, err := backup.LoadSettings(a.config.VaultPath)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Current schedule: enabled=%t type=%s at %02d:%02d (weekday %d, day of month %d)",
		settings.Enabled, settings.Type, settings.Hour, settings.Minute, settings.Weekday, settings.DayOfMonth))

	answer, err := getSimpleText(a.reader, "Change it? (y/n)", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		return nil
	}

	if answer, err = getSimpleText(a.reader, "Enabled? (y/n)", os.Stdout); err != nil {
		return err
	}
	settings.Enabled = answer == "y" || answer == "yes"

	if answer, err = getSimpleText(a.reader, "Cadence (daily/weekly/monthly)", os.Stdout); err != nil {
		return err
	}
	if answer != "" {
		settings.Type = backup.Cadence(answer)
	}

	prompts := []struct {
		label string
		dest  *int
	}{
		{"Hour (0-23)", &settings.Hour},
		{"Minute (0-59)", &settings.Minute},
		{"Weekday (0=Sunday..6)", &settings.Weekday},
		{"Day of month (1-28)", &settings.DayOfMonth},
	}
	for _, p := range prompts {
		raw, err := getSimpleText(a.reader, fmt.Sprintf("%s [%d]", p.label, *p.dest), os.Stdout)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("not a number: %s", raw)
		}
		*p.dest = v
	}

	if err := backup.SaveSettings(a.config.VaultPath, settings); err != nil {
		return err
	}
	a.logger.Info(ctx, "backup schedule updated", "enabled", settings.Enabled, "type", string(settings.Type))

	if a.backupSvc == nil {
		printlnFn("Saved. Backups are not available in this session, the schedule applies next start.")
		return nil
	}

	// swap the running scheduler so the new cadence applies immediately
	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	a.scheduler = backup.NewScheduler(a.backupSvc, settings, a.logger)
	a.scheduler.Start(ctx)
	printlnFn("Saved and applied.")

	if answer, err = getSimpleText(a.reader, "Run a backup now? (y/n)", os.Stdout); err != nil {
		return err
	}
	if answer == "y" || answer == "yes" {
		return a.BackupNow(ctx)
	}
	return nil
}
