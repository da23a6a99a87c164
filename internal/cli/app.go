// Package cli implements the interactive vaultkeeper shell: the
// authentication flow, the command REPL and the wiring between the vault
// store and the background backup scheduler.
package cli

import (
	"bufio"
	"context"
	"os"

	"vaultkeeper/internal/backup"
	"vaultkeeper/internal/blobstore"
	"vaultkeeper/internal/config"
	"vaultkeeper/internal/logging"
	"vaultkeeper/internal/vault"
)

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader

	store     *vault.Store
	backupSvc *backup.Service
	scheduler *backup.Scheduler
}

func NewApp(c *config.Config, logger logging.Logger) *App {
	return &App{config: c, logger: logger, reader: bufio.NewReader(os.Stdin)}
}

// Run takes the user through authentication and, on success, into the
// command loop. After a recovery rekey there is no open store and the
// program ends so the user can restart with the new credentials.
func (a *App) Run(ctx context.Context) error {
	if err := a.authFlow(ctx); err != nil {
		return err
	}
	if a.store == nil {
		return nil
	}

	a.initBackup(ctx)
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
	}
	// the scheduler may be swapped by the schedule command
	defer func() {
		if a.scheduler != nil {
			a.scheduler.Shutdown()
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, scanner)
	return nil
}

// newBlobStore is a test seam for the remote store constructor.
var newBlobStore = func(ctx context.Context, cfg blobstore.S3Config) (blobstore.Store, error) {
	return blobstore.NewS3Store(ctx, cfg)
}

// initBackup wires the remote store, the backup service and the scheduler.
// Backup trouble never blocks vault access: on any failure, the health
// probe included, the session continues without backups, with a warning in
// the log.
func (a *App) initBackup(ctx context.Context) {
	blob, err := newBlobStore(ctx, blobstore.S3Config{
		Region:       a.config.S3Region,
		Bucket:       a.config.S3Bucket,
		BaseEndpoint: a.config.S3BaseEndpoint,
		AccessKey:    a.config.S3AccessKey,
		SecretKey:    a.config.S3SecretKey,
	})
	if err != nil {
		a.logger.Warn(ctx, "backups unavailable", "error", err)
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()
	if err := blob.HealthCheck(probeCtx); err != nil {
		a.logger.Warn(ctx, "backups unavailable", "error", err)
		return
	}

	settings, err := backup.LoadSettings(a.config.VaultPath)
	if err != nil {
		a.logger.Warn(ctx, "backups unavailable", "error", err)
		return
	}

	a.backupSvc = backup.NewService(blob, a.logger, backup.ServiceConfig{
		VaultPath:      a.config.VaultPath,
		TimestampFirst: a.config.BackupTimestampFirst,
		RetainLatest:   a.config.BackupRetainLatest,
		RequestTimeout: a.config.RequestTimeout,
	})
	a.scheduler = backup.NewScheduler(a.backupSvc, settings, a.logger)
}

func (a *App) isAuthenticated() bool {
	return a.store != nil
}
