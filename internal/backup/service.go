package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"vaultkeeper/internal/blobstore"
	"vaultkeeper/internal/cryptox"
	"vaultkeeper/internal/filex"
	"vaultkeeper/internal/logging"
)

// DefaultRetainLatest is how many backups survive a prune when the config
// does not say otherwise.
const DefaultRetainLatest = 10

// ServiceConfig carries the per-vault backup settings that do not live in
// the schedule sidecar.
type ServiceConfig struct {
	VaultPath string
	// TimestampFirst puts the timestamp token before the vault basename in
	// object keys.
	TimestampFirst bool
	// RetainLatest is the prune target; zero means DefaultRetainLatest.
	RetainLatest int
	// RequestTimeout bounds each remote operation started from the
	// background scheduler.
	RequestTimeout time.Duration
}

// Service performs the actual backup work: change detection, upload,
// retention pruning and restore. The scheduler decides when to call it.
type Service struct {
	store  blobstore.Store
	logger logging.Logger
	cfg    ServiceConfig

	nowFn func() time.Time
}

func NewService(store blobstore.Store, logger logging.Logger, cfg ServiceConfig) *Service {
	if cfg.RetainLatest <= 0 {
		cfg.RetainLatest = DefaultRetainLatest
	}
	return &Service{store: store, logger: logger, cfg: cfg, nowFn: time.Now}
}

// BackupIfChanged uploads the vault file unless its hash matches the last
// uploaded one. It returns the object key when an upload happened and ""
// when the vault was unchanged. After a successful upload the retention
// prune runs best effort; its failure is logged, not returned.
func (s *Service) BackupIfChanged(ctx context.Context) (string, error) {
	hash, err := cryptox.FileHash(s.cfg.VaultPath)
	if err != nil {
		return "", err
	}

	meta, err := LoadMeta(s.cfg.VaultPath)
	if err != nil {
		return "", err
	}
	if meta.LastUploadedHash == hash {
		s.logger.Debug(ctx, "vault unchanged, skipping backup", "vault", s.cfg.VaultPath)
		return "", nil
	}

	now := s.nowFn()
	key := blobstore.BackupKey(s.cfg.VaultPath, now, s.cfg.TimestampFirst)

	f, err := os.Open(s.cfg.VaultPath)
	if err != nil {
		return "", fmt.Errorf("open vault: %w", err)
	}
	defer f.Close()

	if err := s.store.Put(ctx, key, f); err != nil {
		return "", err
	}

	if err := SaveMeta(s.cfg.VaultPath, Meta{LastUploadedHash: hash, LastBackupAt: now}); err != nil {
		return "", fmt.Errorf("record backup state: %w", err)
	}
	s.logger.Info(ctx, "vault backed up", "key", key)

	if n, err := s.Prune(ctx); err != nil {
		s.logger.Warn(ctx, "backup prune failed", "error", err)
	} else if n > 0 {
		s.logger.Info(ctx, "pruned old backups", "deleted", n)
	}

	return key, nil
}

// ListBackups returns this vault's backups, newest first.
func (s *Service) ListBackups(ctx context.Context) ([]blobstore.Object, error) {
	objs, err := s.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var out []blobstore.Object
	for _, o := range objs {
		if blobstore.MatchesBackup(o.Key, s.cfg.VaultPath) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].Key > out[j].Key
	})
	return out, nil
}

// Prune deletes backups beyond the retention count, oldest first, and
// returns how many were removed. Individual delete failures stop the prune
// but keep its partial progress.
func (s *Service) Prune(ctx context.Context) (int, error) {
	objs, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(objs) <= s.cfg.RetainLatest {
		return 0, nil
	}

	deleted := 0
	for _, o := range objs[s.cfg.RetainLatest:] {
		if err := s.store.Delete(ctx, o.Key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Restore downloads the backup at key into destPath. The payload stays
// encrypted; restoring never needs the master password.
func (s *Service) Restore(ctx context.Context, key, destPath string) error {
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", blobstore.ErrRemoteBackup, key, err)
	}
	return filex.ReplaceAtomic(destPath, data)
}

// RestoreLatest downloads the newest backup into destPath and returns its
// key.
func (s *Service) RestoreLatest(ctx context.Context, destPath string) (string, error) {
	objs, err := s.ListBackups(ctx)
	if err != nil {
		return "", err
	}
	if len(objs) == 0 {
		return "", fmt.Errorf("%w: no backups for %s", blobstore.ErrObjectNotFound, s.cfg.VaultPath)
	}
	if err := s.Restore(ctx, objs[0].Key, destPath); err != nil {
		return "", err
	}
	return objs[0].Key, nil
}
