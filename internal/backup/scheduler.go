package backup

import (
	"context"
	"sync"
	"time"

	"vaultkeeper/internal/logging"
)

// Scheduler drives the Service from a single one-shot timer. Each firing
// performs one change-detected backup and arms the timer for the next
// occurrence; there is no ticker and no cron table. Background failures are
// logged and swallowed so the interactive session is never interrupted.
type Scheduler struct {
	svc      *Service
	settings Settings
	logger   logging.Logger

	nowFn func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewScheduler(svc *Service, settings Settings, logger logging.Logger) *Scheduler {
	return &Scheduler{svc: svc, settings: settings, logger: logger, nowFn: time.Now}
}

// Start runs after a successful authentication. If an occurrence was missed
// while the program was not running, a catch-up backup fires immediately in
// the background; then the timer is armed for the next occurrence. Disabled
// schedules do nothing.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.settings.Enabled {
		s.logger.Debug(ctx, "backup schedule disabled")
		return
	}

	if s.missedOccurrence(ctx) {
		go s.runOnce(ctx, "catch-up")
	}
	s.scheduleNext(ctx)
}

// Shutdown stops the timer. A backup already in flight finishes on its own.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// RunOnceIn arms an extra one-shot backup after d, independent of the
// cadence. Useful for trying out a freshly edited schedule.
func (s *Scheduler) RunOnceIn(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	time.AfterFunc(d, func() { s.runOnce(ctx, "manual") })
}

func (s *Scheduler) missedOccurrence(ctx context.Context) bool {
	meta, err := LoadMeta(s.svc.cfg.VaultPath)
	if err != nil {
		s.logger.Warn(ctx, "cannot read backup state, assuming backup due", "error", err)
		return true
	}

	last := lastOccurrenceOnOrBefore(s.nowFn(), s.settings)
	return meta.LastBackupAt.IsZero() || meta.LastBackupAt.Before(last)
}

func (s *Scheduler) scheduleNext(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	now := s.nowFn()
	next := nextOccurrence(now, s.settings)
	s.logger.Debug(ctx, "next backup scheduled", "at", next)

	s.timer = time.AfterFunc(next.Sub(now), func() {
		s.runOnce(ctx, "scheduled")
		s.scheduleNext(ctx)
	})
}

func (s *Scheduler) runOnce(ctx context.Context, reason string) {
	if timeout := s.svc.cfg.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	key, err := s.svc.BackupIfChanged(ctx)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "background backup failed", "reason", reason, "error", err)
	case key != "":
		s.logger.Info(ctx, "background backup done", "reason", reason, "key", key)
	}
}
