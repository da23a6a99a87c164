package backup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/blobstore"
)

func newTestScheduler(t *testing.T, settings Settings) (*Scheduler, *blobstore.MemoryStore, string) {
	t.Helper()

	svc, store, vaultPath := newTestService(t, ServiceConfig{})
	sch := NewScheduler(svc, settings, discardLogger())
	t.Cleanup(sch.Shutdown)
	return sch, store, vaultPath
}

func TestScheduler_DisabledDoesNothing(t *testing.T) {
	sch, store, _ := newTestScheduler(t, Settings{Enabled: false, Type: Daily, DayOfMonth: 1})

	sch.Start(context.Background())

	sch.mu.Lock()
	assert.Nil(t, sch.timer)
	sch.mu.Unlock()

	objs, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestScheduler_CatchUpWhenNeverBackedUp(t *testing.T) {
	sch, store, _ := newTestScheduler(t, Settings{Enabled: true, Type: Daily, Hour: 2, DayOfMonth: 1})

	sch.Start(context.Background())

	assert.Eventually(t, func() bool {
		objs, err := store.List(context.Background(), "")
		return err == nil && len(objs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_CatchUpWhenOccurrenceMissed(t *testing.T) {
	sch, store, vaultPath := newTestScheduler(t, Settings{Enabled: true, Type: Daily, Hour: 2, DayOfMonth: 1})

	// last backup predates the most recent occurrence
	stale := lastOccurrenceOnOrBefore(time.Now(), sch.settings).Add(-time.Hour)
	require.NoError(t, SaveMeta(vaultPath, Meta{LastUploadedHash: "stale", LastBackupAt: stale}))

	sch.Start(context.Background())

	assert.Eventually(t, func() bool {
		objs, err := store.List(context.Background(), "")
		return err == nil && len(objs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_NoCatchUpWhenCurrent(t *testing.T) {
	sch, store, vaultPath := newTestScheduler(t, Settings{Enabled: true, Type: Daily, Hour: 2, DayOfMonth: 1})

	require.NoError(t, SaveMeta(vaultPath, Meta{LastUploadedHash: "h", LastBackupAt: time.Now()}))

	sch.Start(context.Background())

	// the timer is armed for the next occurrence, nothing fires now
	sch.mu.Lock()
	assert.NotNil(t, sch.timer)
	sch.mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	objs, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestScheduler_MissedOccurrence(t *testing.T) {
	sch, _, vaultPath := newTestScheduler(t, Settings{Enabled: true, Type: Daily, Hour: 2, DayOfMonth: 1})

	now := date(2025, 3, 14, 10, 0)
	sch.nowFn = func() time.Time { return now }

	// no meta at all
	assert.True(t, sch.missedOccurrence(context.Background()))

	// backed up before todays 02:00 occurrence
	require.NoError(t, SaveMeta(vaultPath, Meta{LastBackupAt: date(2025, 3, 13, 14, 0)}))
	assert.True(t, sch.missedOccurrence(context.Background()))

	// backed up after it
	require.NoError(t, SaveMeta(vaultPath, Meta{LastBackupAt: date(2025, 3, 14, 9, 0)}))
	assert.False(t, sch.missedOccurrence(context.Background()))
}

func TestScheduler_RunOnceIn(t *testing.T) {
	sch, store, _ := newTestScheduler(t, Settings{Enabled: true, Type: Daily, Hour: 2, DayOfMonth: 1})

	sch.RunOnceIn(context.Background(), 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		objs, err := store.List(context.Background(), "")
		return err == nil && len(objs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_ShutdownStopsTimer(t *testing.T) {
	sch, _, vaultPath := newTestScheduler(t, Settings{Enabled: true, Type: Daily, Hour: 2, DayOfMonth: 1})
	require.NoError(t, SaveMeta(vaultPath, Meta{LastBackupAt: time.Now()}))

	sch.Start(context.Background())
	sch.Shutdown()

	sch.mu.Lock()
	assert.Nil(t, sch.timer)
	assert.True(t, sch.stopped)
	sch.mu.Unlock()
}

func TestScheduler_SaveMetaSidecarIsSeparateFile(t *testing.T) {
	_, _, vaultPath := newTestScheduler(t, Settings{Enabled: true, Type: Daily, DayOfMonth: 1})

	require.NoError(t, SaveMeta(vaultPath, Meta{LastUploadedHash: "h", LastBackupAt: time.Now()}))

	// the vault file itself is untouched by state bookkeeping
	data, err := os.ReadFile(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, "encrypted-content-v1", string(data))

	_, err = os.Stat(MetaPath(vaultPath))
	require.NoError(t, err)
}
