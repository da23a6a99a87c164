package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_RoundTrip(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")

	want := Settings{Enabled: true, Type: Weekly, Hour: 23, Minute: 45, Weekday: 6, DayOfMonth: 15}
	require.NoError(t, SaveSettings(vaultPath, want))

	got, err := LoadSettings(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSettings_MissingFileGivesDefaults(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")

	got, err := LoadSettings(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), got)
	assert.False(t, got.Enabled)
}

func TestLoadSettings_PropertiesFormat(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")
	conf := "schedule.enabled=true\nschedule.type=monthly\nschedule.hour=4\nschedule.dom=28\n"
	require.NoError(t, os.WriteFile(SettingsPath(vaultPath), []byte(conf), 0o600))

	got, err := LoadSettings(vaultPath)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.Equal(t, Monthly, got.Type)
	assert.Equal(t, 4, got.Hour)
	assert.Equal(t, 28, got.DayOfMonth)
	// unset keys fall back to defaults
	assert.Equal(t, 0, got.Minute)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		conf string
	}{
		{name: "unknown type", conf: "schedule.type=hourly\n"},
		{name: "hour out of range", conf: "schedule.hour=24\n"},
		{name: "minute out of range", conf: "schedule.minute=60\n"},
		{name: "weekday out of range", conf: "schedule.dow=7\n"},
		{name: "day of month too high", conf: "schedule.dom=31\n"},
		{name: "day of month zero", conf: "schedule.dom=0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vaultPath := filepath.Join(t.TempDir(), "vault.txt")
			require.NoError(t, os.WriteFile(SettingsPath(vaultPath), []byte(tt.conf), 0o600))

			_, err := LoadSettings(vaultPath)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		})
	}
}

func TestMeta_RoundTrip(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	want := Meta{LastUploadedHash: "abc123", LastBackupAt: at}
	require.NoError(t, SaveMeta(vaultPath, want))

	got, err := LoadMeta(vaultPath)
	require.NoError(t, err)
	assert.Equal(t, want.LastUploadedHash, got.LastUploadedHash)
	assert.True(t, got.LastBackupAt.Equal(at))
}

func TestLoadMeta_MissingFileIsZero(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.txt")

	got, err := LoadMeta(vaultPath)
	require.NoError(t, err)
	assert.Empty(t, got.LastUploadedHash)
	assert.True(t, got.LastBackupAt.IsZero())
}
