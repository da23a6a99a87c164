// Package backup implements scheduled, change-detected uploads of the
// encrypted vault file to a remote blob store, plus retention pruning and
// restore.
//
// Two sidecar files live next to the vault, both in Java-properties form:
//
//	<vault>.backup.conf  schedule settings, editable by the user
//	<vault>.lastbackup   last uploaded hash and timestamp, machine-managed
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/magiconair/properties"

	"vaultkeeper/internal/filex"
)

// Cadence names how often a backup fires.
type Cadence string

const (
	Daily   Cadence = "daily"
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
)

// ErrInvalidSchedule reports sidecar settings that cannot be used.
var ErrInvalidSchedule = errors.New("invalid backup schedule")

// Settings is the user-editable schedule, stored in <vault>.backup.conf.
type Settings struct {
	Enabled bool
	Type    Cadence
	// Hour and Minute are the local wall-clock time a backup fires.
	Hour   int
	Minute int
	// Weekday applies to weekly schedules. 0 is Sunday, matching
	// time.Weekday.
	Weekday int
	// DayOfMonth applies to monthly schedules and is kept in 1..28 so every
	// month has the day.
	DayOfMonth int
}

// DefaultSettings is the schedule written for a vault that has no sidecar:
// disabled, daily at 02:00.
func DefaultSettings() Settings {
	return Settings{Type: Daily, Hour: 2, DayOfMonth: 1}
}

// Meta is the machine-managed backup state, stored in <vault>.lastbackup.
type Meta struct {
	LastUploadedHash string
	LastBackupAt     time.Time
}

// SettingsPath returns the schedule sidecar path for a vault.
func SettingsPath(vaultPath string) string {
	return vaultPath + ".backup.conf"
}

// MetaPath returns the state sidecar path for a vault.
func MetaPath(vaultPath string) string {
	return vaultPath + ".lastbackup"
}

const (
	keyEnabled = "schedule.enabled"
	keyType    = "schedule.type"
	keyHour    = "schedule.hour"
	keyMinute  = "schedule.minute"
	keyWeekday = "schedule.dow"
	keyDay     = "schedule.dom"

	keyLastHash = "last_uploaded_hash"
	keyLastAt   = "last_backup_at_utc"
)

// LoadSettings reads the schedule sidecar for a vault. A missing sidecar
// yields DefaultSettings; a present but invalid one is an error.
func LoadSettings(vaultPath string) (Settings, error) {
	path := SettingsPath(vaultPath)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}

	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalidSchedule, path, err)
	}

	def := DefaultSettings()
	s := Settings{
		Enabled:    p.GetBool(keyEnabled, false),
		Type:       Cadence(p.GetString(keyType, string(def.Type))),
		Hour:       p.GetInt(keyHour, def.Hour),
		Minute:     p.GetInt(keyMinute, def.Minute),
		Weekday:    p.GetInt(keyWeekday, def.Weekday),
		DayOfMonth: p.GetInt(keyDay, def.DayOfMonth),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes the schedule sidecar atomically.
func SaveSettings(vaultPath string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	p := properties.NewProperties()
	p.Set(keyEnabled, fmt.Sprintf("%t", s.Enabled))
	p.Set(keyType, string(s.Type))
	p.Set(keyHour, fmt.Sprintf("%d", s.Hour))
	p.Set(keyMinute, fmt.Sprintf("%d", s.Minute))
	p.Set(keyWeekday, fmt.Sprintf("%d", s.Weekday))
	p.Set(keyDay, fmt.Sprintf("%d", s.DayOfMonth))

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return filex.ReplaceAtomic(SettingsPath(vaultPath), buf.Bytes())
}

// Validate checks ranges. DayOfMonth stops at 28 so monthly schedules fire
// in February too.
func (s Settings) Validate() error {
	switch s.Type {
	case Daily, Weekly, Monthly:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSchedule, s.Type)
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidSchedule, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidSchedule, s.Minute)
	}
	if s.Weekday < 0 || s.Weekday > 6 {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidSchedule, s.Weekday)
	}
	if s.DayOfMonth < 1 || s.DayOfMonth > 28 {
		return fmt.Errorf("%w: day of month %d out of range", ErrInvalidSchedule, s.DayOfMonth)
	}
	return nil
}

// LoadMeta reads the state sidecar. A missing sidecar yields a zero Meta,
// which the scheduler reads as "never backed up".
func LoadMeta(vaultPath string) (Meta, error) {
	path := MetaPath(vaultPath)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Meta{}, nil
	}

	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Meta{}, fmt.Errorf("read %s: %w", path, err)
	}

	m := Meta{LastUploadedHash: p.GetString(keyLastHash, "")}
	if raw := p.GetString(keyLastAt, ""); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Meta{}, fmt.Errorf("parse %s in %s: %w", keyLastAt, path, err)
		}
		m.LastBackupAt = at
	}
	return m, nil
}

// SaveMeta writes the state sidecar atomically.
func SaveMeta(vaultPath string, m Meta) error {
	p := properties.NewProperties()
	p.Set(keyLastHash, m.LastUploadedHash)
	p.Set(keyLastAt, m.LastBackupAt.UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	return filex.ReplaceAtomic(MetaPath(vaultPath), buf.Bytes())
}
