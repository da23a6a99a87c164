package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestCadence_Daily(t *testing.T) {
	s := Settings{Type: Daily, Hour: 2, Minute: 30, DayOfMonth: 1}

	tests := []struct {
		name     string
		now      time.Time
		wantLast time.Time
		wantNext time.Time
	}{
		{
			name:     "after todays occurrence",
			now:      date(2025, 3, 14, 10, 0),
			wantLast: date(2025, 3, 14, 2, 30),
			wantNext: date(2025, 3, 15, 2, 30),
		},
		{
			name:     "before todays occurrence",
			now:      date(2025, 3, 14, 1, 0),
			wantLast: date(2025, 3, 13, 2, 30),
			wantNext: date(2025, 3, 14, 2, 30),
		},
		{
			name:     "exactly at occurrence",
			now:      date(2025, 3, 14, 2, 30),
			wantLast: date(2025, 3, 14, 2, 30),
			wantNext: date(2025, 3, 15, 2, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLast, lastOccurrenceOnOrBefore(tt.now, s))
			assert.Equal(t, tt.wantNext, nextOccurrence(tt.now, s))
		})
	}
}

func TestCadence_Weekly(t *testing.T) {
	// fires Mondays at 02:00; 2025-03-14 is a Friday
	s := Settings{Type: Weekly, Hour: 2, Weekday: 1, DayOfMonth: 1}

	now := date(2025, 3, 14, 10, 0)
	assert.Equal(t, date(2025, 3, 10, 2, 0), lastOccurrenceOnOrBefore(now, s))
	assert.Equal(t, date(2025, 3, 17, 2, 0), nextOccurrence(now, s))

	// on the scheduled weekday but before the hour
	monday := date(2025, 3, 10, 1, 0)
	assert.Equal(t, date(2025, 3, 3, 2, 0), lastOccurrenceOnOrBefore(monday, s))
	assert.Equal(t, date(2025, 3, 10, 2, 0), nextOccurrence(monday, s))
}

func TestCadence_Monthly(t *testing.T) {
	s := Settings{Type: Monthly, Hour: 2, DayOfMonth: 28}

	now := date(2025, 3, 14, 10, 0)
	assert.Equal(t, date(2025, 2, 28, 2, 0), lastOccurrenceOnOrBefore(now, s))
	assert.Equal(t, date(2025, 3, 28, 2, 0), nextOccurrence(now, s))

	// early in the month, previous occurrence is last month
	early := Settings{Type: Monthly, Hour: 2, DayOfMonth: 1}
	jan := date(2025, 1, 1, 1, 0)
	assert.Equal(t, date(2024, 12, 1, 2, 0), lastOccurrenceOnOrBefore(jan, early))
	assert.Equal(t, date(2025, 1, 1, 2, 0), nextOccurrence(jan, early))
}
