package backup

import "time"

// lastOccurrenceOnOrBefore returns the most recent scheduled fire time that
// is not after now. The zero DayOfMonth clamp in Settings guarantees the
// day exists in every month.
func lastOccurrenceOnOrBefore(now time.Time, s Settings) time.Time {
	switch s.Type {
	case Weekly:
		back := (int(now.Weekday()) - s.Weekday + 7) % 7
		c := at(now.AddDate(0, 0, -back), s)
		if c.After(now) {
			c = at(c.AddDate(0, 0, -7), s)
		}
		return c
	case Monthly:
		c := atDay(now, s.DayOfMonth, s)
		if c.After(now) {
			// first of the current month, minus a day, lands in the
			// previous month without AddDate normalization surprises
			prevMonth := atDay(now, 1, s).AddDate(0, 0, -1)
			c = atDay(prevMonth, s.DayOfMonth, s)
		}
		return c
	default: // Daily
		c := at(now, s)
		if c.After(now) {
			c = at(now.AddDate(0, 0, -1), s)
		}
		return c
	}
}

// nextOccurrence returns the first scheduled fire time strictly after now.
func nextOccurrence(now time.Time, s Settings) time.Time {
	last := lastOccurrenceOnOrBefore(now, s)
	switch s.Type {
	case Weekly:
		return at(last.AddDate(0, 0, 7), s)
	case Monthly:
		return atDay(last.AddDate(0, 1, 0), s.DayOfMonth, s)
	default:
		return at(last.AddDate(0, 0, 1), s)
	}
}

// at reconstructs d's date with the schedule's wall-clock time, which keeps
// the fire time stable across DST shifts.
func at(d time.Time, s Settings) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), s.Hour, s.Minute, 0, 0, d.Location())
}

func atDay(d time.Time, day int, s Settings) time.Time {
	return time.Date(d.Year(), d.Month(), day, s.Hour, s.Minute, 0, 0, d.Location())
}
