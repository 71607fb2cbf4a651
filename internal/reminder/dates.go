package reminder

import (
	"time"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

// MidnightUTC truncates t to midnight UTC. Both sides of the day-difference
// subtraction go through this, so the difference is always a whole number of
// days regardless of the caller's local clock time.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ProjectToCurrentWindow maps a historical birth date onto its nearest
// upcoming occurrence relative to now, so a year-independent day difference
// can be computed. The original birth year is ignored.
//
// A January birthday viewed from any other month projects into next year:
// the reminder window is capped at 30 days, so January dates are the only
// ones that can be "upcoming" across a year boundary, and without the bump
// the projected date would already have passed. No other month is adjusted.
//
// Feb 29 projected onto a non-leap year normalizes to March 1 (time.Date
// rollover); the projection never fails.
func ProjectToCurrentWindow(birthDate, now time.Time) time.Time {
	year := now.Year()
	if birthDate.Month() == time.January && now.Month() != time.January {
		year++
	}
	return time.Date(year, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
}

// Evaluate decides whether a reminder for b is due today. It returns the
// whole-day distance to the projected birthday and whether that distance is
// an exact member of the record's reminder offsets. Records with no (or
// unparseable) offsets never match.
func Evaluate(b models.Birthday, today time.Time) (int, bool) {
	midnight := MidnightUTC(today)
	projected := ProjectToCurrentWindow(b.BirthDate, midnight)
	daysUntil := int(projected.Sub(midnight).Hours() / 24)

	for _, offset := range b.ReminderOffsets {
		if offset == daysUntil {
			return daysUntil, true
		}
	}
	return daysUntil, false
}
