// Package schedule computes event recurrence advancement and task due
// dates relative to an event's start time. All functions are pure and
// take the current time as an argument.
package schedule

import (
	"fmt"
	"time"

	"github.com/bengol30/patifon-events-management-sub000/internal/model"
)

// maxAdvance bounds recurrence advancement so malformed input cannot
// loop forever; past the guard the candidate is returned as-is.
const maxAdvance = 200

const defaultDueTime = "09:00"

// NextOccurrence advances base by the recurrence interval until the
// candidate is at or after now. When the advanced candidate overshoots
// a recurrence end that is itself still in the future, the candidate is
// clamped to the end; an end already in the past never clamps (a future
// date is preferred over a past end-date).
func NextOccurrence(base time.Time, rec model.Recurrence, end time.Time, now time.Time) time.Time {
	if base.IsZero() {
		return base
	}

	var step func(time.Time) time.Time
	switch rec {
	case model.RecurrenceWeekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case model.RecurrenceBiweekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 14) }
	case model.RecurrenceMonthly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	default:
		return base
	}

	candidate := base
	for i := 0; i < maxAdvance && candidate.Before(now); i++ {
		candidate = step(candidate)
	}

	if !end.IsZero() && candidate.After(end) && !end.Before(now) {
		candidate = end
	}
	return candidate
}

const (
	ModeEventDay = "event_day"
	ModeOffset   = "offset"
)

// DueDateFromMode places a due date relative to the anchor (event start
// when known, otherwise now). The time of day is replaced by timeStr
// (HH:MM, falling back to 09:00), then the date is shifted by
// offsetDays calendar days; event_day mode ignores the offset. The
// result is formatted as naive local time with no timezone suffix.
func DueDateFromMode(mode string, offsetDays int, timeStr string, anchor time.Time, now time.Time) string {
	base := anchor
	if base.IsZero() {
		base = now
	}

	hour, minute := parseClock(timeStr)
	due := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, base.Location())
	if mode == ModeOffset {
		due = due.AddDate(0, 0, offsetDays)
	}
	return due.Format(model.DueDateLayout)
}

func parseClock(s string) (hour, minute int) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		fmt.Sscanf(defaultDueTime, "%d:%d", &hour, &minute)
	}
	return hour, minute
}
