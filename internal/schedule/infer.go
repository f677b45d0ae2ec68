package schedule

import (
	"strings"
	"time"
)

// inferRule is one bucket of the due-date classifier: a keyword match
// and a placement relative to the anchor. Rules are evaluated in order,
// first match wins.
type inferRule struct {
	name     string
	keywords []string
	place    func(anchor time.Time) time.Time
}

func atClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// The bucket order is part of the contract: marketing is checked before
// volunteer recruitment, before logistics, before reminders, before
// billing, before summaries.
var inferRules = []inferRule{
	{
		name:     "marketing",
		keywords: []string{"שיווק", "פרסום", "פוסט", "פליירים", "קמפיין", "marketing", "promo", "publicity"},
		place:    func(a time.Time) time.Time { return atClock(a.AddDate(0, 0, -5), 12, 0) },
	},
	{
		name:     "volunteers",
		keywords: []string{"מתנדב", "מתנדבים", "גיוס", "volunteer", "recruit"},
		place:    func(a time.Time) time.Time { return atClock(a.AddDate(0, 0, -3), 11, 0) },
	},
	{
		name:     "logistics",
		keywords: []string{"לוגיסטיקה", "הקמה", "ציוד", "הגברה", "כיסאות", "logistics", "setup", "equipment"},
		place:    func(a time.Time) time.Time { return a.Add(-6 * time.Hour) },
	},
	{
		name:     "reminder",
		keywords: []string{"תזכורת", "תזכורות", "reminder"},
		place:    func(a time.Time) time.Time { return a.Add(-4 * time.Hour) },
	},
	{
		name:     "billing",
		keywords: []string{"חשבונית", "חשבוניות", "תשלום", "גבייה", "invoice", "billing", "payment"},
		place:    func(a time.Time) time.Time { return atClock(a.AddDate(0, 0, 2), 10, 0) },
	},
	{
		name:     "summary",
		keywords: []string{"סיכום", "דוח", "משוב", "summary", "report", "recap"},
		place:    func(a time.Time) time.Time { return atClock(a.AddDate(0, 0, 1), 9, 30) },
	},
}

// InferDueDate picks a due date for a task that has none, based on
// keywords in its title and description. Without a known event start
// the anchor falls back to 48 hours from now, and the default bucket
// lands at 10:00. A candidate that ended up in the past is pushed to
// two hours from now. Callers persist the result so inference runs at
// most once per task.
func InferDueDate(title, description string, eventStart time.Time, now time.Time) time.Time {
	anchor := eventStart
	anchorKnown := !anchor.IsZero()
	if !anchorKnown {
		anchor = now.Add(48 * time.Hour)
	}

	text := strings.ToLower(title + " " + description)

	due := time.Time{}
	for _, r := range inferRules {
		if matchesAny(text, r.keywords) {
			due = r.place(anchor)
			break
		}
	}
	if due.IsZero() {
		// Default bucket: the anchor itself, at the anchor's own
		// time of day when one is known.
		if anchorKnown {
			due = anchor
		} else {
			due = atClock(anchor, 10, 0)
		}
	}

	if due.Before(now) {
		due = now.Add(2 * time.Hour)
	}
	return due
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
