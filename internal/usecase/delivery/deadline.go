package delivery

import (
	"strings"
	"time"
)

// dateLayouts are the explicit formats tried before giving up on a phrase
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC3339,
}

// DeadlineParser turns free-text deadline phrases into concrete timestamps.
// The sprint-end weekday is configurable because teams close sprints on
// different days.
type DeadlineParser struct {
	sprintEndWeekday time.Weekday
	now              func() time.Time
}

// NewDeadlineParser constructs a parser anchored to wall-clock time
func NewDeadlineParser(sprintEndWeekday time.Weekday) *DeadlineParser {
	return &DeadlineParser{
		sprintEndWeekday: sprintEndWeekday,
		now:              time.Now,
	}
}

// Parse resolves a deadline phrase relative to the current local time. The
// boolean is false when the phrase is empty or not recognized; callers then
// omit the deadline rather than guessing.
func (p *DeadlineParser) Parse(phrase string) (time.Time, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(phrase))
	if trimmed == "" {
		return time.Time{}, false
	}

	now := p.now()
	switch trimmed {
	case "today", "eod", "end of day", "by eod", "by end of day":
		return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location()), true
	case "tomorrow", "by tomorrow":
		next := now.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), 17, 0, 0, 0, now.Location()), true
	case "next week", "by next week":
		return now.AddDate(0, 0, 7), true
	case "end of sprint", "by end of sprint", "sprint end":
		return p.nextSprintEnd(now), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(phrase), now.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nextSprintEnd returns end of day on the next configured weekday, always
// strictly in the future
func (p *DeadlineParser) nextSprintEnd(now time.Time) time.Time {
	days := int(p.sprintEndWeekday-now.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	end := now.AddDate(0, 0, days)
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, now.Location())
}
