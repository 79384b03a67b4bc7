package recurring

import (
	"time"

	"github.com/rezkam/careshift/internal/domain"
)

// DailyMatcher matches every cycleLength-th day counted from the start date,
// optionally restricted to a weekday mask.
type DailyMatcher struct{}

func (m *DailyMatcher) Matches(rule domain.RecurrenceRule, date domain.Date) bool {
	offset := rule.StartDate().DaysUntil(date)
	if offset < 0 || offset%rule.CycleLength() != 0 {
		return false
	}

	mask := rule.Weekdays()
	return mask.IsEmpty() || mask.Has(date.Weekday())
}

func (m *DailyMatcher) Unit() (string, string) { return "day", "days" }

// WeeklyMatcher matches masked weekdays in every cycleLength-th week. Weeks
// start on Sunday and are counted from the week containing the start date.
type WeeklyMatcher struct{}

func (m *WeeklyMatcher) Matches(rule domain.RecurrenceRule, date domain.Date) bool {
	if !rule.Weekdays().Has(date.Weekday()) {
		return false
	}

	weeks := weekStart(rule.StartDate()).DaysUntil(weekStart(date)) / 7
	return weeks >= 0 && weeks%rule.CycleLength() == 0
}

func (m *WeeklyMatcher) Unit() (string, string) { return "week", "weeks" }

func weekStart(d domain.Date) domain.Date {
	return d.AddDays(-int(d.Weekday()))
}

// PeriodMatcher matches one day per period of months: monthly (1), quarterly
// (3) or yearly (12). The day is either the start date's day of month, or the
// start date's Nth weekday of the month when the rule is ByWeekday.
type PeriodMatcher struct {
	months   int
	singular string
	plural   string
}

func (m *PeriodMatcher) Matches(rule domain.RecurrenceRule, date domain.Date) bool {
	start := rule.StartDate()

	offset := start.MonthsUntil(date)
	if offset < 0 || offset%(m.months*rule.CycleLength()) != 0 {
		return false
	}

	if rule.ByWeekday() {
		return date.Weekday() == start.Weekday() && sameWeekOrdinal(start, date)
	}

	// Days missing from a shorter month clamp to its last day.
	return date.Day == min(start.Day, date.DaysInMonth())
}

func (m *PeriodMatcher) Unit() (string, string) { return m.singular, m.plural }

// weekOrdinal returns which occurrence of its weekday d is within its month
// (1-based), and whether it is the last such occurrence.
func weekOrdinal(d domain.Date) (n int, last bool) {
	return (d.Day-1)/7 + 1, d.Day+7 > d.DaysInMonth()
}

// sameWeekOrdinal treats a fifth occurrence as "last" so that rules anchored on
// e.g. the 5th Friday still fire in months with only four.
func sameWeekOrdinal(anchor, d domain.Date) bool {
	an, _ := weekOrdinal(anchor)
	dn, dLast := weekOrdinal(d)
	if an == 5 {
		return dLast
	}
	return an == dn
}

var weekdayAbbrev = map[time.Weekday]string{
	time.Sunday:    "Sun",
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
}
