package recurring

import (
	"github.com/rezkam/careshift/internal/domain"
)

// PatternMatcher decides whether a date falls on a recurrence pattern.
type PatternMatcher interface {
	// Matches reports whether date is on the rule's pattern. Rule bounds are
	// checked by the caller; dates before the start date never match.
	Matches(rule domain.RecurrenceRule, date domain.Date) bool

	// Unit returns the singular and plural period names used in descriptions.
	Unit() (singular, plural string)
}

// GetMatcher returns the matcher for the given kind, or nil if unknown.
func GetMatcher(kind domain.RecurrenceKind) PatternMatcher {
	switch kind {
	case domain.RecurrenceDaily:
		return &DailyMatcher{}
	case domain.RecurrenceWeekly:
		return &WeeklyMatcher{}
	case domain.RecurrenceMonthly:
		return &PeriodMatcher{months: 1, singular: "month", plural: "months"}
	case domain.RecurrenceQuarterly:
		return &PeriodMatcher{months: 3, singular: "quarter", plural: "quarters"}
	case domain.RecurrenceYearly:
		return &PeriodMatcher{months: 12, singular: "year", plural: "years"}
	default:
		return nil
	}
}
