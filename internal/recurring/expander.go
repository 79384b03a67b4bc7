// Package recurring decides which calendar dates and shifts a recurrence rule
// covers, without materializing unbounded date lists.
package recurring

import (
	"iter"

	"github.com/rezkam/careshift/internal/domain"
)

// OccursOn reports whether rule has an occurrence on date.
// The zero rule never occurs.
func OccursOn(rule domain.RecurrenceRule, date domain.Date) bool {
	if rule.IsZero() || !inBounds(rule, date) {
		return false
	}

	matcher := GetMatcher(rule.Kind())
	if matcher == nil {
		return false
	}
	return matcher.Matches(rule, date)
}

// OccursOnShift reports whether rule applies to the named shift.
// An empty shift mask applies to every shift.
func OccursOnShift(rule domain.RecurrenceRule, name domain.ShiftName) bool {
	shifts := rule.Shifts()
	return len(shifts) == 0 || shifts.Has(name)
}

// Produces yields every date in r on which rule occurs, in ascending order.
//
// The sequence is bounded by r even when the rule has no end date, and it is
// restartable: each range over it recomputes from the inputs.
func Produces(rule domain.RecurrenceRule, r domain.DateRange) iter.Seq[domain.Date] {
	return func(yield func(domain.Date) bool) {
		if rule.IsZero() {
			return
		}
		matcher := GetMatcher(rule.Kind())
		if matcher == nil {
			return
		}

		lo, hi := clip(rule, r)
		for d := lo; !d.After(hi); d = d.AddDays(1) {
			if matcher.Matches(rule, d) && !yield(d) {
				return
			}
		}
	}
}

// Occurrences collects Produces into a slice.
func Occurrences(rule domain.RecurrenceRule, r domain.DateRange) []domain.Date {
	var dates []domain.Date
	for d := range Produces(rule, r) {
		dates = append(dates, d)
	}
	return dates
}

// Next returns the first occurrence on or after from, searching at most
// horizonDays days ahead.
func Next(rule domain.RecurrenceRule, from domain.Date, horizonDays int) (domain.Date, bool) {
	for d := range Produces(rule, domain.DateRange{Start: from, End: from.AddDays(horizonDays)}) {
		return d, true
	}
	return domain.Date{}, false
}

func inBounds(rule domain.RecurrenceRule, date domain.Date) bool {
	if date.Before(rule.StartDate()) {
		return false
	}
	if end, ok := rule.EndDate(); ok && date.After(end) {
		return false
	}
	return true
}

// clip narrows r to the rule's own bounds.
func clip(rule domain.RecurrenceRule, r domain.DateRange) (domain.Date, domain.Date) {
	lo, hi := r.Start, r.End
	if start := rule.StartDate(); lo.Before(start) {
		lo = start
	}
	if end, ok := rule.EndDate(); ok && hi.After(end) {
		hi = end
	}
	return lo, hi
}
