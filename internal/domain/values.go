package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// StatusVerdict is the derived status of a task. It is never persisted.
type StatusVerdict string

const (
	StatusCompleted   StatusVerdict = "COMPLETED"
	StatusException   StatusVerdict = "EXCEPTION"
	StatusPastDue     StatusVerdict = "PAST_DUE"
	StatusNotComplete StatusVerdict = "NOT_COMPLETE"

	// StatusUnresolved is an aggregation bucket for tasks whose shift could not
	// be resolved. Classification itself never returns it.
	StatusUnresolved StatusVerdict = "UNRESOLVED"
)

// Verdicts lists the classification verdicts in precedence order.
var Verdicts = []StatusVerdict{StatusException, StatusPastDue, StatusNotComplete, StatusCompleted}

// RecurrenceKind is the period type of a recurrence rule.
type RecurrenceKind string

const (
	RecurrenceDaily     RecurrenceKind = "DAILY"
	RecurrenceWeekly    RecurrenceKind = "WEEKLY"
	RecurrenceMonthly   RecurrenceKind = "MONTHLY"
	RecurrenceQuarterly RecurrenceKind = "QUARTERLY"
	RecurrenceYearly    RecurrenceKind = "YEARLY"
)

// NewRecurrenceKind validates and normalizes a recurrence kind.
func NewRecurrenceKind(s string) (RecurrenceKind, error) {
	kind := RecurrenceKind(strings.ToUpper(strings.TrimSpace(s)))

	switch kind {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly,
		RecurrenceQuarterly, RecurrenceYearly:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrenceRule, s)
	}
}

// TaskKind distinguishes the two task variants.
type TaskKind string

const (
	TaskScheduled   TaskKind = "scheduled"
	TaskUnscheduled TaskKind = "unscheduled"
)

// NewTaskKind validates a task kind.
func NewTaskKind(s string) (TaskKind, error) {
	kind := TaskKind(strings.ToLower(strings.TrimSpace(s)))

	switch kind {
	case TaskScheduled, TaskUnscheduled:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskKind, s)
	}
}

// WeekdaySet is a set of weekdays stored as a bitmask (bit n = time.Weekday(n)).
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// IsEmpty reports whether the set has no days.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days returns the members in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// ShiftNameSet is a set of shift names. A nil or empty set means "all shifts".
type ShiftNameSet []ShiftName

// NewShiftNameSet normalizes and de-duplicates names.
func NewShiftNameSet(names ...ShiftName) ShiftNameSet {
	var set ShiftNameSet
	for _, n := range names {
		n = NewShiftName(string(n))
		if n == "" || slices.Contains(set, n) {
			continue
		}
		set = append(set, n)
	}
	return set
}

// Has reports whether name is in the set.
func (s ShiftNameSet) Has(name ShiftName) bool {
	return slices.Contains(s, NewShiftName(string(name)))
}
