package domain

import "fmt"

// RecurrenceParams is the raw input for NewRecurrenceRule.
type RecurrenceParams struct {
	Kind        RecurrenceKind
	CycleLength int
	Weekdays    WeekdaySet
	Shifts      ShiftNameSet

	// ByWeekday selects "Nth weekday of the period" instead of "same day of
	// month" for Monthly, Quarterly and Yearly rules.
	ByWeekday bool

	StartDate Date
	EndDate   *Date
}

// RecurrenceRule describes which calendar dates and shifts a task repeats on.
//
// The fields are unexported so a rule can only be obtained from
// NewRecurrenceRule; an invalid rule never reaches the expander.
type RecurrenceRule struct {
	kind      RecurrenceKind
	cycle     int
	weekdays  WeekdaySet
	shifts    ShiftNameSet
	byWeekday bool
	start     Date
	end       *Date
}

// NewRecurrenceRule validates params and returns an immutable rule.
func NewRecurrenceRule(p RecurrenceParams) (RecurrenceRule, error) {
	kind, err := NewRecurrenceKind(string(p.Kind))
	if err != nil {
		return RecurrenceRule{}, err
	}
	if p.CycleLength <= 0 {
		return RecurrenceRule{}, fmt.Errorf("%w: cycle length must be positive, got %d", ErrInvalidRecurrenceRule, p.CycleLength)
	}
	if p.StartDate.IsZero() {
		return RecurrenceRule{}, fmt.Errorf("%w: start date is required", ErrInvalidRecurrenceRule)
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return RecurrenceRule{}, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRecurrenceRule, *p.EndDate, p.StartDate)
	}
	if kind == RecurrenceWeekly && p.Weekdays.IsEmpty() {
		return RecurrenceRule{}, fmt.Errorf("%w: weekly rule requires at least one weekday", ErrInvalidRecurrenceRule)
	}

	rule := RecurrenceRule{
		kind:      kind,
		cycle:     p.CycleLength,
		weekdays:  p.Weekdays,
		shifts:    NewShiftNameSet(p.Shifts...),
		byWeekday: p.ByWeekday,
		start:     p.StartDate,
	}
	if p.EndDate != nil {
		end := *p.EndDate
		rule.end = &end
	}
	return rule, nil
}

// IsZero reports whether r is the zero value (no rule).
func (r RecurrenceRule) IsZero() bool {
	return r.cycle == 0
}

func (r RecurrenceRule) Kind() RecurrenceKind { return r.kind }
func (r RecurrenceRule) CycleLength() int { return r.cycle }
func (r RecurrenceRule) Weekdays() WeekdaySet { return r.weekdays }
func (r RecurrenceRule) ByWeekday() bool { return r.byWeekday }
func (r RecurrenceRule) StartDate() Date { return r.start }
func (r RecurrenceRule) Shifts() ShiftNameSet { return append(ShiftNameSet(nil), r.shifts...) }

// EndDate returns the last date of the rule and whether it has one.
func (r RecurrenceRule) EndDate() (Date, bool) {
	if r.end == nil {
		return Date{}, false
	}
	return *r.end, true
}

// Params returns the rule's parameters, e.g. for persistence.
func (r RecurrenceRule) Params() RecurrenceParams {
	p := RecurrenceParams{
		Kind:        r.kind,
		CycleLength: r.cycle,
		Weekdays:    r.weekdays,
		Shifts:      r.Shifts(),
		ByWeekday:   r.byWeekday,
		StartDate:   r.start,
	}
	if r.end != nil {
		end := *r.end
		p.EndDate = &end
	}
	return p
}
