// Package shift holds a facility's shift definitions and answers lookups
// by id, by name, and by point in time.
package shift

import (
	"fmt"
	"slices"
	"time"

	"github.com/rezkam/careshift/internal/clock"
	"github.com/rezkam/careshift/internal/domain"
)

// Registry is an immutable, ordered set of shift definitions in facility-local
// wall-clock time. It is safe for concurrent use.
type Registry struct {
	loc    *time.Location
	shifts []domain.ShiftDefinition // ordered by start time, then id
	byID   map[int]int
}

// NewRegistry builds a registry from shift definitions already expressed in
// loc's wall-clock time. A nil loc means UTC.
func NewRegistry(loc *time.Location, defs ...domain.ShiftDefinition) (*Registry, error) {
	if loc == nil {
		loc = time.UTC
	}

	shifts := slices.Clone(defs)
	for i := range shifts {
		if shifts[i].Name == "" {
			shifts[i].Name = domain.DefaultShiftName(shifts[i].ID)
		} else {
			shifts[i].Name = domain.NewShiftName(string(shifts[i].Name))
		}
	}

	slices.SortStableFunc(shifts, func(a, b domain.ShiftDefinition) int {
		if c := a.Start.Minutes() - b.Start.Minutes(); c != 0 {
			return c
		}
		return a.ID - b.ID
	})

	byID := make(map[int]int, len(shifts))
	for i, s := range shifts {
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: %d", domain.ErrDuplicateShift, s.ID)
		}
		byID[s.ID] = i
	}

	return &Registry{loc: loc, shifts: shifts, byID: byID}, nil
}

// NewRegistryFromUTC converts UTC shift times to loc's wall-clock time as they
// read on ref, then builds the registry. This is the single place where the
// UTC to facility-local conversion happens.
func NewRegistryFromUTC(loc *time.Location, ref domain.Date, defs ...domain.ShiftDefinition) (*Registry, error) {
	if loc == nil {
		loc = time.UTC
	}

	local := make([]domain.ShiftDefinition, len(defs))
	for i, d := range defs {
		local[i] = d
		local[i].Start = clock.LocalTimeOfDay(d.Start, ref, loc)
		local[i].End = clock.LocalTimeOfDay(d.End, ref, loc)
	}

	return NewRegistry(loc, local...)
}

// Location returns the facility zone the registry's times are expressed in.
func (r *Registry) Location() *time.Location {
	return r.loc
}

// Len returns the number of shifts.
func (r *Registry) Len() int {
	return len(r.shifts)
}

// Shifts returns the definitions ordered by start time.
func (r *Registry) Shifts() []domain.ShiftDefinition {
	return slices.Clone(r.shifts)
}

// ByID returns the shift with the given id.
func (r *Registry) ByID(id int) (domain.ShiftDefinition, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.ShiftDefinition{}, false
	}
	return r.shifts[i], true
}

// ByName returns the first shift (in start order) with the given name.
func (r *Registry) ByName(name domain.ShiftName) (domain.ShiftDefinition, bool) {
	name = domain.NewShiftName(string(name))
	for _, s := range r.shifts {
		if s.Name == name {
			return s, true
		}
	}
	return domain.ShiftDefinition{}, false
}

// Window resolves the window of shift id anchored on date.
func (r *Registry) Window(id int, date domain.Date) (clock.Window, error) {
	s, ok := r.ByID(id)
	if !ok {
		return clock.Window{}, fmt.Errorf("%w: %d", domain.ErrShiftNotFound, id)
	}
	return clock.ResolveShiftWindow(s, date, r.loc)
}

// CurrentShift returns the shift whose window contains now.
//
// Windows anchored on now's calendar date are tried first. If none contains
// now, rollover shifts anchored on the previous day are tried, latest start
// first, which covers e.g. 02:00 belonging to last night's NOC shift.
// Shifts with invalid windows never match. There is no default shift.
func (r *Registry) CurrentShift(now time.Time) (domain.ShiftDefinition, bool) {
	now = now.In(r.loc)
	today := domain.DateOf(now)

	for _, s := range r.shifts {
		w, err := clock.ResolveShiftWindow(s, today, r.loc)
		if err != nil {
			continue
		}
		if w.Contains(now) {
			return s, true
		}
	}

	yesterday := today.AddDays(-1)
	for i := len(r.shifts) - 1; i >= 0; i-- {
		s := r.shifts[i]
		if !s.RollsOver() {
			continue
		}
		w, err := clock.ResolveShiftWindow(s, yesterday, r.loc)
		if err != nil {
			continue
		}
		if w.Contains(now) {
			return s, true
		}
	}

	return domain.ShiftDefinition{}, false
}
