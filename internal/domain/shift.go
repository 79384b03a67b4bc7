package domain

import (
	"fmt"
	"strings"
	"time"
)

// ShiftName is the display name of a shift.
type ShiftName string

const (
	ShiftAM  ShiftName = "AM"
	ShiftPM  ShiftName = "PM"
	ShiftNOC ShiftName = "NOC"
)

// DefaultShiftName maps a facility shift id to its conventional display name.
func DefaultShiftName(id int) ShiftName {
	switch id {
	case 1:
		return ShiftAM
	case 2:
		return ShiftPM
	case 3:
		return ShiftNOC
	default:
		return ShiftName(fmt.Sprintf("SHIFT_%d", id))
	}
}

// NewShiftName normalizes a shift name; names are compared upper-case.
func NewShiftName(s string) ShiftName {
	return ShiftName(strings.ToUpper(strings.TrimSpace(s)))
}

// ShiftDefinition is one of a facility's recurring daily time windows.
// Start and End are wall-clock times; whether they are UTC or facility-local
// depends on where the value came from (see shift.NewRegistryFromUTC).
type ShiftDefinition struct {
	ID    int
	Name  ShiftName
	Start TimeOfDay
	End   TimeOfDay

	// RollOverHint is the flag stored by the shift configuration service.
	// It is kept for display only; RollsOver is always recomputed.
	RollOverHint bool
}

// RollsOver reports whether the shift ends on the calendar day after it starts.
func (s ShiftDefinition) RollsOver() bool {
	return s.End.Before(s.Start)
}

// Facility is a care facility whose shifts are evaluated in its local time.
type Facility struct {
	ID       string
	Name     string
	Timezone string // IANA zone, e.g. "America/Chicago"
}

// Location loads the facility's time zone. An empty zone means UTC.
func (f Facility) Location() (*time.Location, error) {
	if f.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTimezone, f.Timezone, err)
	}
	return loc, nil
}

// ShiftConfig is the snapshot supplied by the facility shift configuration
// service. Shift times are UTC wall-clock times.
type ShiftConfig struct {
	Facility Facility
	Shifts   []ShiftDefinition
}
