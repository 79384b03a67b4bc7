// Package clock anchors bare times of day onto calendar dates and resolves
// shift windows, including shifts that roll over midnight.
//
// Everything here is a pure function of its arguments. The current time is
// never read inside this package; callers pass it in.
package clock

import (
	"fmt"
	"time"

	"github.com/rezkam/careshift/internal/domain"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Anchor places t on date d in loc with seconds set to zero.
// No zone conversion happens: t is taken as wall-clock time in loc.
func Anchor(t domain.TimeOfDay, d domain.Date, loc *time.Location) time.Time {
	return d.At(t, loc)
}

// ResolveShiftWindow anchors a shift's start and end on anchorDate. When the
// anchored end is not after the start the end moves to the next calendar day.
//
// A shift whose start equals its end has no length and yields
// domain.ErrInvalidShiftWindow.
func ResolveShiftWindow(shift domain.ShiftDefinition, anchorDate domain.Date, loc *time.Location) (Window, error) {
	start := Anchor(shift.Start, anchorDate, loc)
	end := Anchor(shift.End, anchorDate, loc)

	if shift.Start == shift.End {
		return Window{}, fmt.Errorf("%w: shift %d starts and ends at %s", domain.ErrInvalidShiftWindow, shift.ID, shift.Start)
	}

	if !end.After(start) {
		end = Anchor(shift.End, anchorDate.AddDays(1), loc)
	}

	// A DST transition can still collapse a short window.
	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: shift %d resolves to %s..%s on %s", domain.ErrInvalidShiftWindow, shift.ID, start.Format(time.Kitchen), end.Format(time.Kitchen), anchorDate)
	}

	return Window{Start: start, End: end}, nil
}

// LocalTimeOfDay converts a UTC wall-clock time to wall-clock time in loc as
// it would read on the reference date. The reference matters around DST changes.
func LocalTimeOfDay(utc domain.TimeOfDay, ref domain.Date, loc *time.Location) domain.TimeOfDay {
	local := ref.At(utc, time.UTC).In(loc)
	return domain.TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}
}

// Func returns the current time. The application layer reads it once per
// operation and threads the value into the core.
type Func func() time.Time

// System returns the wall clock.
func System() Func {
	return time.Now
}

// Fixed returns a clock frozen at t, for tests and replays.
func Fixed(t time.Time) Func {
	return func() time.Time { return t }
}
