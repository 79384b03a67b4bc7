package dashboard

import (
	"time"

	"github.com/rezkam/careshift/internal/aggregate"
	"github.com/rezkam/careshift/internal/clock"
	"github.com/rezkam/careshift/internal/domain"
)

// TaskView is a task together with its verdict at the time of the request.
// Tasks that could not be classified carry domain.StatusUnresolved on the
// dashboard and an empty verdict after a status change.
type TaskView struct {
	Task    domain.Task
	Verdict domain.StatusVerdict
}

// Dashboard is a facility's task status overview for one date.
type Dashboard struct {
	Facility    domain.Facility
	Date        domain.Date
	GeneratedAt time.Time

	// Shifts are the facility's shifts in facility-local wall-clock time.
	Shifts       []domain.ShiftDefinition
	CurrentShift *domain.ShiftDefinition

	Result     aggregate.Result
	Tasks      []TaskView
	ByCategory map[string]aggregate.Counts
	ByShift    map[string]aggregate.Counts
}

// CurrentShift is the shift in progress at a facility. Date is the calendar
// day the shift started on, which is yesterday after midnight in a rollover
// shift.
type CurrentShift struct {
	Facility domain.Facility
	Shift    domain.ShiftDefinition
	Date     domain.Date
	Window   clock.Window
	Now      time.Time
}

// Occurrences lists the dates a recurring task occurs on within a range.
type Occurrences struct {
	Task        domain.TaskRef
	Range       domain.DateRange
	Description string
	Dates       []domain.Date
}
