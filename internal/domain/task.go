package domain

import (
	"fmt"
	"time"

	"github.com/rezkam/careshift/internal/ptr"
)

// TaskRef identifies a task. Ids are scoped by kind, so a scheduled and an
// unscheduled task with the same numeric id are different tasks.
type TaskRef struct {
	Kind TaskKind
	ID   int64
}

func (r TaskRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// TaskDetail holds the fields that only one task variant carries.
// It is implemented by ScheduledDetail and UnscheduledDetail only.
type TaskDetail interface {
	Kind() TaskKind
	isTaskDetail()
}

// ScheduledDetail carries fields specific to scheduled tasks.
type ScheduledDetail struct {
	ResidentID int64
	Notes      string
}

func (ScheduledDetail) Kind() TaskKind { return TaskScheduled }
func (ScheduledDetail) isTaskDetail() {}

// UnscheduledDetail carries fields specific to unscheduled tasks.
type UnscheduledDetail struct {
	ResidentID  int64
	Description string
	TaskNotes   string
}

func (UnscheduledDetail) Kind() TaskKind { return TaskUnscheduled }
func (UnscheduledDetail) isTaskDetail() {}

// Task is a care task occurrence. Both variants share this shape and one
// state machine; the variant-specific fields live in Detail.
//
// Tasks are values: status operations return a modified copy and never
// mutate the receiver (see Clone).
type Task struct {
	ID         int64
	FacilityID string
	CategoryID int // ADL category
	ShiftID    int
	DueDate    Date // due date, or the cycle anchor for recurring tasks

	Completed          bool
	CompletedAt        *time.Time
	CompletedByShiftID *int

	ExceptionID *int64
	ExceptionAt *time.Time

	Recurrence *RecurrenceRule
	Locked     bool

	Detail TaskDetail
}

// Kind returns the task variant. A task without detail is treated as scheduled.
func (t Task) Kind() TaskKind {
	if t.Detail == nil {
		return TaskScheduled
	}
	return t.Detail.Kind()
}

// Ref returns the variant-tagged identity of the task.
func (t Task) Ref() TaskRef {
	return TaskRef{Kind: t.Kind(), ID: t.ID}
}

// HasException reports whether an exception is recorded on the task.
func (t Task) HasException() bool {
	return t.ExceptionID != nil
}

// IsRecurring reports whether the task carries a recurrence rule.
func (t Task) IsRecurring() bool {
	return t.Recurrence != nil && !t.Recurrence.IsZero()
}

// Clone returns a deep copy so callers can modify pointer fields safely.
func (t Task) Clone() Task {
	c := t
	c.CompletedAt = ptr.Clone(t.CompletedAt)
	c.CompletedByShiftID = ptr.Clone(t.CompletedByShiftID)
	c.ExceptionID = ptr.Clone(t.ExceptionID)
	c.ExceptionAt = ptr.Clone(t.ExceptionAt)
	return c
}

// OccurrenceState is the status of one dated occurrence of a task.
//
// A recurring task stores one state per occurrence date; its own status
// fields only hold the rule's template and are never classified. A one-off
// task has a single occurrence on its due date.
type OccurrenceState struct {
	Task TaskRef
	Date Date

	Completed          bool
	CompletedAt        *time.Time
	CompletedByShiftID *int

	ExceptionID *int64
	ExceptionAt *time.Time
}

// Equal reports whether s and o carry the same status.
func (s OccurrenceState) Equal(o OccurrenceState) bool {
	return s.Task == o.Task && s.Date == o.Date &&
		s.Completed == o.Completed &&
		ptr.Equal(s.CompletedAt, o.CompletedAt, time.Time.Equal) &&
		ptr.Equal(s.CompletedByShiftID, o.CompletedByShiftID, eq[int]) &&
		ptr.Equal(s.ExceptionID, o.ExceptionID, eq[int64]) &&
		ptr.Equal(s.ExceptionAt, o.ExceptionAt, time.Time.Equal)
}

func eq[T comparable](a, b T) bool { return a == b }

// State returns the status of t's occurrence on its due date.
func (t Task) State() OccurrenceState {
	return OccurrenceState{
		Task:               t.Ref(),
		Date:               t.DueDate,
		Completed:          t.Completed,
		CompletedAt:        ptr.Clone(t.CompletedAt),
		CompletedByShiftID: ptr.Clone(t.CompletedByShiftID),
		ExceptionID:        ptr.Clone(t.ExceptionID),
		ExceptionAt:        ptr.Clone(t.ExceptionAt),
	}
}

// Occurrence returns a copy of t due on date whose status fields are taken
// from st. A zero st gives a fresh, untouched occurrence; st's own Task and
// Date are ignored.
func (t Task) Occurrence(date Date, st OccurrenceState) Task {
	c := t
	c.DueDate = date
	c.Completed = st.Completed
	c.CompletedAt = ptr.Clone(st.CompletedAt)
	c.CompletedByShiftID = ptr.Clone(st.CompletedByShiftID)
	c.ExceptionID = ptr.Clone(st.ExceptionID)
	c.ExceptionAt = ptr.Clone(st.ExceptionAt)
	return c
}

// StatusTransition records one status-changing operation on a task.
// Occurrence is the occurrence date for recurring tasks and zero otherwise.
type StatusTransition struct {
	Task       TaskRef
	Occurrence Date
	Action     TransitionAction
	ShiftID    *int
	At         time.Time
	Completed  bool
}

// TransitionAction names a status-changing operation.
type TransitionAction string

const (
	ActionComplete        TransitionAction = "complete"
	ActionToggle          TransitionAction = "toggle"
	ActionRecordException TransitionAction = "record_exception"
	ActionClearException  TransitionAction = "clear_exception"
)

// ListTasksParams filters tasks for a facility.
type ListTasksParams struct {
	FacilityID string
	Kind       *TaskKind // nil = both variants

	// DueOn keeps non-recurring tasks due on this date plus every recurring
	// task whose rule is active on it. Zero = no date filter.
	DueOn Date
}
