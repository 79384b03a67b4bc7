package domain

import "errors"

// Resolution errors. Callers test them with errors.Is; producers wrap them
// with context using fmt.Errorf("...: %w", err).
var (
	// ErrInvalidShiftWindow indicates a shift whose start and end resolve to a
	// zero-length window after rollover correction.
	ErrInvalidShiftWindow = errors.New("invalid shift window")

	// ErrShiftNotFound indicates a task references a shift id absent from the registry.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrTaskLocked indicates a status-changing operation on a locked task.
	ErrTaskLocked = errors.New("task is locked")

	// ErrInvalidRecurrenceRule indicates a malformed recurrence rule.
	ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")

	// ErrExceptionAlreadyRecorded indicates an attempt to overwrite an existing
	// exception without clearing it first.
	ErrExceptionAlreadyRecorded = errors.New("exception already recorded")
)

// Validation errors.
var (
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidTimezone  = errors.New("invalid timezone")
	ErrInvalidTaskKind  = errors.New("invalid task kind")
	ErrDuplicateShift   = errors.New("duplicate shift id")
)

// Errors returned by repository implementations.
var (
	ErrFacilityNotFound = errors.New("facility not found")
	ErrTaskNotFound     = errors.New("task not found")

	// ErrOccurrenceNotFound indicates a task that does not occur on the
	// requested date.
	ErrOccurrenceNotFound = errors.New("task does not occur on date")
)
