package status

import (
	"fmt"
	"time"

	"github.com/rezkam/careshift/internal/domain"
)

// MarkCompleted returns a copy of task completed at the given time by the
// given shift.
func MarkCompleted(task domain.Task, at time.Time, shiftID int) (domain.Task, error) {
	if task.Locked {
		return task, fmt.Errorf("complete %s: %w", task.Ref(), domain.ErrTaskLocked)
	}

	next := task.Clone()
	next.Completed = true
	next.CompletedAt = &at
	next.CompletedByShiftID = &shiftID
	return next, nil
}

// MarkException returns a copy of task with exceptionID recorded at the given
// time.
//
// The first exception wins: recording a different id over one that already
// has a timestamp fails with domain.ErrExceptionAlreadyRecorded until it is
// cleared. Recording the same id again returns the task unchanged.
func MarkException(task domain.Task, exceptionID int64, at time.Time) (domain.Task, error) {
	if task.Locked {
		return task, fmt.Errorf("record exception on %s: %w", task.Ref(), domain.ErrTaskLocked)
	}

	if task.ExceptionID != nil {
		if *task.ExceptionID == exceptionID {
			return task.Clone(), nil
		}
		if task.ExceptionAt != nil {
			return task, fmt.Errorf("record exception %d on %s: %w (existing %d)",
				exceptionID, task.Ref(), domain.ErrExceptionAlreadyRecorded, *task.ExceptionID)
		}
	}

	next := task.Clone()
	next.ExceptionID = &exceptionID
	next.ExceptionAt = &at
	return next, nil
}

// ClearException returns a copy of task with its exception removed.
func ClearException(task domain.Task) (domain.Task, error) {
	if task.Locked {
		return task, fmt.Errorf("clear exception on %s: %w", task.Ref(), domain.ErrTaskLocked)
	}

	next := task.Clone()
	next.ExceptionID = nil
	next.ExceptionAt = nil
	return next, nil
}

// ToggleCompletion returns a copy of task with Completed flipped. Going
// incomplete clears the completion time and shift.
func ToggleCompletion(task domain.Task, at time.Time, shiftID int) (domain.Task, error) {
	if task.Locked {
		return task, fmt.Errorf("toggle %s: %w", task.Ref(), domain.ErrTaskLocked)
	}

	if !task.Completed {
		return MarkCompleted(task, at, shiftID)
	}

	next := task.Clone()
	next.Completed = false
	next.CompletedAt = nil
	next.CompletedByShiftID = nil
	return next, nil
}

// Transition describes a status change for the history log. For a recurring
// task, task is the occurrence and its due date is recorded.
func Transition(action domain.TransitionAction, task domain.Task, shiftID *int, at time.Time) domain.StatusTransition {
	tr := domain.StatusTransition{
		Task:      task.Ref(),
		Action:    action,
		ShiftID:   shiftID,
		At:        at,
		Completed: task.Completed,
	}
	if task.IsRecurring() {
		tr.Occurrence = task.DueDate
	}
	return tr
}
