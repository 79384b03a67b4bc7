package recurring

import (
	"fmt"

	"github.com/rezkam/careshift/internal/domain"
)

// InstanceOn returns the occurrence of a recurring task on date, with DueDate
// set to date and a fresh status: the recurring task's own status fields are
// not carried over. The second result is false when the rule does not occur
// on that date or on the task's shift.
//
// Non-recurring tasks are returned unchanged when they are due on date.
func InstanceOn(task domain.Task, shiftName domain.ShiftName, date domain.Date) (domain.Task, bool) {
	if !task.IsRecurring() {
		return task, task.DueDate == date
	}

	rule := *task.Recurrence
	if !OccursOn(rule, date) || !OccursOnShift(rule, shiftName) {
		return domain.Task{}, false
	}

	return task.Occurrence(date, domain.OccurrenceState{}), true
}

// Instances expands a recurring task into one fresh task value per
// occurrence in r.
func Instances(task domain.Task, shiftName domain.ShiftName, r domain.DateRange) ([]domain.Task, error) {
	if !task.IsRecurring() {
		return nil, fmt.Errorf("%w: task %s has no recurrence", domain.ErrInvalidRecurrenceRule, task.Ref())
	}

	rule := *task.Recurrence
	if !OccursOnShift(rule, shiftName) {
		return nil, nil
	}

	var tasks []domain.Task
	for d := range Produces(rule, r) {
		tasks = append(tasks, task.Occurrence(d, domain.OccurrenceState{}))
	}
	return tasks, nil
}
