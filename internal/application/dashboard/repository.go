package dashboard

import (
	"context"

	"github.com/rezkam/careshift/internal/domain"
)

// ShiftSource supplies facility shift configuration snapshots.
// Shift times in the snapshot are UTC wall-clock times.
type ShiftSource interface {
	// GetConfig returns domain.ErrFacilityNotFound for unknown facilities.
	GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error)

	// ListConfigs returns every known facility's configuration.
	ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error)
}

// TaskRepository loads tasks and persists status changes.
type TaskRepository interface {
	// ListTasks returns the facility's tasks matching params.
	ListTasks(ctx context.Context, params domain.ListTasksParams) ([]domain.Task, error)

	// FindTask returns domain.ErrTaskNotFound if the task does not exist.
	FindTask(ctx context.Context, ref domain.TaskRef) (*domain.Task, error)

	// OccurrenceStates returns the stored states of the facility's recurring
	// task occurrences on date, keyed by task. Occurrences never changed
	// have no entry.
	OccurrenceStates(ctx context.Context, facilityID string, date domain.Date) (map[domain.TaskRef]domain.OccurrenceState, error)

	// SaveTaskStatus stores the task's status and appends the transition to
	// the status history atomically. For a recurring task, task is one
	// occurrence and only that occurrence's state (keyed by its DueDate) is
	// written; the recurring task itself is left unchanged.
	SaveTaskStatus(ctx context.Context, task *domain.Task, transition domain.StatusTransition) error
}
