// Package status derives a task's verdict from its state, its shift and the
// current time, and applies the status-changing operations.
//
// The precedence order lives in Classify and nowhere else. Grouped views in
// the aggregate package call Classify rather than reimplementing it.
package status

import (
	"fmt"
	"time"

	"github.com/rezkam/careshift/internal/clock"
	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/shift"
)

// Classify returns the verdict for task given its shift and now.
//
// The shift window is anchored on the task's due date in now's location.
// A nil shift, or one whose id differs from task.ShiftID, fails with
// domain.ErrShiftNotFound. A zero-length window fails with
// domain.ErrInvalidShiftWindow. Neither case ever produces a verdict.
func Classify(task domain.Task, def *domain.ShiftDefinition, now time.Time) (domain.StatusVerdict, error) {
	if def == nil || def.ID != task.ShiftID {
		return "", fmt.Errorf("task %s: %w: %d", task.Ref(), domain.ErrShiftNotFound, task.ShiftID)
	}

	window, err := clock.ResolveShiftWindow(*def, task.DueDate, now.Location())
	if err != nil {
		return "", fmt.Errorf("task %s: %w", task.Ref(), err)
	}

	switch {
	case task.HasException() && !task.Completed:
		return domain.StatusException, nil
	case !task.Completed && !now.Before(window.End):
		return domain.StatusPastDue, nil
	case !task.Completed:
		return domain.StatusNotComplete, nil
	default:
		return domain.StatusCompleted, nil
	}
}

// Resolver classifies tasks against one facility's shift registry.
type Resolver struct {
	registry *shift.Registry
}

// NewResolver returns a resolver over registry.
func NewResolver(registry *shift.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry returns the registry the resolver looks shifts up in.
func (r *Resolver) Registry() *shift.Registry {
	return r.registry
}

// Classify looks up the task's shift and classifies it. now is converted to
// the registry's zone so windows are anchored in facility-local time.
func (r *Resolver) Classify(task domain.Task, now time.Time) (domain.StatusVerdict, error) {
	var def *domain.ShiftDefinition
	if r.registry != nil {
		if s, ok := r.registry.ByID(task.ShiftID); ok {
			def = &s
		}
		now = now.In(r.registry.Location())
	}
	return Classify(task, def, now)
}
