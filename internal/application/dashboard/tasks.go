package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/recurring"
	"github.com/rezkam/careshift/internal/shift"
	"github.com/rezkam/careshift/internal/status"
)

// mutation applies a pure status change at the given time by the given shift.
type mutation func(task domain.Task, at time.Time, shiftID int) (domain.Task, error)

// CompleteTask marks a task's occurrence on date completed. A zero date means
// the due date of a one-off task, or the facility-local today for a
// recurring one. A nil shiftID means the shift in progress at the task's
// facility.
func (s *Service) CompleteTask(ctx context.Context, ref domain.TaskRef, date domain.Date, shiftID *int) (*TaskView, error) {
	return s.applyStatus(ctx, domain.ActionComplete, ref, date, shiftID, status.MarkCompleted)
}

// ToggleTask flips the completion of a task's occurrence on date. Zero date
// and nil shiftID are resolved as in CompleteTask.
func (s *Service) ToggleTask(ctx context.Context, ref domain.TaskRef, date domain.Date, shiftID *int) (*TaskView, error) {
	return s.applyStatus(ctx, domain.ActionToggle, ref, date, shiftID, status.ToggleCompletion)
}

// RecordException records exceptionID on a task's occurrence on date.
func (s *Service) RecordException(ctx context.Context, ref domain.TaskRef, date domain.Date, exceptionID int64) (*TaskView, error) {
	return s.applyStatus(ctx, domain.ActionRecordException, ref, date, nil, func(task domain.Task, at time.Time, _ int) (domain.Task, error) {
		return status.MarkException(task, exceptionID, at)
	})
}

// ClearException removes the exception from a task's occurrence on date.
func (s *Service) ClearException(ctx context.Context, ref domain.TaskRef, date domain.Date) (*TaskView, error) {
	return s.applyStatus(ctx, domain.ActionClearException, ref, date, nil, func(task domain.Task, _ time.Time, _ int) (domain.Task, error) {
		return status.ClearException(task)
	})
}

// applyStatus resolves the task's occurrence on date, applies fn to it and
// persists the result with a history entry. When the action needs a shift
// and none is given, the facility's current shift is used; a given shift
// must exist at the facility. A change that leaves the state as it was is
// not saved.
func (s *Service) applyStatus(ctx context.Context, action domain.TransitionAction, ref domain.TaskRef, date domain.Date, shiftID *int, fn mutation) (*TaskView, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.applyStatus", trace.WithAttributes(
		attribute.String("task.ref", ref.String()),
		attribute.String("task.action", string(action)),
	))
	defer span.End()

	now := s.now()

	task, err := s.tasks.FindTask(ctx, ref)
	if err != nil {
		return nil, recordError(span, err)
	}

	var today domain.Date
	fc, err := s.loadFacility(ctx, task.FacilityID, func(loc *time.Location) domain.Date {
		today = domain.DateOf(now.In(loc))
		return today
	})
	if err != nil {
		return nil, recordError(span, err)
	}

	switch {
	case shiftID != nil:
		if _, ok := fc.registry.ByID(*shiftID); !ok {
			return nil, recordError(span, fmt.Errorf("%w: %d at facility %s",
				domain.ErrShiftNotFound, *shiftID, task.FacilityID))
		}
	case needsShift(action):
		current, ok := fc.registry.CurrentShift(now)
		if !ok {
			return nil, recordError(span, fmt.Errorf("%w: no shift in progress at facility %s",
				domain.ErrShiftNotFound, task.FacilityID))
		}
		shiftID = &current.ID
	}

	if date.IsZero() {
		date = defaultOccurrence(*task, fc.registry, today, now)
	}
	span.SetAttributes(attribute.String("task.occurrence", date.String()))

	registry := fc.registry
	if date != today {
		if registry, err = fc.registryOn(date); err != nil {
			return nil, recordError(span, err)
		}
	}

	before, err := s.occurrence(ctx, *task, registry, date)
	if err != nil {
		return nil, recordError(span, err)
	}

	byShift := before.ShiftID
	if shiftID != nil {
		byShift = *shiftID
	}
	next, err := fn(before, now, byShift)
	if err != nil {
		return nil, recordError(span, err)
	}

	if next.State().Equal(before.State()) {
		slog.DebugContext(ctx, "task status unchanged",
			"task", ref.String(), "action", string(action), "occurrence", date.String())
	} else {
		transition := status.Transition(action, next, shiftID, now)
		if err := s.tasks.SaveTaskStatus(ctx, &next, transition); err != nil {
			return nil, recordError(span, fmt.Errorf("failed to save task status: %w", err))
		}
		slog.InfoContext(ctx, "task status changed",
			"task", ref.String(),
			"occurrence", date.String(),
			"action", string(action),
			"completed", next.Completed,
			"has_exception", next.HasException())
	}

	view := &TaskView{Task: next}
	verdict, err := status.NewResolver(registry).Classify(next, now)
	if err != nil {
		slog.WarnContext(ctx, "task could not be classified after status change",
			"task", ref.String(), "action", string(action), "error", err)
	} else {
		view.Verdict = verdict
	}
	return view, nil
}

// occurrence returns the task as it stands on date: a one-off task must be
// due on date, and a recurring task's rule must occur on it. A recurring
// occurrence carries its stored state, or a fresh one.
func (s *Service) occurrence(ctx context.Context, task domain.Task, registry *shift.Registry, date domain.Date) (domain.Task, error) {
	instance, ok := instanceOn(task, registry, date)
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: %s on %s", domain.ErrOccurrenceNotFound, task.Ref(), date)
	}
	if !task.IsRecurring() {
		return instance, nil
	}

	states, err := s.tasks.OccurrenceStates(ctx, task.FacilityID, date)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to load occurrence state: %w", err)
	}
	return instance.Occurrence(date, states[task.Ref()]), nil
}

// defaultOccurrence picks the occurrence an undated status change refers to:
// the due date of a one-off task, otherwise today, or yesterday while the
// task's rollover shift that started yesterday is still running.
func defaultOccurrence(task domain.Task, registry *shift.Registry, today domain.Date, now time.Time) domain.Date {
	if !task.IsRecurring() {
		return task.DueDate
	}
	yesterday := today.AddDays(-1)
	if w, err := registry.Window(task.ShiftID, yesterday); err == nil && w.Contains(now) {
		return yesterday
	}
	return today
}

func needsShift(action domain.TransitionAction) bool {
	return action == domain.ActionComplete || action == domain.ActionToggle
}

// TaskOccurrences lists the dates a recurring task occurs on within r,
// restricted to the task's shift. The range may span at most
// MaxOccurrenceRangeDays days.
func (s *Service) TaskOccurrences(ctx context.Context, ref domain.TaskRef, r domain.DateRange) (*Occurrences, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.TaskOccurrences",
		trace.WithAttributes(attribute.String("task.ref", ref.String())))
	defer span.End()

	if days := r.Start.DaysUntil(r.End); days < 0 || days >= MaxOccurrenceRangeDays {
		return nil, recordError(span, fmt.Errorf("%w: %s..%s spans more than %d days",
			domain.ErrInvalidDateRange, r.Start, r.End, MaxOccurrenceRangeDays))
	}

	task, err := s.tasks.FindTask(ctx, ref)
	if err != nil {
		return nil, recordError(span, err)
	}
	if !task.IsRecurring() {
		return nil, recordError(span, fmt.Errorf("%w: task %s has no recurrence", domain.ErrInvalidRecurrenceRule, ref))
	}

	name, err := s.shiftName(ctx, task)
	if err != nil {
		return nil, recordError(span, err)
	}

	instances, err := recurring.Instances(*task, name, r)
	if err != nil {
		return nil, recordError(span, err)
	}

	out := &Occurrences{
		Task:        ref,
		Range:       r,
		Description: recurring.Describe(*task.Recurrence),
		Dates:       make([]domain.Date, 0, len(instances)),
	}
	for _, instance := range instances {
		out.Dates = append(out.Dates, instance.DueDate)
	}
	return out, nil
}

// DescribeRecurrence returns the human-readable summary of a task's rule.
func (s *Service) DescribeRecurrence(ctx context.Context, ref domain.TaskRef) (string, error) {
	task, err := s.tasks.FindTask(ctx, ref)
	if err != nil {
		return "", err
	}
	if !task.IsRecurring() {
		return "", fmt.Errorf("%w: task %s has no recurrence", domain.ErrInvalidRecurrenceRule, ref)
	}
	return recurring.Describe(*task.Recurrence), nil
}

// shiftName resolves the display name of the task's shift at its facility,
// falling back to the conventional name for the id.
func (s *Service) shiftName(ctx context.Context, task *domain.Task) (domain.ShiftName, error) {
	cfg, err := s.shifts.GetConfig(ctx, task.FacilityID)
	if err != nil {
		return "", fmt.Errorf("failed to load shift config: %w", err)
	}
	for _, def := range cfg.Shifts {
		if def.ID == task.ShiftID {
			return domain.NewShiftName(string(def.Name)), nil
		}
	}
	return domain.DefaultShiftName(task.ShiftID), nil
}
