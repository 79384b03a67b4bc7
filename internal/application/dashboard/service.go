// Package dashboard orchestrates shift resolution, recurrence expansion and
// status classification for a facility. It is the only layer that reads the
// clock; the core packages receive "now" as an argument.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/careshift/internal/aggregate"
	"github.com/rezkam/careshift/internal/clock"
	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/recurring"
	"github.com/rezkam/careshift/internal/shift"
	"github.com/rezkam/careshift/internal/status"
)

const instrumentationName = "github.com/rezkam/careshift/internal/application/dashboard"

// Default configuration values.
const (
	DefaultAggregationWorkers = 4
	DefaultParallelThreshold  = 500
	MaxOccurrenceRangeDays    = 366
)

// Config holds configuration for the Service.
type Config struct {
	AggregationWorkers int
	ParallelThreshold  int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, e.g. with clock.Fixed in tests.
func WithClock(now clock.Func) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service answers dashboard queries and applies task status changes.
type Service struct {
	shifts ShiftSource
	tasks  TaskRepository
	now    clock.Func
	config Config

	tracer     trace.Tracer
	classified metric.Int64Counter
	batchSize  metric.Int64Histogram
}

// NewService creates a dashboard service. Zero config values use defaults.
func NewService(shifts ShiftSource, tasks TaskRepository, config Config, opts ...Option) *Service {
	if config.AggregationWorkers <= 0 {
		config.AggregationWorkers = DefaultAggregationWorkers
	}
	if config.ParallelThreshold <= 0 {
		config.ParallelThreshold = DefaultParallelThreshold
	}

	s := &Service{
		shifts: shifts,
		tasks:  tasks,
		now:    clock.System(),
		config: config,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	var err error
	s.classified, err = meter.Int64Counter("careshift.tasks.classified",
		metric.WithDescription("Tasks classified, by verdict"),
		metric.WithUnit("{task}"))
	if err != nil {
		otel.Handle(err)
	}
	s.batchSize, err = meter.Int64Histogram("careshift.dashboard.batch_size",
		metric.WithDescription("Tasks aggregated per dashboard request"),
		metric.WithUnit("{task}"))
	if err != nil {
		otel.Handle(err)
	}

	return s
}

// facilityContext is a facility's configuration resolved for one calendar date.
type facilityContext struct {
	facility domain.Facility
	loc      *time.Location
	shifts   []domain.ShiftDefinition // UTC wall-clock, as stored
	registry *shift.Registry
}

// registryOn resolves the facility's shifts for another date.
func (fc *facilityContext) registryOn(date domain.Date) (*shift.Registry, error) {
	registry, err := shift.NewRegistryFromUTC(fc.loc, date, fc.shifts...)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", fc.facility.ID, err)
	}
	return registry, nil
}

func (s *Service) loadFacility(ctx context.Context, facilityID string, date func(*time.Location) domain.Date) (*facilityContext, error) {
	cfg, err := s.shifts.GetConfig(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift config: %w", err)
	}

	loc, err := cfg.Facility.Location()
	if err != nil {
		return nil, err
	}

	registry, err := shift.NewRegistryFromUTC(loc, date(loc), cfg.Shifts...)
	if err != nil {
		return nil, fmt.Errorf("facility %s: %w", facilityID, err)
	}

	return &facilityContext{facility: cfg.Facility, loc: loc, shifts: cfg.Shifts, registry: registry}, nil
}

// Dashboard returns the classified tasks of a facility for date. A zero date
// means the facility-local today.
func (s *Service) Dashboard(ctx context.Context, facilityID string, date domain.Date) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Dashboard",
		trace.WithAttributes(attribute.String("facility.id", facilityID)))
	defer span.End()

	now := s.now()
	fc, err := s.loadFacility(ctx, facilityID, func(loc *time.Location) domain.Date {
		if date.IsZero() {
			date = domain.DateOf(now.In(loc))
		}
		return date
	})
	if err != nil {
		return nil, recordError(span, err)
	}
	span.SetAttributes(attribute.String("dashboard.date", date.String()))

	tasks, err := s.tasks.ListTasks(ctx, domain.ListTasksParams{FacilityID: facilityID, DueOn: date})
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to list tasks: %w", err))
	}

	states, err := s.tasks.OccurrenceStates(ctx, facilityID, date)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("failed to load occurrence states: %w", err))
	}

	applicable := applicableOn(tasks, fc.registry, date, states)
	resolver := status.NewResolver(fc.registry)

	result, err := s.aggregate(ctx, applicable, resolver, now)
	if err != nil {
		return nil, recordError(span, err)
	}

	d := &Dashboard{
		Facility:    fc.facility,
		Date:        date,
		GeneratedAt: now,
		Result:      result,
		Tasks:       taskViews(applicable, result),
		ByCategory:  aggregate.CountsBy(applicable, resolver, now, aggregate.ByCategory),
		ByShift:     aggregate.CountsBy(applicable, resolver, now, aggregate.ByShift),
		Shifts:      fc.registry.Shifts(),
	}
	if current, ok := fc.registry.CurrentShift(now); ok {
		d.CurrentShift = &current
	}

	s.record(ctx, facilityID, result)
	for _, u := range result.Unresolved {
		slog.WarnContext(ctx, "task could not be classified",
			"facility_id", facilityID,
			"task", u.Task.String(),
			"error", u.Err)
	}

	return d, nil
}

func (s *Service) aggregate(ctx context.Context, tasks []domain.Task, resolver *status.Resolver, now time.Time) (aggregate.Result, error) {
	if len(tasks) < s.config.ParallelThreshold || s.config.AggregationWorkers < 2 {
		return aggregate.Aggregate(tasks, resolver, now), nil
	}
	result, err := aggregate.AggregateParallel(ctx, tasks, resolver, now, s.config.AggregationWorkers)
	if err != nil {
		return aggregate.Result{}, fmt.Errorf("failed to aggregate tasks: %w", err)
	}
	return result, nil
}

func (s *Service) record(ctx context.Context, facilityID string, result aggregate.Result) {
	facility := attribute.String("facility.id", facilityID)
	if s.batchSize != nil {
		s.batchSize.Record(ctx, int64(result.Total()), metric.WithAttributes(facility))
	}
	if s.classified == nil {
		return
	}
	for verdict, n := range result.Counts {
		s.classified.Add(ctx, int64(n), metric.WithAttributes(facility, attribute.String("verdict", string(verdict))))
	}
}

// applicableOn keeps one-off tasks due on date and the occurrences of
// recurring tasks on date. Each occurrence carries its own stored state from
// states, or a fresh one when it was never changed.
func applicableOn(tasks []domain.Task, registry *shift.Registry, date domain.Date, states map[domain.TaskRef]domain.OccurrenceState) []domain.Task {
	var out []domain.Task
	for _, task := range tasks {
		instance, ok := instanceOn(task, registry, date)
		if !ok {
			continue
		}
		if task.IsRecurring() {
			instance = instance.Occurrence(date, states[task.Ref()])
		}
		out = append(out, instance)
	}
	return out
}

// instanceOn returns the occurrence of task on date with a fresh status.
// Recurring tasks whose shift is unknown are matched on the rule alone, so
// they surface as unresolved instead of disappearing.
func instanceOn(task domain.Task, registry *shift.Registry, date domain.Date) (domain.Task, bool) {
	def, known := registry.ByID(task.ShiftID)
	if !known && task.IsRecurring() {
		if !recurring.OccursOn(*task.Recurrence, date) {
			return domain.Task{}, false
		}
		return task.Occurrence(date, domain.OccurrenceState{}), true
	}
	return recurring.InstanceOn(task, def.Name, date)
}

func taskViews(tasks []domain.Task, result aggregate.Result) []TaskView {
	verdicts := make(map[domain.TaskRef]domain.StatusVerdict, len(tasks))
	for verdict, refs := range result.Buckets {
		for _, ref := range refs {
			verdicts[ref] = verdict
		}
	}

	views := make([]TaskView, len(tasks))
	for i, task := range tasks {
		views[i] = TaskView{Task: task, Verdict: verdicts[task.Ref()]}
	}
	return views
}

// CurrentShift returns the shift in progress at the facility. It fails with
// domain.ErrShiftNotFound when no shift covers the current time.
func (s *Service) CurrentShift(ctx context.Context, facilityID string) (*CurrentShift, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.CurrentShift",
		trace.WithAttributes(attribute.String("facility.id", facilityID)))
	defer span.End()

	now := s.now()
	fc, err := s.loadFacility(ctx, facilityID, func(loc *time.Location) domain.Date {
		return domain.DateOf(now.In(loc))
	})
	if err != nil {
		return nil, recordError(span, err)
	}

	def, ok := fc.registry.CurrentShift(now)
	if !ok {
		return nil, recordError(span, fmt.Errorf("%w: no shift covers %s at facility %s",
			domain.ErrShiftNotFound, now.In(fc.loc).Format(time.RFC3339), facilityID))
	}

	// A rollover shift in its after-midnight part is anchored on yesterday.
	anchor := domain.DateOf(now.In(fc.loc))
	window, err := clock.ResolveShiftWindow(def, anchor, fc.loc)
	if err != nil || !window.Contains(now) {
		anchor = anchor.AddDays(-1)
		window, err = clock.ResolveShiftWindow(def, anchor, fc.loc)
		if err != nil {
			return nil, recordError(span, err)
		}
	}

	return &CurrentShift{
		Facility: fc.facility,
		Shift:    def,
		Date:     anchor,
		Window:   window,
		Now:      now,
	}, nil
}

// Facilities lists every facility known to the shift source.
func (s *Service) Facilities(ctx context.Context) ([]domain.Facility, error) {
	configs, err := s.shifts.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}

	facilities := make([]domain.Facility, len(configs))
	for i, cfg := range configs {
		facilities[i] = cfg.Facility
	}
	return facilities, nil
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
