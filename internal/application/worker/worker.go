// Package worker periodically sweeps facility dashboards and reports tasks
// that need attention.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rezkam/careshift/internal/application/dashboard"
	"github.com/rezkam/careshift/internal/domain"
)

const instrumentationName = "github.com/rezkam/careshift/internal/application/worker"

// Default configuration values.
const (
	DefaultSweepInterval    = 5 * time.Minute
	DefaultOperationTimeout = 30 * time.Second
)

// Dashboards is the subset of dashboard.Service the sweeper needs.
type Dashboards interface {
	Dashboard(ctx context.Context, facilityID string, date domain.Date) (*dashboard.Dashboard, error)
	Facilities(ctx context.Context) ([]domain.Facility, error)
}

// Report summarizes one facility in a sweep.
type Report struct {
	FacilityID string
	Date       domain.Date
	Total      int
	PastDue    int
	Unresolved int
}

// Worker sweeps facility dashboards on a ticker.
type Worker struct {
	dashboards       Dashboards
	facilityIDs      []string
	sweepInterval    time.Duration
	operationTimeout time.Duration
	wg               sync.WaitGroup

	attention metric.Int64Gauge
	failures  metric.Int64Counter
}

// Option is a functional option for configuring Worker.
type Option func(*Worker)

// WithSweepInterval sets how often the worker sweeps.
func WithSweepInterval(d time.Duration) Option {
	return func(w *Worker) {
		w.sweepInterval = d
	}
}

// WithOperationTimeout bounds a single sweep.
func WithOperationTimeout(d time.Duration) Option {
	return func(w *Worker) {
		w.operationTimeout = d
	}
}

// WithFacilities limits the sweep to ids. Without it every facility the
// shift source knows about is swept.
func WithFacilities(ids ...string) Option {
	return func(w *Worker) {
		w.facilityIDs = ids
	}
}

// New creates a Worker.
func New(dashboards Dashboards, opts ...Option) *Worker {
	w := &Worker{
		dashboards:       dashboards,
		sweepInterval:    DefaultSweepInterval,
		operationTimeout: DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sweepInterval <= 0 {
		w.sweepInterval = DefaultSweepInterval
	}
	if w.operationTimeout <= 0 {
		w.operationTimeout = DefaultOperationTimeout
	}

	meter := otel.Meter(instrumentationName)
	var err error
	w.attention, err = meter.Int64Gauge("careshift.sweep.tasks",
		metric.WithDescription("Tasks needing attention at the last sweep, by verdict"),
		metric.WithUnit("{task}"))
	if err != nil {
		otel.Handle(err)
	}
	w.failures, err = meter.Int64Counter("careshift.sweep.failures",
		metric.WithDescription("Facilities whose sweep failed"),
		metric.WithUnit("{facility}"))
	if err != nil {
		otel.Handle(err)
	}
	return w
}

// Start sweeps once immediately and then on every tick until ctx is
// cancelled. It waits for an in-flight sweep before returning.
func (w *Worker) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "sweeper started", "interval", w.sweepInterval)

	w.sweep(ctx)

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.wg.Go(func() { w.sweep(ctx) })
		case <-ctx.Done():
			slog.InfoContext(ctx, "shutdown requested, waiting for in-flight sweep")
			w.wg.Wait()
			slog.InfoContext(ctx, "sweeper stopped")
			return nil
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	// Detached so a shutdown signal lets the current sweep finish.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.operationTimeout)
	defer cancel()

	if _, err := w.RunOnce(opCtx); err != nil {
		slog.ErrorContext(opCtx, "sweep finished with errors", "error", err)
	}
}

// RunOnce sweeps every facility once. A failing facility is logged and
// reported in the joined error; the others are still swept.
func (w *Worker) RunOnce(ctx context.Context) ([]Report, error) {
	ids, err := w.facilities(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(ids))
	var errs []error
	for _, id := range ids {
		report, err := w.sweepFacility(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "facility sweep failed", "facility_id", id, "error", err)
			w.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("facility.id", id)))
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

func (w *Worker) facilities(ctx context.Context) ([]string, error) {
	if len(w.facilityIDs) > 0 {
		return w.facilityIDs, nil
	}

	facilities, err := w.dashboards.Facilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	ids := make([]string, len(facilities))
	for i, f := range facilities {
		ids[i] = f.ID
	}
	return ids, nil
}

func (w *Worker) sweepFacility(ctx context.Context, facilityID string) (Report, error) {
	d, err := w.dashboards.Dashboard(ctx, facilityID, domain.Date{})
	if err != nil {
		return Report{}, fmt.Errorf("facility %s: %w", facilityID, err)
	}

	report := Report{
		FacilityID: facilityID,
		Date:       d.Date,
		Total:      d.Result.Total(),
		PastDue:    d.Result.Counts[domain.StatusPastDue],
		Unresolved: d.Result.Counts[domain.StatusUnresolved],
	}

	for verdict, n := range map[domain.StatusVerdict]int{
		domain.StatusPastDue:    report.PastDue,
		domain.StatusUnresolved: report.Unresolved,
	} {
		w.attention.Record(ctx, int64(n), metric.WithAttributes(
			attribute.String("verdict", string(verdict)),
			attribute.String("facility.id", facilityID),
		))
	}

	level := slog.LevelInfo
	if report.PastDue > 0 || report.Unresolved > 0 {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "facility swept",
		"facility_id", facilityID,
		"date", report.Date.String(),
		"total", report.Total,
		"past_due", report.PastDue,
		"unresolved", report.Unresolved)

	return report, nil
}
