package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/ptr"
	"github.com/rezkam/careshift/internal/shift"
	"github.com/rezkam/careshift/internal/status"
)

func resolver(t *testing.T) *status.Resolver {
	t.Helper()
	reg, err := shift.NewRegistry(time.UTC,
		domain.ShiftDefinition{ID: 1, Start: domain.MustTimeOfDay(7, 0), End: domain.MustTimeOfDay(15, 0)},
		domain.ShiftDefinition{ID: 2, Start: domain.MustTimeOfDay(15, 0), End: domain.MustTimeOfDay(23, 0)},
		domain.ShiftDefinition{ID: 3, Start: domain.MustTimeOfDay(23, 0), End: domain.MustTimeOfDay(7, 0)},
	)
	require.NoError(t, err)
	return status.NewResolver(reg)
}

var now = time.Date(2024, time.March, 10, 16, 0, 0, 0, time.UTC)

// batch returns 3 completed, 2 with exceptions, 1 with an unknown shift,
// 2 past due (AM) and 2 not complete (PM).
func batch() []domain.Task {
	due := domain.NewDate(2024, time.March, 10)
	task := func(id int64, shiftID, category int) domain.Task {
		return domain.Task{ID: id, ShiftID: shiftID, CategoryID: category, DueDate: due}
	}

	var tasks []domain.Task
	for i := range int64(3) {
		t := task(i+1, 1, 1)
		t.Completed = true
		tasks = append(tasks, t)
	}
	for i := range int64(2) {
		t := task(i+4, 1, 2)
		t.ExceptionID = ptr.To(i + 100)
		tasks = append(tasks, t)
	}
	tasks = append(tasks, task(6, 9, 2))
	tasks = append(tasks, task(7, 1, 3), task(8, 1, 3))
	unscheduled := task(7, 2, 3)
	unscheduled.Detail = domain.UnscheduledDetail{Description: "fall check"}
	tasks = append(tasks, unscheduled, task(10, 2, 3))
	return tasks
}

func TestAggregate_MixedBatch(t *testing.T) {
	tasks := batch()
	res := Aggregate(tasks, resolver(t), now)

	assert.Equal(t, 1, res.Counts[domain.StatusUnresolved])
	assert.Equal(t, 3, res.Counts[domain.StatusCompleted])
	assert.Equal(t, 2, res.Counts[domain.StatusException])
	assert.Equal(t, 2, res.Counts[domain.StatusPastDue])
	assert.Equal(t, 2, res.Counts[domain.StatusNotComplete])
	assert.Equal(t, len(tasks), res.Total())

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, int64(6), res.Unresolved[0].Task.ID)
	assert.ErrorIs(t, res.Unresolved[0].Err, domain.ErrShiftNotFound)

	assert.Contains(t, res.Buckets[domain.StatusNotComplete], domain.TaskRef{Kind: domain.TaskUnscheduled, ID: 7})
	assert.Contains(t, res.Buckets[domain.StatusPastDue], domain.TaskRef{Kind: domain.TaskScheduled, ID: 7})
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil, resolver(t), now)
	assert.Zero(t, res.Total())
	assert.Empty(t, res.Unresolved)
}

func TestAggregate_InvalidWindowIsUnresolved(t *testing.T) {
	reg, err := shift.NewRegistry(time.UTC,
		domain.ShiftDefinition{ID: 1, Start: domain.MustTimeOfDay(8, 0), End: domain.MustTimeOfDay(8, 0)},
	)
	require.NoError(t, err)

	res := Aggregate([]domain.Task{{ID: 1, ShiftID: 1, DueDate: domain.NewDate(2024, time.March, 10)}}, status.NewResolver(reg), now)
	assert.Equal(t, 1, res.Counts[domain.StatusUnresolved])
	assert.ErrorIs(t, res.Unresolved[0].Err, domain.ErrInvalidShiftWindow)
}

func TestAggregateParallel_MatchesSequential(t *testing.T) {
	var tasks []domain.Task
	for range 25 {
		tasks = append(tasks, batch()...)
	}
	r := resolver(t)
	want := Aggregate(tasks, r, now)

	for _, workers := range []int{0, 1, 3, 8, 1000} {
		got, err := AggregateParallel(context.Background(), tasks, r, now, workers)
		require.NoError(t, err)
		assert.Equal(t, want.Counts, got.Counts, "workers=%d", workers)
		assert.Len(t, got.Unresolved, len(want.Unresolved))
		for v, refs := range want.Buckets {
			assert.ElementsMatch(t, refs, got.Buckets[v])
		}
	}
}

func TestAggregateParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AggregateParallel(ctx, batch(), resolver(t), now, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateParallel_Empty(t *testing.T) {
	res, err := AggregateParallel(context.Background(), nil, resolver(t), now, 4)
	require.NoError(t, err)
	assert.Zero(t, res.Total())
}

func TestCountsBy(t *testing.T) {
	tasks := batch()
	r := resolver(t)

	byCategory := CountsBy(tasks, r, now, ByCategory)
	assert.Equal(t, Counts{domain.StatusCompleted: 3}, byCategory["1"])
	assert.Equal(t, Counts{domain.StatusException: 2, domain.StatusUnresolved: 1}, byCategory["2"])
	assert.Equal(t, Counts{domain.StatusPastDue: 2, domain.StatusNotComplete: 2}, byCategory["3"])

	byShift := CountsBy(tasks, r, now, ByShift)
	assert.Equal(t, 7, sum(byShift["1"]))
	assert.Equal(t, 1, sum(byShift["9"]))

	byWeekday := CountsBy(tasks, r, now, ByWeekday)
	assert.Equal(t, len(tasks), sum(byWeekday["Sunday"]))
}

func sum(c Counts) int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
