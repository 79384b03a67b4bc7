package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/ptr"
)

func TestMarkCompleted(t *testing.T) {
	task := dueTask(1)
	at := utc(10, 9, 30)

	got, err := MarkCompleted(task, at, 1)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, at, *got.CompletedAt)
	assert.Equal(t, 1, *got.CompletedByShiftID)
	assert.False(t, task.Completed, "input is not modified")
}

func TestMutations_RefuseLockedTasks(t *testing.T) {
	task := dueTask(1)
	task.Locked = true
	at := utc(10, 9, 0)

	ops := map[string]func() (domain.Task, error){
		"complete":        func() (domain.Task, error) { return MarkCompleted(task, at, 1) },
		"toggle":          func() (domain.Task, error) { return ToggleCompletion(task, at, 1) },
		"exception":       func() (domain.Task, error) { return MarkException(task, 5, at) },
		"clear exception": func() (domain.Task, error) { return ClearException(task) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			got, err := op()
			assert.ErrorIs(t, err, domain.ErrTaskLocked)
			assert.Equal(t, task, got, "no state change")
		})
	}
}

func TestMarkException(t *testing.T) {
	at := utc(10, 9, 0)

	t.Run("records the first exception", func(t *testing.T) {
		got, err := MarkException(dueTask(1), 5, at)
		require.NoError(t, err)
		assert.Equal(t, int64(5), *got.ExceptionID)
		assert.Equal(t, at, *got.ExceptionAt)
	})

	t.Run("same id is a no-op", func(t *testing.T) {
		first, err := MarkException(dueTask(1), 5, at)
		require.NoError(t, err)

		again, err := MarkException(first, 5, at.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, at, *again.ExceptionAt)
		assert.True(t, first.State().Equal(again.State()), "nothing to persist")
	})

	t.Run("different id is refused", func(t *testing.T) {
		first, err := MarkException(dueTask(1), 5, at)
		require.NoError(t, err)

		_, err = MarkException(first, 6, at)
		assert.ErrorIs(t, err, domain.ErrExceptionAlreadyRecorded)
	})

	t.Run("different id allowed when no timestamp was recorded", func(t *testing.T) {
		task := dueTask(1)
		task.ExceptionID = ptr.To(int64(5))

		got, err := MarkException(task, 6, at)
		require.NoError(t, err)
		assert.Equal(t, int64(6), *got.ExceptionID)
	})

	t.Run("clear then re-mark", func(t *testing.T) {
		first, err := MarkException(dueTask(1), 5, at)
		require.NoError(t, err)

		cleared, err := ClearException(first)
		require.NoError(t, err)
		assert.False(t, cleared.HasException())
		assert.Nil(t, cleared.ExceptionAt)

		got, err := MarkException(cleared, 6, at)
		require.NoError(t, err)
		assert.Equal(t, int64(6), *got.ExceptionID)
	})
}

func TestToggleCompletion(t *testing.T) {
	task := dueTask(1)

	on, err := ToggleCompletion(task, utc(10, 9, 0), 1)
	require.NoError(t, err)
	assert.True(t, on.Completed)
	require.NotNil(t, on.CompletedAt)

	off, err := ToggleCompletion(on, utc(10, 10, 0), 1)
	require.NoError(t, err)
	assert.False(t, off.Completed)
	assert.Nil(t, off.CompletedAt)
	assert.Nil(t, off.CompletedByShiftID)

	assert.Equal(t, task, off, "toggling twice restores the original state")
	assert.True(t, on.Completed, "earlier value is not modified")
}

func TestTransition(t *testing.T) {
	task, err := MarkCompleted(dueTask(1), utc(10, 9, 0), 1)
	require.NoError(t, err)

	tr := Transition(domain.ActionComplete, task, task.CompletedByShiftID, *task.CompletedAt)
	assert.Equal(t, domain.TaskRef{Kind: domain.TaskScheduled, ID: 1}, tr.Task)
	assert.True(t, tr.Completed)
	assert.Equal(t, domain.ActionComplete, tr.Action)
	assert.True(t, tr.Occurrence.IsZero(), "one-off tasks have no occurrence date")
}

func TestTransition_RecurringOccurrence(t *testing.T) {
	rule, err := domain.NewRecurrenceRule(domain.RecurrenceParams{
		Kind: domain.RecurrenceDaily, CycleLength: 1, StartDate: domain.NewDate(2024, time.March, 1),
	})
	require.NoError(t, err)
	template := dueTask(1)
	template.Recurrence = &rule
	occurrence := template.Occurrence(domain.NewDate(2024, time.March, 12), domain.OccurrenceState{})

	tr := Transition(domain.ActionToggle, occurrence, nil, utc(12, 9, 0))
	assert.Equal(t, domain.NewDate(2024, time.March, 12), tr.Occurrence)
}
