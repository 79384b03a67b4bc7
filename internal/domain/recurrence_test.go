package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecurrenceRule_Validation(t *testing.T) {
	start := NewDate(2024, time.March, 4)
	before := start.AddDays(-1)

	tests := []struct {
		name    string
		params  RecurrenceParams
		wantErr bool
	}{
		{
			name:   "daily",
			params: RecurrenceParams{Kind: RecurrenceDaily, CycleLength: 1, StartDate: start},
		},
		{
			name:   "weekly with weekdays",
			params: RecurrenceParams{Kind: RecurrenceWeekly, CycleLength: 2, Weekdays: NewWeekdaySet(time.Monday), StartDate: start},
		},
		{
			name:   "lower-case kind is normalized",
			params: RecurrenceParams{Kind: "monthly", CycleLength: 1, StartDate: start},
		},
		{
			name:    "zero cycle",
			params:  RecurrenceParams{Kind: RecurrenceDaily, CycleLength: 0, StartDate: start},
			wantErr: true,
		},
		{
			name:    "negative cycle",
			params:  RecurrenceParams{Kind: RecurrenceDaily, CycleLength: -2, StartDate: start},
			wantErr: true,
		},
		{
			name:    "weekly without weekdays",
			params:  RecurrenceParams{Kind: RecurrenceWeekly, CycleLength: 1, StartDate: start},
			wantErr: true,
		},
		{
			name:    "end before start",
			params:  RecurrenceParams{Kind: RecurrenceDaily, CycleLength: 1, StartDate: start, EndDate: &before},
			wantErr: true,
		},
		{
			name:    "missing start",
			params:  RecurrenceParams{Kind: RecurrenceDaily, CycleLength: 1},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			params:  RecurrenceParams{Kind: "HOURLY", CycleLength: 1, StartDate: start},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := NewRecurrenceRule(tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecurrenceRule)
				assert.True(t, rule.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, rule.IsZero())
		})
	}
}

func TestRecurrenceRule_EndDateEqualToStart(t *testing.T) {
	start := NewDate(2024, time.March, 4)
	rule, err := NewRecurrenceRule(RecurrenceParams{Kind: RecurrenceDaily, CycleLength: 1, StartDate: start, EndDate: &start})
	require.NoError(t, err)

	end, ok := rule.EndDate()
	assert.True(t, ok)
	assert.Equal(t, start, end)
}

func TestRecurrenceRule_ParamsAreCopies(t *testing.T) {
	end := NewDate(2024, time.April, 1)
	rule, err := NewRecurrenceRule(RecurrenceParams{
		Kind:        RecurrenceDaily,
		CycleLength: 1,
		Shifts:      ShiftNameSet{ShiftAM},
		StartDate:   NewDate(2024, time.March, 1),
		EndDate:     &end,
	})
	require.NoError(t, err)

	// Mutating the input or the returned params must not leak into the rule.
	end = end.AddDays(10)
	p := rule.Params()
	p.Shifts[0] = ShiftNOC
	*p.EndDate = p.EndDate.AddDays(5)

	gotEnd, _ := rule.EndDate()
	assert.Equal(t, NewDate(2024, time.April, 1), gotEnd)
	assert.Equal(t, ShiftNameSet{ShiftAM}, rule.Shifts())
}

func TestTask_CloneIsDeep(t *testing.T) {
	at := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	exc := int64(5)
	task := Task{ID: 1, CompletedAt: &at, ExceptionID: &exc, Detail: UnscheduledDetail{TaskNotes: "n"}}

	c := task.Clone()
	*c.CompletedAt = at.Add(time.Hour)
	*c.ExceptionID = 6

	assert.Equal(t, at, *task.CompletedAt)
	assert.Equal(t, int64(5), *task.ExceptionID)
	assert.Equal(t, TaskRef{Kind: TaskUnscheduled, ID: 1}, c.Ref())
}

func TestTask_KindDefaultsToScheduled(t *testing.T) {
	assert.Equal(t, TaskScheduled, Task{ID: 7}.Kind())
	assert.Equal(t, "scheduled/7", Task{ID: 7}.Ref().String())
}
