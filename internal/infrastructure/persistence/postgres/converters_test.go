package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/ptr"
)

func TestDateConversion(t *testing.T) {
	d := domain.NewDate(2024, time.February, 29)

	pg := dateToPgtype(d)
	require.True(t, pg.Valid)
	assert.Equal(t, d, pgtypeToDate(pg))

	assert.False(t, dateToPgtype(domain.Date{}).Valid, "zero date is NULL")
	assert.Nil(t, pgtypeToDatePtr(pgtype.Date{}))
	assert.True(t, pgtypeToDate(pgtype.Date{}).IsZero())
}

func TestPointerConversion(t *testing.T) {
	t.Run("nil pointers become NULL", func(t *testing.T) {
		assert.False(t, intPtrToPgtype(nil).Valid)
		assert.False(t, int64PtrToPgtype(nil).Valid)
		assert.False(t, timePtrToPgtype(nil).Valid)
	})

	t.Run("timestamps come back in UTC", func(t *testing.T) {
		chicago, err := time.LoadLocation("America/Chicago")
		require.NoError(t, err)
		at := time.Date(2024, time.March, 10, 8, 30, 0, 0, chicago)

		got := pgtypeToTimePtr(timePtrToPgtype(&at))
		require.NotNil(t, got)
		assert.Equal(t, time.UTC, got.Location())
		assert.True(t, at.Equal(*got))
	})

	t.Run("ints round trip", func(t *testing.T) {
		shift := 3
		exception := int64(42)
		assert.Equal(t, &shift, pgtypeToIntPtr(intPtrToPgtype(&shift)))
		assert.Equal(t, &exception, pgtypeToInt64Ptr(int64PtrToPgtype(&exception)))
	})
}

func TestTaskRowConversion(t *testing.T) {
	end := domain.NewDate(2024, time.December, 31)
	rule, err := domain.NewRecurrenceRule(domain.RecurrenceParams{
		Kind:        domain.RecurrenceMonthly,
		CycleLength: 2,
		Shifts:      domain.NewShiftNameSet(domain.ShiftAM, domain.ShiftNOC),
		ByWeekday:   true,
		StartDate:   domain.NewDate(2024, time.January, 9),
		EndDate:     &end,
	})
	require.NoError(t, err)

	completedAt := time.Date(2024, time.March, 9, 14, 0, 0, 0, time.UTC)
	shiftID := 1

	tests := []struct {
		name string
		task domain.Task
	}{
		{
			name: "scheduled one-off",
			task: domain.Task{
				ID: 11, FacilityID: "f-1", CategoryID: 4, ShiftID: 1,
				DueDate:            domain.NewDate(2024, time.March, 9),
				Completed:          true,
				CompletedAt:        &completedAt,
				CompletedByShiftID: &shiftID,
				Detail:             domain.ScheduledDetail{ResidentID: 7, Notes: "assist with shower"},
			},
		},
		{
			name: "unscheduled with exception",
			task: domain.Task{
				ID: 11, FacilityID: "f-1", ShiftID: 2,
				DueDate:     domain.NewDate(2024, time.March, 9),
				ExceptionID: ptr.To(int64(5)),
				ExceptionAt: &completedAt,
				Locked:      true,
				Detail:      domain.UnscheduledDetail{ResidentID: 7, Description: "fall check", TaskNotes: "hourly"},
			},
		},
		{
			name: "recurring",
			task: domain.Task{
				ID: 12, FacilityID: "f-1", ShiftID: 3,
				DueDate:    domain.NewDate(2024, time.January, 9),
				Recurrence: &rule,
				Detail:     domain.ScheduledDetail{ResidentID: 8},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rowToTask(taskToRow(tt.task))
			require.NoError(t, err)
			assert.Equal(t, tt.task, got)
		})
	}
}

func TestTaskRow_Fields(t *testing.T) {
	rule, err := domain.NewRecurrenceRule(domain.RecurrenceParams{
		Kind:        domain.RecurrenceWeekly,
		CycleLength: 1,
		Weekdays:    domain.NewWeekdaySet(time.Monday, time.Friday),
		StartDate:   domain.NewDate(2024, time.January, 1),
	})
	require.NoError(t, err)

	row := taskToRow(domain.Task{ID: 1, ShiftID: 1, Recurrence: &rule})

	assert.Equal(t, "scheduled", row.Kind, "a task without detail is scheduled")
	assert.Equal(t, "WEEKLY", row.RecurrenceKind.String)
	assert.Equal(t, int16(domain.NewWeekdaySet(time.Monday, time.Friday)), row.RecurrenceWeekdays)
	assert.Empty(t, row.RecurrenceShifts)
	assert.NotNil(t, row.RecurrenceShifts, "TEXT[] column is NOT NULL")
	assert.False(t, row.RecurrenceEnd.Valid)
	assert.Len(t, row.args(), len(row.scanTargets()))
}

func TestRowToTask_InvalidRows(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		_, err := rowToTask(taskRow{Kind: "adhoc", ID: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidTaskKind)
	})

	t.Run("weekly rule without weekdays", func(t *testing.T) {
		_, err := rowToTask(taskRow{
			Kind:            "scheduled",
			ID:              1,
			RecurrenceKind:  pgtype.Text{String: "WEEKLY", Valid: true},
			RecurrenceCycle: pgtype.Int4{Int32: 1, Valid: true},
			RecurrenceStart: dateToPgtype(domain.NewDate(2024, time.January, 1)),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRecurrenceRule)
	})
}

func TestShiftRowConversion(t *testing.T) {
	def := domain.ShiftDefinition{
		ID:           3,
		Name:         domain.ShiftNOC,
		Start:        domain.MustTimeOfDay(22, 0),
		End:          domain.MustTimeOfDay(6, 30),
		RollOverHint: true,
	}

	row := shiftToRow("f-1", def)
	assert.Equal(t, "22:00", row.StartUTC)
	assert.Equal(t, "06:30", row.EndUTC)

	got, err := rowToShift(row)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	row.EndUTC = "25:00"
	_, err = rowToShift(row)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeOfDay)
}

