package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"hours and minutes", "07:30", TimeOfDay{Hour: 7, Minute: 30}, false},
		{"with seconds", "23:00:00", TimeOfDay{Hour: 23, Minute: 0}, false},
		{"midnight", "00:00", TimeOfDay{}, false},
		{"surrounding whitespace", " 15:05 ", TimeOfDay{Hour: 15, Minute: 5}, false},
		{"hour out of range", "24:00", TimeOfDay{}, true},
		{"minute out of range", "10:60", TimeOfDay{}, true},
		{"second out of range", "10:00:61", TimeOfDay{}, true},
		{"missing minutes", "10", TimeOfDay{}, true},
		{"not a number", "ab:cd", TimeOfDay{}, true},
		{"empty", "", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_TextRoundTrip(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.UnmarshalText([]byte("06:45")))

	text, err := tod.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "06:45", string(text))
}

func TestShiftDefinition_RollsOver(t *testing.T) {
	noc := ShiftDefinition{ID: 3, Start: MustTimeOfDay(23, 0), End: MustTimeOfDay(7, 0)}
	am := ShiftDefinition{ID: 1, Start: MustTimeOfDay(7, 0), End: MustTimeOfDay(15, 0)}

	assert.True(t, noc.RollsOver())
	assert.False(t, am.RollsOver())

	// The stored hint never overrides the computed value.
	am.RollOverHint = true
	assert.False(t, am.RollsOver())
}

func TestDefaultShiftName(t *testing.T) {
	assert.Equal(t, ShiftAM, DefaultShiftName(1))
	assert.Equal(t, ShiftPM, DefaultShiftName(2))
	assert.Equal(t, ShiftNOC, DefaultShiftName(3))
	assert.Equal(t, ShiftName("SHIFT_4"), DefaultShiftName(4))
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)

	assert.Equal(t, NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, NewDate(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, 2, d.DaysUntil(NewDate(2024, time.March, 1)))
	assert.Equal(t, -28, d.DaysUntil(NewDate(2024, time.January, 31)))
	assert.Equal(t, 13, d.MonthsUntil(NewDate(2025, time.March, 1)))
	assert.Equal(t, 29, d.DaysInMonth())
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestDate_DaysUntilAcrossDST(t *testing.T) {
	// Civil dates ignore zone transitions.
	d := NewDate(2024, time.March, 9)
	assert.Equal(t, 2, d.DaysUntil(NewDate(2024, time.March, 11)))
}

func TestDate_DaysUntilCenturiesApart(t *testing.T) {
	start := NewDate(1700, time.January, 1)
	assert.Equal(t, 118338, start.DaysUntil(NewDate(2024, time.January, 1)))
	assert.Equal(t, -118338, NewDate(2024, time.January, 1).DaysUntil(start))
}

func TestDate_At(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	got := NewDate(2024, time.March, 10).At(MustTimeOfDay(23, 0), loc)
	assert.Equal(t, time.Date(2024, time.March, 10, 23, 0, 0, 0, loc), got)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 10), d)
	assert.Equal(t, "2024-03-10", d.String())

	_, err = ParseDate("03/10/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNewDateRange(t *testing.T) {
	start := NewDate(2024, time.March, 1)
	end := NewDate(2024, time.March, 31)

	r, err := NewDateRange(start, end)
	require.NoError(t, err)
	assert.True(t, r.Contains(start))
	assert.True(t, r.Contains(end))
	assert.False(t, r.Contains(end.AddDays(1)))

	_, err = NewDateRange(end, start)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestWeekdaySet(t *testing.T) {
	s := NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)

	assert.True(t, s.Has(time.Monday))
	assert.False(t, s.Has(time.Tuesday))
	assert.False(t, s.IsEmpty())
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, s.Days())
	assert.True(t, NewWeekdaySet().IsEmpty())
}

func TestShiftNameSet(t *testing.T) {
	s := NewShiftNameSet("am", "NOC", " Am ")

	assert.Len(t, s, 2)
	assert.True(t, s.Has(ShiftAM))
	assert.True(t, s.Has("noc"))
	assert.False(t, s.Has(ShiftPM))
}

func TestNewTaskKind(t *testing.T) {
	kind, err := NewTaskKind("Unscheduled")
	require.NoError(t, err)
	assert.Equal(t, TaskUnscheduled, kind)

	_, err = NewTaskKind("adhoc")
	assert.ErrorIs(t, err, ErrInvalidTaskKind)
}

func TestFacility_Location(t *testing.T) {
	loc, err := Facility{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Facility{Timezone: "Mars/Olympus"}.Location()
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}
