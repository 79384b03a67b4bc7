package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
)

func date(y int, m time.Month, d int) domain.Date {
	return domain.NewDate(y, m, d)
}

func mustRule(t *testing.T, p domain.RecurrenceParams) domain.RecurrenceRule {
	t.Helper()
	rule, err := domain.NewRecurrenceRule(p)
	require.NoError(t, err)
	return rule
}

func TestDailyMatcher(t *testing.T) {
	tests := []struct {
		name   string
		params domain.RecurrenceParams
		date   domain.Date
		want   bool
	}{
		{
			name:   "every day matches start",
			params: domain.RecurrenceParams{Kind: domain.RecurrenceDaily, CycleLength: 1, StartDate: date(2024, 3, 1)},
			date:   date(2024, 3, 1),
			want:   true,
		},
		{
			name:   "every third day skips",
			params: domain.RecurrenceParams{Kind: domain.RecurrenceDaily, CycleLength: 3, StartDate: date(2024, 3, 1)},
			date:   date(2024, 3, 3),
			want:   false,
		},
		{
			name:   "every third day hits",
			params: domain.RecurrenceParams{Kind: domain.RecurrenceDaily, CycleLength: 3, StartDate: date(2024, 3, 1)},
			date:   date(2024, 3, 7),
			want:   true,
		},
		{
			name: "weekday mask excludes weekend",
			params: domain.RecurrenceParams{
				Kind: domain.RecurrenceDaily, CycleLength: 1, StartDate: date(2024, 3, 1),
				Weekdays: domain.NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
			},
			date: date(2024, 3, 2), // Saturday
			want: false,
		},
		{
			name:   "before start",
			params: domain.RecurrenceParams{Kind: domain.RecurrenceDaily, CycleLength: 1, StartDate: date(2024, 3, 1)},
			date:   date(2024, 2, 29),
			want:   false,
		},
	}

	m := &DailyMatcher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(mustRule(t, tt.params), tt.date))
		})
	}
}

func TestWeeklyMatcher(t *testing.T) {
	rule := mustRule(t, domain.RecurrenceParams{
		Kind:        domain.RecurrenceWeekly,
		CycleLength: 2,
		Weekdays:    domain.NewWeekdaySet(time.Monday, time.Thursday),
		StartDate:   date(2024, 3, 6), // Wednesday
	})

	m := &WeeklyMatcher{}
	tests := []struct {
		date domain.Date
		want bool
	}{
		{date(2024, 3, 4), false},  // Monday before start, same week
		{date(2024, 3, 7), true},   // Thursday, start week
		{date(2024, 3, 11), false}, // Monday, off week
		{date(2024, 3, 14), false}, // Thursday, off week
		{date(2024, 3, 18), true},  // Monday, two weeks on
		{date(2024, 3, 20), false}, // Wednesday not in mask
	}
	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, OccursOn(rule, tt.date))
		})
	}
	assert.True(t, m.Matches(rule, date(2024, 3, 7)))
}

func TestPeriodMatcher_DayOfMonth(t *testing.T) {
	tests := []struct {
		name string
		kind domain.RecurrenceKind
		cyc  int
		from domain.Date
		date domain.Date
		want bool
	}{
		{"monthly same day", domain.RecurrenceMonthly, 1, date(2024, 1, 15), date(2024, 4, 15), true},
		{"monthly other day", domain.RecurrenceMonthly, 1, date(2024, 1, 15), date(2024, 4, 16), false},
		{"bi-monthly off month", domain.RecurrenceMonthly, 2, date(2024, 1, 15), date(2024, 2, 15), false},
		{"31st clamps to end of February", domain.RecurrenceMonthly, 1, date(2024, 1, 31), date(2024, 2, 29), true},
		{"31st clamps to 30th", domain.RecurrenceMonthly, 1, date(2024, 1, 31), date(2024, 4, 30), true},
		{"31st does not fire on 30th of long month", domain.RecurrenceMonthly, 1, date(2024, 1, 31), date(2024, 3, 30), false},
		{"quarterly", domain.RecurrenceQuarterly, 1, date(2024, 1, 10), date(2024, 4, 10), true},
		{"quarterly wrong month", domain.RecurrenceQuarterly, 1, date(2024, 1, 10), date(2024, 3, 10), false},
		{"yearly", domain.RecurrenceYearly, 1, date(2024, 6, 1), date(2026, 6, 1), true},
		{"leap day in a common year", domain.RecurrenceYearly, 1, date(2024, 2, 29), date(2025, 2, 28), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := mustRule(t, domain.RecurrenceParams{Kind: tt.kind, CycleLength: tt.cyc, StartDate: tt.from})
			assert.Equal(t, tt.want, OccursOn(rule, tt.date))
		})
	}
}

func TestPeriodMatcher_ByWeekday(t *testing.T) {
	// 2024-01-09 is the second Tuesday of January.
	second := mustRule(t, domain.RecurrenceParams{
		Kind: domain.RecurrenceMonthly, CycleLength: 1, ByWeekday: true, StartDate: date(2024, 1, 9),
	})
	assert.True(t, OccursOn(second, date(2024, 2, 13)))
	assert.False(t, OccursOn(second, date(2024, 2, 6)))
	assert.False(t, OccursOn(second, date(2024, 2, 14)))

	// 2024-01-30 is the fifth (last) Tuesday of January; February has four.
	last := mustRule(t, domain.RecurrenceParams{
		Kind: domain.RecurrenceMonthly, CycleLength: 1, ByWeekday: true, StartDate: date(2024, 1, 30),
	})
	assert.True(t, OccursOn(last, date(2024, 2, 27)))
	assert.False(t, OccursOn(last, date(2024, 2, 20)))
}

func TestWeekOrdinal(t *testing.T) {
	n, last := weekOrdinal(date(2024, 2, 27))
	assert.Equal(t, 4, n)
	assert.True(t, last)

	n, last = weekOrdinal(date(2024, 1, 23))
	assert.Equal(t, 4, n)
	assert.False(t, last)
}

func TestGetMatcher(t *testing.T) {
	assert.IsType(t, &DailyMatcher{}, GetMatcher(domain.RecurrenceDaily))
	assert.IsType(t, &WeeklyMatcher{}, GetMatcher(domain.RecurrenceWeekly))
	assert.IsType(t, &PeriodMatcher{}, GetMatcher(domain.RecurrenceYearly))
	assert.Nil(t, GetMatcher("HOURLY"))

	singular, plural := GetMatcher(domain.RecurrenceQuarterly).Unit()
	assert.Equal(t, "quarter", singular)
	assert.Equal(t, "quarters", plural)
}
