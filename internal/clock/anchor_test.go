package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
)

func shiftDef(id, sh, sm, eh, em int) domain.ShiftDefinition {
	return domain.ShiftDefinition{
		ID:    id,
		Name:  domain.DefaultShiftName(id),
		Start: domain.MustTimeOfDay(sh, sm),
		End:   domain.MustTimeOfDay(eh, em),
	}
}

func TestAnchor(t *testing.T) {
	d := domain.NewDate(2024, time.March, 10)
	got := Anchor(domain.MustTimeOfDay(7, 30), d, time.UTC)

	assert.Equal(t, time.Date(2024, time.March, 10, 7, 30, 0, 0, time.UTC), got)
}

func TestResolveShiftWindow(t *testing.T) {
	anchor := domain.NewDate(2024, time.March, 10)

	t.Run("rollover shift ends next day", func(t *testing.T) {
		w, err := ResolveShiftWindow(shiftDef(3, 23, 0, 7, 0), anchor, time.UTC)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, time.Date(2024, time.March, 11, 7, 0, 0, 0, time.UTC), w.End)
		assert.Equal(t, 8*time.Hour, w.Duration())
	})

	t.Run("day shift stays on anchor date", func(t *testing.T) {
		w, err := ResolveShiftWindow(shiftDef(1, 7, 0, 15, 0), anchor, time.UTC)
		require.NoError(t, err)

		assert.Equal(t, domain.DateOf(w.Start), anchor)
		assert.Equal(t, domain.DateOf(w.End), anchor)
	})

	t.Run("shift ending at midnight rolls over", func(t *testing.T) {
		w, err := ResolveShiftWindow(shiftDef(2, 15, 0, 0, 0), anchor, time.UTC)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), w.End)
	})

	t.Run("zero length shift is rejected", func(t *testing.T) {
		_, err := ResolveShiftWindow(shiftDef(4, 8, 0, 8, 0), anchor, time.UTC)
		assert.ErrorIs(t, err, domain.ErrInvalidShiftWindow)
	})
}

func TestResolveShiftWindow_RolloverProperty(t *testing.T) {
	anchor := domain.NewDate(2024, time.June, 1)

	for sh := 0; sh < 24; sh++ {
		for eh := 0; eh < 24; eh++ {
			if sh == eh {
				continue
			}
			def := shiftDef(9, sh, 0, eh, 0)
			w, err := ResolveShiftWindow(def, anchor, time.UTC)
			require.NoError(t, err)

			want := anchor
			if sh > eh {
				want = anchor.AddDays(1)
			}
			assert.Equal(t, want, domain.DateOf(w.End), "start=%d end=%d", sh, eh)
			assert.True(t, w.End.After(w.Start))
		}
	}
}

func TestWindow_ContainsIsHalfOpen(t *testing.T) {
	w := Window{
		Start: time.Date(2024, time.March, 10, 7, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Minute)))
}

func TestLocalTimeOfDay(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	utc := domain.MustTimeOfDay(13, 0)

	// CST (UTC-6) in January, CDT (UTC-5) in July.
	assert.Equal(t, domain.MustTimeOfDay(7, 0), LocalTimeOfDay(utc, domain.NewDate(2024, time.January, 15), chicago))
	assert.Equal(t, domain.MustTimeOfDay(8, 0), LocalTimeOfDay(utc, domain.NewDate(2024, time.July, 15), chicago))
}

func TestFixed(t *testing.T) {
	at := time.Date(2024, time.March, 10, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, at, Fixed(at)())
}
