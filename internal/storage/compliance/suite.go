package compliance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/storage"
)

// SampleConfig returns a three-shift configuration for a fresh facility id.
func SampleConfig() *domain.ShiftConfig {
	return &domain.ShiftConfig{
		Facility: domain.Facility{
			ID:       "facility-" + uuid.NewString(),
			Name:     "Oak Terrace",
			Timezone: "America/Chicago",
		},
		Shifts: []domain.ShiftDefinition{
			{ID: 1, Name: domain.ShiftAM, Start: domain.MustTimeOfDay(13, 0), End: domain.MustTimeOfDay(21, 0)},
			{ID: 2, Name: domain.ShiftPM, Start: domain.MustTimeOfDay(21, 0), End: domain.MustTimeOfDay(5, 0), RollOverHint: true},
			{ID: 3, Name: domain.ShiftNOC, Start: domain.MustTimeOfDay(5, 0), End: domain.MustTimeOfDay(13, 0)},
		},
	}
}

// RunShiftConfigStoreComplianceTest runs a standard set of tests against a
// ShiftConfigStore. setup returns a fresh store and a cleanup function.
func RunShiftConfigStoreComplianceTest(t *testing.T, setup func() (storage.ShiftConfigStore, func())) {
	t.Run("PutAndGetConfig", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		cfg := SampleConfig()
		require.NoError(t, store.PutConfig(ctx, cfg))

		fetched, err := store.GetConfig(ctx, cfg.Facility.ID)
		require.NoError(t, err)
		assert.Equal(t, cfg.Facility, fetched.Facility)
		require.Len(t, fetched.Shifts, 3)
		assert.Equal(t, cfg.Shifts, fetched.Shifts)
	})

	t.Run("PutReplacesConfig", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		cfg := SampleConfig()
		require.NoError(t, store.PutConfig(ctx, cfg))

		cfg.Facility.Name = "Oak Terrace East"
		cfg.Shifts = cfg.Shifts[:1]
		require.NoError(t, store.PutConfig(ctx, cfg))

		fetched, err := store.GetConfig(ctx, cfg.Facility.ID)
		require.NoError(t, err)
		assert.Equal(t, "Oak Terrace East", fetched.Facility.Name)
		assert.Len(t, fetched.Shifts, 1)
	})

	t.Run("ListConfigs", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		first, second := SampleConfig(), SampleConfig()
		require.NoError(t, store.PutConfig(ctx, first))
		require.NoError(t, store.PutConfig(ctx, second))

		configs, err := store.ListConfigs(ctx)
		require.NoError(t, err)

		ids := make(map[string]bool)
		for _, c := range configs {
			ids[c.Facility.ID] = true
		}
		assert.True(t, ids[first.Facility.ID])
		assert.True(t, ids[second.Facility.ID])
	})

	t.Run("GetUnknownFacility", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.GetConfig(context.Background(), "no-such-facility")
		assert.ErrorIs(t, err, domain.ErrFacilityNotFound)
	})
}
