package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/storage"
	"github.com/rezkam/careshift/internal/storage/compliance"
)

func TestFSStore_Compliance(t *testing.T) {
	compliance.RunShiftConfigStoreComplianceTest(t, func() (storage.ShiftConfigStore, func()) {
		tmpDir, err := os.MkdirTemp("", "fs-store-test-*")
		require.NoError(t, err)

		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		cleanup := func() {
			os.RemoveAll(tmpDir)
		}

		return store, cleanup
	})
}

func TestFSStore_ReadsHandWrittenDocument(t *testing.T) {
	dir := t.TempDir()
	doc := `{"facility": {"id": "f-1", "name": "Oak", "timezone": "America/Chicago"},
	 "shifts": [{"id": 1, "name": "am", "start_utc": "13:00", "end_utc": "21:00", "is_roll_over": false},
	            {"id": 3, "start_utc": "05:00:00", "end_utc": "13:00", "is_roll_over": true}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f-1.json"), []byte(doc), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)

	cfg, err := store.GetConfig(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", cfg.Facility.Timezone)
	require.Len(t, cfg.Shifts, 2)
	assert.Equal(t, "AM", string(cfg.Shifts[0].Name))
	assert.Empty(t, cfg.Shifts[1].Name)
	assert.True(t, cfg.Shifts[1].RollOverHint)
}

func TestFSStore_ListSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.PutConfig(context.Background(), compliance.SampleConfig()))

	configs, err := store.ListConfigs(context.Background())
	require.NoError(t, err)
	assert.Len(t, configs, 1)
}
