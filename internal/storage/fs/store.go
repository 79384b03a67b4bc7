package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/storage"
)

// Store keeps one shift configuration JSON document per facility in a directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates the directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) path(facilityID string) string {
	return filepath.Join(s.baseDir, storage.ObjectName(facilityID))
}

// GetConfig reads the facility's document.
func (s *Store) GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(facilityID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFacilityNotFound, facilityID)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return storage.Decode(data)
}

// PutConfig writes the facility's document, replacing any previous one.
// The write goes through a temporary file so readers never see a partial document.
func (s *Store) PutConfig(ctx context.Context, cfg *domain.ShiftConfig) error {
	data, err := storage.Encode(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, ".shift-config-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(cfg.Facility.ID)); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// ListConfigs loads every document in the directory in parallel.
// Unreadable or malformed files are skipped.
func (s *Store) ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var mu sync.Mutex
	var configs []*domain.ShiftConfig
	var wg sync.WaitGroup

	// Bound open files on large directories.
	const maxConcurrency = 20
	semaphore := make(chan struct{}, maxConcurrency)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}

		semaphore <- struct{}{}
		wg.Go(func() {
			defer func() { <-semaphore }()

			data, err := os.ReadFile(filepath.Join(s.baseDir, name))
			if err != nil {
				return
			}
			cfg, err := storage.Decode(data)
			if err != nil {
				return
			}

			mu.Lock()
			configs = append(configs, cfg)
			mu.Unlock()
		})
	}

	wg.Wait()
	return configs, nil
}
