package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/rezkam/careshift/internal/domain"
	shiftstorage "github.com/rezkam/careshift/internal/storage"
)

// Store keeps one shift configuration JSON object per facility in a bucket.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a GCS-backed store.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucketName,
		prefix: prefix,
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objectName(facilityID string) string {
	return s.prefix + shiftstorage.ObjectName(facilityID)
}

// GetConfig reads the facility's object.
func (s *Store) GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error) {
	data, err := s.read(ctx, s.objectName(facilityID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFacilityNotFound, facilityID)
		}
		return nil, err
	}
	return shiftstorage.Decode(data)
}

// PutConfig writes the facility's object, replacing any previous version.
func (s *Store) PutConfig(ctx context.Context, cfg *domain.ShiftConfig) error {
	data, err := shiftstorage.Encode(cfg)
	if err != nil {
		return err
	}

	w := s.client.Bucket(s.bucket).Object(s.objectName(cfg.Facility.ID)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// ListConfigs loads every document under the prefix in parallel.
// Unreadable or malformed objects are skipped.
func (s *Store) ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error) {
	names, err := s.objectNames(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var configs []*domain.ShiftConfig
	var wg sync.WaitGroup

	// GCS handles many concurrent reads; stay conservative locally.
	const maxConcurrency = 20
	semaphore := make(chan struct{}, maxConcurrency)

	for _, name := range names {
		semaphore <- struct{}{}
		wg.Go(func() {
			defer func() { <-semaphore }()

			data, err := s.read(ctx, name)
			if err != nil {
				return
			}
			cfg, err := shiftstorage.Decode(data)
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

// DeleteConfig removes the facility's object. Missing objects are not an error.
func (s *Store) DeleteConfig(ctx context.Context, facilityID string) error {
	err := s.client.Bucket(s.bucket).Object(s.objectName(facilityID)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *Store) objectNames(ctx context.Context) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			names = append(names, attrs.Name)
		}
	}
	return names, nil
}

func (s *Store) read(ctx context.Context, name string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}
