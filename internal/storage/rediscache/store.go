// Package rediscache wraps a shift configuration store with a Redis
// read-through cache.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/storage"
)

// DefaultTTL bounds how long a cached configuration can be stale.
const DefaultTTL = 5 * time.Minute

// Stats counts cache outcomes.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// Store serves GetConfig from Redis and falls through to the wrapped store on
// a miss. Redis failures degrade to the wrapped store and are only logged.
type Store struct {
	next   storage.ShiftConfigStore
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

var _ storage.ShiftConfigStore = (*Store)(nil)

// New wraps next. A non-positive ttl uses DefaultTTL.
func New(next storage.ShiftConfigStore, client *redis.Client, prefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{next: next, client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(facilityID string) string {
	return s.prefix + "shift-config:" + facilityID
}

// GetConfig returns the cached document or loads and caches it.
func (s *Store) GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error) {
	key := s.key(facilityID)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		cfg, decodeErr := storage.Decode(data)
		if decodeErr == nil {
			s.hits.Add(1)
			return cfg, nil
		}
		s.errors.Add(1)
		slog.WarnContext(ctx, "discarding undecodable cached shift config",
			"facility_id", facilityID,
			"error", decodeErr)
	case errors.Is(err, redis.Nil):
		s.misses.Add(1)
	default:
		s.errors.Add(1)
		slog.WarnContext(ctx, "shift config cache read failed",
			"facility_id", facilityID,
			"error", err)
	}

	cfg, err := s.next.GetConfig(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, cfg)
	return cfg, nil
}

// PutConfig writes through to the wrapped store and drops the cached copy.
func (s *Store) PutConfig(ctx context.Context, cfg *domain.ShiftConfig) error {
	if err := s.next.PutConfig(ctx, cfg); err != nil {
		return err
	}
	if err := s.Invalidate(ctx, cfg.Facility.ID); err != nil {
		slog.WarnContext(ctx, "shift config cache invalidation failed",
			"facility_id", cfg.Facility.ID,
			"error", err)
	}
	return nil
}

// ListConfigs is not cached.
func (s *Store) ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error) {
	return s.next.ListConfigs(ctx)
}

// Invalidate drops the cached copy for a facility.
func (s *Store) Invalidate(ctx context.Context, facilityID string) error {
	if err := s.client.Del(ctx, s.key(facilityID)).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Errors: s.errors.Load(),
	}
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) fill(ctx context.Context, key string, cfg *domain.ShiftConfig) {
	data, err := storage.Encode(cfg)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.errors.Add(1)
		slog.WarnContext(ctx, "shift config cache write failed",
			"key", key,
			"error", err)
	}
}
