// Package shiftsource opens the configured shift configuration store and
// optionally fronts it with the Redis cache.
package shiftsource

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rezkam/careshift/internal/config"
	"github.com/rezkam/careshift/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/careshift/internal/storage"
	"github.com/rezkam/careshift/internal/storage/fs"
	"github.com/rezkam/careshift/internal/storage/gcs"
	"github.com/rezkam/careshift/internal/storage/rediscache"
	"github.com/rezkam/careshift/internal/storage/sqlite"
)

// ErrPostgresRequired is returned for the postgres source without a store.
var ErrPostgresRequired = errors.New("postgres shift source needs an open store")

// Source is an opened shift configuration store. Close releases whatever Open
// created; the Postgres store passed to Open is left to its owner.
type Source struct {
	storage.ShiftConfigStore

	closers []io.Closer
}

// Close releases the source's resources in reverse order of creation.
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Open selects the store named by src. pg backs the postgres source and may
// be nil for the others. When cache is enabled the store is wrapped with
// rediscache.
func Open(ctx context.Context, src config.ShiftSourceConfig, cache config.CacheConfig, pg *postgres.Store) (*Source, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	s := &Source{}
	switch src.Type {
	case config.ShiftSourcePostgres:
		if pg == nil {
			return nil, ErrPostgresRequired
		}
		s.ShiftConfigStore = pg
	case config.ShiftSourceFS:
		store, err := fs.NewStore(src.FSDir)
		if err != nil {
			return nil, err
		}
		s.ShiftConfigStore = store
	case config.ShiftSourceGCS:
		store, err := gcs.NewStore(ctx, src.GCSBucket, src.GCSPrefix)
		if err != nil {
			return nil, err
		}
		s.ShiftConfigStore = store
		s.closers = append(s.closers, store)
	case config.ShiftSourceSQLite:
		store, err := sqlite.NewStore(ctx, src.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.ShiftConfigStore = store
		s.closers = append(s.closers, store)
	}
	slog.InfoContext(ctx, "shift source opened", "type", src.Type)

	if !cache.Enabled() {
		return s, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cache.RedisAddr,
		Password: cache.RedisPassword,
		DB:       cache.RedisDB,
	})
	cached := rediscache.New(s.ShiftConfigStore, client, cache.Prefix, cache.TTL)
	s.closers = append(s.closers, client)

	// An unreachable Redis degrades to the underlying store, so startup
	// only warns.
	if err := cached.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "redis cache unreachable, reads fall through", "addr", cache.RedisAddr, "error", err)
	} else {
		slog.InfoContext(ctx, "redis cache enabled", "addr", cache.RedisAddr, "ttl", cache.TTL)
	}
	s.ShiftConfigStore = cached
	return s, nil
}
