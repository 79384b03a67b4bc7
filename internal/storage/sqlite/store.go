// Package sqlite stores shift configuration documents in a local SQLite file,
// for single-node deployments without Postgres.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	_ "modernc.org/sqlite"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store keeps one JSON document per facility in a shift_configs table.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(database.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetConfig reads the facility's document.
func (s *Store) GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM shift_configs WHERE facility_id = ?`, facilityID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFacilityNotFound, facilityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shift config: %w", err)
	}
	return storage.Decode([]byte(doc))
}

// PutConfig upserts the facility's document.
func (s *Store) PutConfig(ctx context.Context, cfg *domain.ShiftConfig) error {
	data, err := storage.Encode(cfg)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO shift_configs (facility_id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (facility_id) DO UPDATE
		SET document = excluded.document, updated_at = excluded.updated_at`,
		cfg.Facility.ID, string(data))
	if err != nil {
		return fmt.Errorf("failed to save shift config: %w", err)
	}
	return nil
}

// ListConfigs returns every stored document, ordered by facility id.
// Malformed documents are skipped.
func (s *Store) ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM shift_configs ORDER BY facility_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift configs: %w", err)
	}
	defer rows.Close()

	var configs []*domain.ShiftConfig
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan shift config: %w", err)
		}
		cfg, err := storage.Decode([]byte(doc))
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift configs: %w", err)
	}
	return configs, nil
}
