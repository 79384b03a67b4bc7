package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rezkam/careshift/internal/domain"
)

// GetConfig returns the facility and its shifts ordered by shift id.
func (s *Store) GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error) {
	cfg := &domain.ShiftConfig{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, timezone FROM facilities WHERE id = $1`, facilityID,
	).Scan(&cfg.Facility.ID, &cfg.Facility.Name, &cfg.Facility.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFacilityNotFound, facilityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}

	shifts, err := s.queryShifts(ctx,
		`SELECT facility_id, shift_id, name, start_utc, end_utc, is_roll_over
		 FROM facility_shifts WHERE facility_id = $1 ORDER BY shift_id`, facilityID)
	if err != nil {
		return nil, err
	}
	cfg.Shifts = shifts[facilityID]

	return cfg, nil
}

// ListConfigs returns every facility's configuration ordered by facility id.
func (s *Store) ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, timezone FROM facilities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	facilities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Facility, error) {
		var f domain.Facility
		err := row.Scan(&f.ID, &f.Name, &f.Timezone)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan facilities: %w", err)
	}

	shifts, err := s.queryShifts(ctx,
		`SELECT facility_id, shift_id, name, start_utc, end_utc, is_roll_over
		 FROM facility_shifts ORDER BY facility_id, shift_id`)
	if err != nil {
		return nil, err
	}

	configs := make([]*domain.ShiftConfig, len(facilities))
	for i, f := range facilities {
		configs[i] = &domain.ShiftConfig{Facility: f, Shifts: shifts[f.ID]}
	}
	return configs, nil
}

// queryShifts runs a facility_shifts query and groups the rows by facility.
func (s *Store) queryShifts(ctx context.Context, sql string, args ...any) (map[string][]domain.ShiftDefinition, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.ShiftDefinition)
	for rows.Next() {
		var r shiftRow
		if err := rows.Scan(&r.FacilityID, &r.ShiftID, &r.Name, &r.StartUTC, &r.EndUTC, &r.IsRollOver); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		def, err := rowToShift(r)
		if err != nil {
			return nil, fmt.Errorf("facility %s: %w", r.FacilityID, err)
		}
		out[r.FacilityID] = append(out[r.FacilityID], def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}
	return out, nil
}

// PutConfig replaces a facility and all of its shifts atomically.
func (s *Store) PutConfig(ctx context.Context, cfg *domain.ShiftConfig) error {
	if cfg.Facility.ID == "" {
		return fmt.Errorf("shift config: facility id is required")
	}
	if _, err := cfg.Facility.Location(); err != nil {
		return fmt.Errorf("shift config %s: %w", cfg.Facility.ID, err)
	}
	seen := make(map[int]bool, len(cfg.Shifts))
	for _, def := range cfg.Shifts {
		if seen[def.ID] {
			return fmt.Errorf("shift config %s: %w: %d", cfg.Facility.ID, domain.ErrDuplicateShift, def.ID)
		}
		seen[def.ID] = true
	}

	return s.executeInTransaction(ctx, "put_shift_config", func(tx *Store) error {
		_, err := tx.db.Exec(ctx, `
			INSERT INTO facilities (id, name, timezone, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (id) DO UPDATE
			SET name = excluded.name, timezone = excluded.timezone, updated_at = excluded.updated_at`,
			cfg.Facility.ID, cfg.Facility.Name, cfg.Facility.Timezone)
		if err != nil {
			return fmt.Errorf("failed to upsert facility: %w", err)
		}

		if _, err := tx.db.Exec(ctx, `DELETE FROM facility_shifts WHERE facility_id = $1`, cfg.Facility.ID); err != nil {
			return fmt.Errorf("failed to delete shifts: %w", err)
		}

		batch := &pgx.Batch{}
		for _, def := range cfg.Shifts {
			r := shiftToRow(cfg.Facility.ID, def)
			batch.Queue(`
				INSERT INTO facility_shifts (facility_id, shift_id, name, start_utc, end_utc, is_roll_over)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				r.FacilityID, r.ShiftID, r.Name, r.StartUTC, r.EndUTC, r.IsRollOver)
		}
		if err := tx.db.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert shifts: %w", err)
		}
		return nil
	})
}

// DeleteConfig removes a facility with its shifts and tasks.
func (s *Store) DeleteConfig(ctx context.Context, facilityID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, facilityID)
	if err != nil {
		return fmt.Errorf("failed to delete facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrFacilityNotFound, facilityID)
	}
	return nil
}
