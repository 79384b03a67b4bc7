// Package storage defines the shift configuration source and the JSON
// document format the file, bucket and cache backends share.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rezkam/careshift/internal/domain"
)

// ShiftConfigStore reads and writes facility shift configuration snapshots.
// Implementations return domain.ErrFacilityNotFound for unknown facilities.
type ShiftConfigStore interface {
	GetConfig(ctx context.Context, facilityID string) (*domain.ShiftConfig, error)
	PutConfig(ctx context.Context, cfg *domain.ShiftConfig) error
	ListConfigs(ctx context.Context) ([]*domain.ShiftConfig, error)
}

// Document is the wire form of a domain.ShiftConfig.
type Document struct {
	Facility FacilityDocument `json:"facility"`
	Shifts   []ShiftDocument  `json:"shifts"`
}

type FacilityDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// ShiftDocument carries shift times as UTC "HH:MM" strings.
type ShiftDocument struct {
	ID         int              `json:"id"`
	Name       string           `json:"name,omitempty"`
	StartUTC   domain.TimeOfDay `json:"start_utc"`
	EndUTC     domain.TimeOfDay `json:"end_utc"`
	IsRollOver bool             `json:"is_roll_over"`
}

// Encode marshals cfg to its JSON document.
func Encode(cfg *domain.ShiftConfig) ([]byte, error) {
	doc := Document{
		Facility: FacilityDocument{
			ID:       cfg.Facility.ID,
			Name:     cfg.Facility.Name,
			Timezone: cfg.Facility.Timezone,
		},
		Shifts: make([]ShiftDocument, len(cfg.Shifts)),
	}
	for i, s := range cfg.Shifts {
		doc.Shifts[i] = ShiftDocument{
			ID:         s.ID,
			Name:       string(s.Name),
			StartUTC:   s.Start,
			EndUTC:     s.End,
			IsRollOver: s.RollOverHint,
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shift config: %w", err)
	}
	return data, nil
}

// Decode parses and validates a JSON document.
func Decode(data []byte) (*domain.ShiftConfig, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shift config: %w", err)
	}

	if strings.TrimSpace(doc.Facility.ID) == "" {
		return nil, fmt.Errorf("shift config: facility id is required")
	}
	facility := domain.Facility{
		ID:       doc.Facility.ID,
		Name:     doc.Facility.Name,
		Timezone: doc.Facility.Timezone,
	}
	if _, err := facility.Location(); err != nil {
		return nil, fmt.Errorf("shift config %s: %w", facility.ID, err)
	}

	cfg := &domain.ShiftConfig{Facility: facility}
	seen := make(map[int]bool, len(doc.Shifts))
	for _, s := range doc.Shifts {
		if seen[s.ID] {
			return nil, fmt.Errorf("shift config %s: %w: %d", facility.ID, domain.ErrDuplicateShift, s.ID)
		}
		seen[s.ID] = true

		cfg.Shifts = append(cfg.Shifts, domain.ShiftDefinition{
			ID:           s.ID,
			Name:         domain.NewShiftName(s.Name),
			Start:        s.StartUTC,
			End:          s.EndUTC,
			RollOverHint: s.IsRollOver,
		})
	}
	return cfg, nil
}

// ObjectName is the file or object name a facility's document is stored under.
func ObjectName(facilityID string) string {
	return facilityID + ".json"
}
