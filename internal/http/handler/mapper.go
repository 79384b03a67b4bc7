package handler

import (
	"time"

	"github.com/rezkam/careshift/internal/aggregate"
	"github.com/rezkam/careshift/internal/application/dashboard"
	"github.com/rezkam/careshift/internal/domain"
)

// ShiftDTO is a shift in facility-local wall-clock time.
type ShiftDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Start     string `json:"start"`
	End       string `json:"end"`
	RollsOver bool   `json:"rolls_over"`
}

// TaskDTO is a task with its verdict.
type TaskDTO struct {
	Kind               string     `json:"kind"`
	ID                 int64      `json:"id"`
	FacilityID         string     `json:"facility_id"`
	CategoryID         int        `json:"category_id"`
	ShiftID            int        `json:"shift_id"`
	DueDate            string     `json:"due_date"`
	ResidentID         int64      `json:"resident_id,omitempty"`
	Description        string     `json:"description,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CompletedByShiftID *int       `json:"completed_by_shift_id,omitempty"`
	ExceptionID        *int64     `json:"exception_id,omitempty"`
	ExceptionAt        *time.Time `json:"exception_at,omitempty"`
	Locked             bool       `json:"locked"`
	Recurring          bool       `json:"recurring"`
	Verdict            string     `json:"verdict,omitempty"`
}

// UnresolvedDTO is a task that could not be classified.
type UnresolvedDTO struct {
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// FacilityDTO identifies a facility.
type FacilityDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// DashboardResponse is the body of GET /v1/facilities/{id}/dashboard.
type DashboardResponse struct {
	Facility     FacilityDTO                  `json:"facility"`
	Date         string                       `json:"date"`
	GeneratedAt  time.Time                    `json:"generated_at"`
	CurrentShift *ShiftDTO                    `json:"current_shift,omitempty"`
	Shifts       []ShiftDTO                   `json:"shifts"`
	Total        int                          `json:"total"`
	Counts       map[domain.StatusVerdict]int `json:"counts"`
	ByCategory   map[string]aggregate.Counts  `json:"by_category"`
	ByShift      map[string]aggregate.Counts  `json:"by_shift"`
	Tasks        []TaskDTO                    `json:"tasks"`
	Unresolved   []UnresolvedDTO              `json:"unresolved,omitempty"`
}

// CurrentShiftResponse is the body of GET /v1/facilities/{id}/current-shift.
type CurrentShiftResponse struct {
	Facility    FacilityDTO `json:"facility"`
	Shift       ShiftDTO    `json:"shift"`
	Date        string      `json:"date"`
	WindowStart time.Time   `json:"window_start"`
	WindowEnd   time.Time   `json:"window_end"`
	Now         time.Time   `json:"now"`
}

// OccurrencesResponse is the body of GET /v1/tasks/{kind}/{id}/occurrences.
type OccurrencesResponse struct {
	Kind        string   `json:"kind"`
	ID          int64    `json:"id"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Description string   `json:"description"`
	Dates       []string `json:"dates"`
}

// StatusChangeRequest is the optional body of complete and toggle.
type StatusChangeRequest struct {
	ShiftID *int `json:"shift_id"`
}

// ExceptionRequest is the body of POST .../exception.
type ExceptionRequest struct {
	ExceptionID *int64 `json:"exception_id"`
}

func mapFacility(f domain.Facility) FacilityDTO {
	return FacilityDTO{ID: f.ID, Name: f.Name, Timezone: f.Timezone}
}

func mapShift(s domain.ShiftDefinition) ShiftDTO {
	return ShiftDTO{
		ID:        s.ID,
		Name:      string(s.Name),
		Start:     s.Start.String(),
		End:       s.End.String(),
		RollsOver: s.RollsOver(),
	}
}

// MapTaskToDTO converts a task view to its wire form.
func MapTaskToDTO(v dashboard.TaskView) TaskDTO {
	t := v.Task
	dto := TaskDTO{
		Kind:               string(t.Kind()),
		ID:                 t.ID,
		FacilityID:         t.FacilityID,
		CategoryID:         t.CategoryID,
		ShiftID:            t.ShiftID,
		DueDate:            t.DueDate.String(),
		Completed:          t.Completed,
		CompletedAt:        t.CompletedAt,
		CompletedByShiftID: t.CompletedByShiftID,
		ExceptionID:        t.ExceptionID,
		ExceptionAt:        t.ExceptionAt,
		Locked:             t.Locked,
		Recurring:          t.IsRecurring(),
		Verdict:            string(v.Verdict),
	}

	switch d := t.Detail.(type) {
	case domain.ScheduledDetail:
		dto.ResidentID = d.ResidentID
		dto.Notes = d.Notes
	case domain.UnscheduledDetail:
		dto.ResidentID = d.ResidentID
		dto.Description = d.Description
		dto.Notes = d.TaskNotes
	}
	return dto
}

// MapDashboardToDTO converts a dashboard to its wire form.
func MapDashboardToDTO(d *dashboard.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Facility:    mapFacility(d.Facility),
		Date:        d.Date.String(),
		GeneratedAt: d.GeneratedAt.UTC(),
		Shifts:      make([]ShiftDTO, len(d.Shifts)),
		Total:       d.Result.Total(),
		Counts:      make(map[domain.StatusVerdict]int, len(domain.Verdicts)+1),
		ByCategory:  d.ByCategory,
		ByShift:     d.ByShift,
		Tasks:       make([]TaskDTO, len(d.Tasks)),
	}

	// Every verdict is present so clients never see a missing key.
	for _, v := range domain.Verdicts {
		resp.Counts[v] = d.Result.Counts[v]
	}
	resp.Counts[domain.StatusUnresolved] = d.Result.Counts[domain.StatusUnresolved]

	if d.CurrentShift != nil {
		current := mapShift(*d.CurrentShift)
		resp.CurrentShift = &current
	}
	for i, s := range d.Shifts {
		resp.Shifts[i] = mapShift(s)
	}
	for i, v := range d.Tasks {
		resp.Tasks[i] = MapTaskToDTO(v)
	}
	for _, u := range d.Result.Unresolved {
		resp.Unresolved = append(resp.Unresolved, UnresolvedDTO{
			Kind:   string(u.Task.Kind),
			ID:     u.Task.ID,
			Reason: u.Err.Error(),
		})
	}
	return resp
}

func mapCurrentShift(c *dashboard.CurrentShift) CurrentShiftResponse {
	return CurrentShiftResponse{
		Facility:    mapFacility(c.Facility),
		Shift:       mapShift(c.Shift),
		Date:        c.Date.String(),
		WindowStart: c.Window.Start,
		WindowEnd:   c.Window.End,
		Now:         c.Now,
	}
}

func mapOccurrences(o *dashboard.Occurrences) OccurrencesResponse {
	resp := OccurrencesResponse{
		Kind:        string(o.Task.Kind),
		ID:          o.Task.ID,
		From:        o.Range.Start.String(),
		To:          o.Range.End.String(),
		Description: o.Description,
		Dates:       make([]string, len(o.Dates)),
	}
	for i, d := range o.Dates {
		resp.Dates[i] = d.String()
	}
	return resp
}
