package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/careshift/internal/http/response"
)

// GetDashboard handles GET /v1/facilities/{facilityID}/dashboard?date=YYYY-MM-DD.
// Without a date the facility-local today is used.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	date, err := optionalDate(r, "date")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	d, err := s.service.Dashboard(r.Context(), chi.URLParam(r, "facilityID"), date)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, MapDashboardToDTO(d))
}

// GetCurrentShift handles GET /v1/facilities/{facilityID}/current-shift.
func (s *Server) GetCurrentShift(w http.ResponseWriter, r *http.Request) {
	current, err := s.service.CurrentShift(r.Context(), chi.URLParam(r, "facilityID"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapCurrentShift(current))
}

// ListFacilities handles GET /v1/facilities.
func (s *Server) ListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := s.service.Facilities(r.Context())
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	out := make([]FacilityDTO, len(facilities))
	for i, f := range facilities {
		out[i] = mapFacility(f)
	}
	response.OK(w, map[string]any{"facilities": out})
}
