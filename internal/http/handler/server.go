// Package handler implements the careshift REST endpoints on top of the
// dashboard service.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/careshift/internal/application/dashboard"
	"github.com/rezkam/careshift/internal/domain"
)

// Server holds the HTTP handlers.
type Server struct {
	service *dashboard.Service
}

// NewServer creates a new HTTP handler server.
func NewServer(service *dashboard.Service) *Server {
	return &Server{service: service}
}

// Routes registers the v1 endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/facilities/{facilityID}", func(r chi.Router) {
		r.Get("/dashboard", s.GetDashboard)
		r.Get("/current-shift", s.GetCurrentShift)
	})
	r.Get("/facilities", s.ListFacilities)

	r.Route("/tasks/{kind}/{taskID}", func(r chi.Router) {
		r.Post("/complete", s.CompleteTask)
		r.Post("/toggle", s.ToggleTask)
		r.Post("/exception", s.RecordException)
		r.Delete("/exception", s.ClearException)
		r.Get("/occurrences", s.GetOccurrences)
	})
}

// taskRef parses the {kind}/{taskID} path parameters.
func taskRef(r *http.Request) (domain.TaskRef, error) {
	kind, err := domain.NewTaskKind(chi.URLParam(r, "kind"))
	if err != nil {
		return domain.TaskRef{}, err
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil || id <= 0 {
		return domain.TaskRef{}, errInvalidTaskID
	}
	return domain.TaskRef{Kind: kind, ID: id}, nil
}

var errInvalidTaskID = errors.New("task id must be a positive integer")

// optionalDate parses query parameter name; absent means the zero date.
func optionalDate(r *http.Request, name string) (domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(raw)
}

// requiredDate parses query parameter name, which must be present.
func requiredDate(r *http.Request, name string) (domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return domain.Date{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidDate, name)
	}
	return domain.ParseDate(raw)
}

// decodeOptional decodes a JSON body into v. An empty body leaves v unchanged.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
