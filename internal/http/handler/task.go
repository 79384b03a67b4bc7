package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rezkam/careshift/internal/application/dashboard"
	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/http/response"
)

// CompleteTask handles POST /v1/tasks/{kind}/{taskID}/complete?date=.
// The body {"shift_id": n} is optional; without it the current shift is used.
// date picks the occurrence of a recurring task and defaults to today.
func (s *Server) CompleteTask(w http.ResponseWriter, r *http.Request) {
	s.changeCompletion(w, r, s.service.CompleteTask)
}

// ToggleTask handles POST /v1/tasks/{kind}/{taskID}/toggle.
func (s *Server) ToggleTask(w http.ResponseWriter, r *http.Request) {
	s.changeCompletion(w, r, s.service.ToggleTask)
}

func (s *Server) changeCompletion(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, domain.TaskRef, domain.Date, *int) (*dashboard.TaskView, error),
) {
	ref, date, ok := occurrenceRef(w, r)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := decodeOptional(r, &req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	view, err := fn(r.Context(), ref, date, req.ShiftID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]TaskDTO{"task": MapTaskToDTO(*view)})
}

// RecordException handles POST /v1/tasks/{kind}/{taskID}/exception.
func (s *Server) RecordException(w http.ResponseWriter, r *http.Request) {
	ref, date, ok := occurrenceRef(w, r)
	if !ok {
		return
	}

	var req ExceptionRequest
	if err := decodeOptional(r, &req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	if req.ExceptionID == nil {
		response.ValidationError(w, "exception_id", "required field missing")
		return
	}

	view, err := s.service.RecordException(r.Context(), ref, date, *req.ExceptionID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]TaskDTO{"task": MapTaskToDTO(*view)})
}

// ClearException handles DELETE /v1/tasks/{kind}/{taskID}/exception.
func (s *Server) ClearException(w http.ResponseWriter, r *http.Request) {
	ref, date, ok := occurrenceRef(w, r)
	if !ok {
		return
	}

	view, err := s.service.ClearException(r.Context(), ref, date)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, map[string]TaskDTO{"task": MapTaskToDTO(*view)})
}

// GetOccurrences handles GET /v1/tasks/{kind}/{taskID}/occurrences?from=&to=.
func (s *Server) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	ref, err := taskRef(r)
	if err != nil {
		writeRefError(w, r, err)
		return
	}

	from, err := requiredDate(r, "from")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	to, err := requiredDate(r, "to")
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	rng, err := domain.NewDateRange(from, to)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	occ, err := s.service.TaskOccurrences(r.Context(), ref, rng)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapOccurrences(occ))
}

// occurrenceRef reads the task reference and the optional date query
// parameter, writing the error response when either is invalid.
func occurrenceRef(w http.ResponseWriter, r *http.Request) (domain.TaskRef, domain.Date, bool) {
	ref, err := taskRef(r)
	if err != nil {
		writeRefError(w, r, err)
		return domain.TaskRef{}, domain.Date{}, false
	}
	date, err := optionalDate(r, "date")
	if err != nil {
		response.FromDomainError(w, r, err)
		return domain.TaskRef{}, domain.Date{}, false
	}
	return ref, date, true
}

func writeRefError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidTaskID) {
		response.ValidationError(w, "task_id", err.Error())
		return
	}
	response.FromDomainError(w, r, err)
}
