package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/careshift/internal/domain"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest reports a malformed request body or query.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError reports a single invalid field.
func ValidationError(w http.ResponseWriter, field, issue string) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{{Field: field, Issue: issue}},
		},
	})
}

// InternalError logs err with the request context and sends a generic 500.
// The client never sees err itself.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends an error body without field details.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	write(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// domainMapping turns a sentinel from the domain package into a response.
// A non-empty field makes it a VALIDATION_ERROR; an empty issue there means
// the wrapped error text is shown.
type domainMapping struct {
	target  error
	status  int
	field   string
	issue   string
	message string
}

var domainMappings = []domainMapping{
	{target: domain.ErrInvalidDate, status: http.StatusBadRequest, field: "date", issue: "must be YYYY-MM-DD"},
	{target: domain.ErrInvalidDateRange, status: http.StatusBadRequest, field: "range"},
	{target: domain.ErrInvalidTaskKind, status: http.StatusBadRequest, field: "kind", issue: "must be scheduled or unscheduled"},
	{target: domain.ErrInvalidRecurrenceRule, status: http.StatusBadRequest, field: "recurrence"},

	{target: domain.ErrFacilityNotFound, status: http.StatusNotFound, message: "facility not found"},
	{target: domain.ErrTaskNotFound, status: http.StatusNotFound, message: "task not found"},
	{target: domain.ErrShiftNotFound, status: http.StatusNotFound, message: "shift not found"},
	{target: domain.ErrOccurrenceNotFound, status: http.StatusNotFound, message: "occurrence not found"},

	{target: domain.ErrTaskLocked, status: http.StatusConflict, message: "task is locked"},
	{target: domain.ErrExceptionAlreadyRecorded, status: http.StatusConflict, message: "a different exception is already recorded"},
}

var statusCodes = map[int]string{
	http.StatusNotFound: "NOT_FOUND",
	http.StatusConflict: "CONFLICT",
}

// FromDomainError writes the response for err. Anything not recognised
// is logged and reported as a 500.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range domainMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.field != "" {
			issue := m.issue
			if issue == "" {
				issue = err.Error()
			}
			ValidationError(w, m.field, issue)
			return
		}
		Error(w, statusCodes[m.status], m.message, m.status)
		return
	}
	InternalError(w, r, err)
}
