package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/careshift/internal/domain"
	"github.com/rezkam/careshift/internal/http/response"
)

// unencodable fails in MarshalJSON.
type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("boom")
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestOK_EncodingFailure_Returns500WithErrorJSON(t *testing.T) {
	w := httptest.NewRecorder()

	response.OK(w, unencodable{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decodeError(t, w)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "failed to encode response", resp.Error.Message)
}

func TestOK_Success_ReturnsValidJSON(t *testing.T) {
	w := httptest.NewRecorder()

	response.OK(w, map[string]any{"id": "123", "items": []string{"a", "b"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	assert.Equal(t, "123", decoded["id"])
}

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid date", fmt.Errorf("%w: %q", domain.ErrInvalidDate, "03/15"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid range", domain.ErrInvalidDateRange, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid kind", domain.ErrInvalidTaskKind, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not recurring", domain.ErrInvalidRecurrenceRule, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"facility", fmt.Errorf("failed to load shift config: %w", domain.ErrFacilityNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"task", domain.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no current shift", domain.ErrShiftNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no occurrence", fmt.Errorf("%w: scheduled:4 on 2024-03-16", domain.ErrOccurrenceNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"locked", fmt.Errorf("complete scheduled/1: %w", domain.ErrTaskLocked), http.StatusConflict, "CONFLICT"},
		{"exception recorded", domain.ErrExceptionAlreadyRecorded, http.StatusConflict, "CONFLICT"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/v1/anything", nil)

			response.FromDomainError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestInternalError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/anything", nil)

	response.InternalError(w, r, errors.New("password authentication failed for user careshift"))

	resp := decodeError(t, w)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}
