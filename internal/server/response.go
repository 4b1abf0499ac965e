package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/integration"
	"github.com/kazi-app/ups/internal/ups"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}

// writeErr maps domain errors onto status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, integration.ErrCommentNotFound),
		errors.Is(err, integration.ErrNotificationNotFound),
		errors.Is(err, integration.ErrExportNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, integration.ErrEmptyComment),
		errors.Is(err, integration.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, event.ErrInvalidEvent), errors.Is(err, event.ErrInvalidTopic):
		writeError(w, http.StatusBadRequest, "invalid_event", err.Error())
	case errors.Is(err, ups.ErrFeatureDisabled):
		writeError(w, http.StatusForbidden, "feature_disabled", err.Error())
	case errors.Is(err, integration.ErrServiceClosed), errors.Is(err, ups.ErrClosed),
		errors.Is(err, event.ErrBusNotRunning):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
