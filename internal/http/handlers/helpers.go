package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
	"github.com/wolfman30/clinic-intake-agent/internal/intake"
	"github.com/wolfman30/clinic-intake-agent/internal/llm"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// ErrorResponse is the common error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// respondPipelineError translates pipeline failures into caller-visible
// signals. Upstream causes are logged for operators but never leaked into
// the response body.
func respondPipelineError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	switch {
	case errors.Is(err, intake.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, appointments.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment with that id")
	case errors.Is(err, llm.ErrParseFailure):
		logger.Error(op+" parse failure", "error", err)
		writeError(w, http.StatusInternalServerError, "processing_failed", "")
	default:
		logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "processing_failed", "")
	}
}
