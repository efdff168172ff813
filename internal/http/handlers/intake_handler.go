package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/clinic-intake-agent/internal/intake"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// IntakeHandler exposes the interpret and propose pipeline operations.
type IntakeHandler struct {
	svc    *intake.Service
	logger *logging.Logger
}

// NewIntakeHandler creates an intake handler.
func NewIntakeHandler(svc *intake.Service, logger *logging.Logger) *IntakeHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeHandler{svc: svc, logger: logger}
}

type interpretIntentRequest struct {
	Transcript  string `json:"transcript"`
	PhoneNumber string `json:"phoneNumber"`
}

// InterpretIntent handles POST /api/interpret-intent.
func (h *IntakeHandler) InterpretIntent(w http.ResponseWriter, r *http.Request) {
	var req interpretIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	result, err := h.svc.InterpretIntent(r.Context(), req.Transcript, req.PhoneNumber)
	if err != nil {
		respondPipelineError(w, h.logger, "interpret-intent", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ProposeSlots handles POST /api/propose-slots.
func (h *IntakeHandler) ProposeSlots(w http.ResponseWriter, r *http.Request) {
	var req intake.ProposeSlotsInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	proposal, err := h.svc.ProposeSlots(r.Context(), req)
	if err != nil {
		respondPipelineError(w, h.logger, "propose-slots", err)
		return
	}

	writeJSON(w, http.StatusOK, proposal)
}
