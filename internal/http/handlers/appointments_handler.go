package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
	"github.com/wolfman30/clinic-intake-agent/internal/intake"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// AppointmentsHandler exposes finalize, update and listing operations.
type AppointmentsHandler struct {
	svc    *intake.Service
	logger *logging.Logger
}

// NewAppointmentsHandler creates an appointments handler.
func NewAppointmentsHandler(svc *intake.Service, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{svc: svc, logger: logger}
}

type appointmentResponse struct {
	Appointment appointments.Appointment `json:"appointment"`
}

type appointmentListResponse struct {
	Appointments []appointments.Appointment `json:"appointments"`
}

// Finalize handles POST /api/appointments: committing a chosen slot into a
// stored, confirmed appointment plus its confirmation message.
func (h *AppointmentsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req intake.FinalizeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	result, err := h.svc.Finalize(r.Context(), req)
	if err != nil {
		respondPipelineError(w, h.logger, "finalize-appointment", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Update handles PATCH /api/appointments/{id}: a shallow partial update.
func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), id, fields)
	if err != nil {
		respondPipelineError(w, h.logger, "update-appointment", err)
		return
	}

	writeJSON(w, http.StatusOK, appointmentResponse{Appointment: updated})
}

// List handles GET /api/appointments. With phone and date query parameters
// it narrows to the appointment for that patient on that day.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	date := r.URL.Query().Get("date")

	if phone != "" && date != "" {
		found, ok := h.svc.FindByPhoneAndDate(r.Context(), phone, date)
		if !ok {
			writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment for that phone and date")
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse{Appointment: found})
		return
	}

	writeJSON(w, http.StatusOK, appointmentListResponse{Appointments: h.svc.List(r.Context())})
}
