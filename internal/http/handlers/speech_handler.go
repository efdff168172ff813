package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/clinic-intake-agent/internal/observability/metrics"
	"github.com/wolfman30/clinic-intake-agent/internal/speech"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// SpeechHandler exposes text-to-speech synthesis.
type SpeechHandler struct {
	client  *speech.Client
	metrics *metrics.IntakeMetrics
	logger  *logging.Logger
}

// NewSpeechHandler creates a speech handler.
func NewSpeechHandler(client *speech.Client, m *metrics.IntakeMetrics, logger *logging.Logger) *SpeechHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SpeechHandler{client: client, metrics: m, logger: logger}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// Synthesize handles POST /api/tts.
func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	result, err := h.client.Synthesize(r.Context(), req.Text, req.VoiceID)
	if err != nil {
		h.metrics.ObserveSpeechSynthesis("error")
		if errors.Is(err, speech.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "speech_not_configured", "speech synthesis credential is missing")
			return
		}
		h.logger.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "processing_failed", "")
		return
	}

	h.metrics.ObserveSpeechSynthesis("ok")
	writeJSON(w, http.StatusOK, result)
}
