package extraction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
)

// BuildDraft assembles the appointment skeleton for a fresh extraction. The
// draft is not persisted; it only becomes a stored appointment once the
// patient commits to a slot. Full provenance (transcript and extraction) is
// carried on the draft for audit.
func BuildDraft(rec Record, transcript string, phoneNumber *string, timezone string) appointments.Appointment {
	now := time.Now().UTC()

	meta := map[string]string{}
	if rec.NeedsReview() {
		meta["needsReview"] = "true"
	}

	// The extraction already passed strict decoding, so it marshals cleanly.
	provenance, _ := json.Marshal(rec)

	return appointments.Appointment{
		ID:            uuid.NewString(),
		PatientName:   nil,
		PhoneNumber:   phoneNumber,
		Reason:        rec.Reason,
		Intent:        string(rec.Intent),
		Timezone:      timezone,
		UrgencyLevel:  rec.UrgencyLevel,
		Status:        appointments.StatusPending,
		Source:        appointments.SourceWhatsApp,
		CreatedAt:     now,
		UpdatedAt:     now,
		RawTranscript: transcript,
		LLMExtraction: provenance,
		Meta:          meta,
	}
}
