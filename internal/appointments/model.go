package appointments

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending     Status = "pending"
	StatusConfirmed   Status = "confirmed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

// SourceWhatsApp is the messaging channel appointments currently originate from.
const SourceWhatsApp = "whatsapp"

// Appointment is the durable record of one scheduling engagement. The raw
// transcript and the extraction that produced it are kept for audit even
// though nothing downstream reads them.
type Appointment struct {
	ID                  string            `json:"id"`
	PatientName         *string           `json:"patientName"`
	PhoneNumber         *string           `json:"phoneNumber"`
	Reason              string            `json:"reason"`
	Intent              string            `json:"intent"`
	AppointmentDateTime *string           `json:"appointmentDateTime"`
	Timezone            string            `json:"timezone"`
	UrgencyLevel        string            `json:"urgencyLevel"`
	Status              Status            `json:"status"`
	Source              string            `json:"source"`
	ExternalEventID     *string           `json:"externalEventId"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	RawTranscript       string            `json:"rawTranscript"`
	LLMExtraction       json.RawMessage   `json:"llmExtraction,omitempty"`
	Meta                map[string]string `json:"meta"`
}
