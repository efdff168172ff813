package extraction

import (
	"fmt"

	"github.com/wolfman30/clinic-intake-agent/internal/llm"
)

// Intent classifies what the patient wants to do with an appointment.
type Intent string

const (
	IntentSchedule   Intent = "schedule"
	IntentReschedule Intent = "reschedule"
	IntentCancel     Intent = "cancel"
	IntentUnknown    Intent = "unknown"
)

// Urgency levels used purely for scheduling prioritization, never triage.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// LowConfidenceThreshold is the conventional cutoff below which an
// extraction is considered unreliable and worth human review.
const LowConfidenceThreshold = 0.5

// Record is the structured scheduling intent extracted from one transcript.
type Record struct {
	Intent        Intent  `json:"intent"`
	PreferredDate *string `json:"preferredDate"`
	PreferredTime *string `json:"preferredTime"`
	Reason        string  `json:"reason"`
	UrgencyLevel  string  `json:"urgencyLevel"`
	Confidence    float64 `json:"confidence"`
}

// NeedsReview reports whether the extraction is too uncertain to act on
// without a human looking at it.
func (r Record) NeedsReview() bool {
	return r.Intent == IntentUnknown || r.Confidence < LowConfidenceThreshold
}

// validate rejects records whose enum fields fall outside the schema. A
// model answer that drifts off-schema is a parse failure, not a usable
// record.
func (r Record) validate() error {
	switch r.Intent {
	case IntentSchedule, IntentReschedule, IntentCancel, IntentUnknown:
	default:
		return fmt.Errorf("%w: intent %q outside schema", llm.ErrParseFailure, r.Intent)
	}
	switch r.UrgencyLevel {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		return fmt.Errorf("%w: urgencyLevel %q outside schema", llm.ErrParseFailure, r.UrgencyLevel)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", llm.ErrParseFailure, r.Confidence)
	}
	return nil
}
