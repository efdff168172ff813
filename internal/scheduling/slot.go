package scheduling

// Slot is a candidate time window offered by the external calendar, carried
// as ISO 8601 datetime strings in the patient's timezone.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Proposal is a ranked subset of candidate slots plus the patient-facing
// message that offers them.
type Proposal struct {
	ProposedSlots []Slot `json:"proposedSlots"`
	MessageText   string `json:"messageText"`
}
