package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound reports that no appointment exists for the given id. It is a
// distinct outcome, not a processing failure.
var ErrNotFound = errors.New("appointments: not found")

// Store is the persistence contract for the appointment collection.
//
// ListAll deliberately has no error return: a corrupt or unreadable backing
// store degrades to an empty collection so the read path stays available.
// This is an availability-over-correctness choice inherited from the flat
// file design; do not "fix" it by surfacing read errors to callers.
//
// Append does not generate or deduplicate ids; identifiers are assigned by
// the caller at construction time.
type Store interface {
	ListAll(ctx context.Context) []Appointment
	Append(ctx context.Context, appt Appointment) (Appointment, error)
	Update(ctx context.Context, id string, fields map[string]any) (Appointment, error)
	FindByPhoneAndDate(ctx context.Context, phoneNumber, dateISO string) (Appointment, bool)
}

// applyUpdate shallow-merges fields into appt at the JSON level (provided
// keys overwrite, everything else is untouched) and stamps a fresh
// UpdatedAt. The id is immutable and cannot be overwritten.
func applyUpdate(appt Appointment, fields map[string]any) (Appointment, error) {
	raw, err := json.Marshal(appt)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: encode record: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Appointment{}, fmt.Errorf("appointments: decode record: %w", err)
	}

	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: encode merged record: %w", err)
	}

	var out Appointment
	if err := json.Unmarshal(merged, &out); err != nil {
		return Appointment{}, fmt.Errorf("appointments: update fields do not fit the record: %w", err)
	}

	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// matchesPhoneAndDate reports whether appt belongs to phoneNumber and is
// scheduled on the given ISO date (prefix match on the stored datetime).
func matchesPhoneAndDate(appt Appointment, phoneNumber, dateISO string) bool {
	if appt.PhoneNumber == nil || *appt.PhoneNumber != phoneNumber {
		return false
	}
	if appt.AppointmentDateTime == nil {
		return false
	}
	return len(*appt.AppointmentDateTime) >= len(dateISO) &&
		(*appt.AppointmentDateTime)[:len(dateISO)] == dateISO
}
