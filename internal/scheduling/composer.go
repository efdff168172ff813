package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
	"github.com/wolfman30/clinic-intake-agent/internal/llm"
)

const confirmationSystemPrompt = `You are an AI assistant confirming appointments for %s.
You only talk about scheduling, never give medical advice.

Return a short WhatsApp-friendly confirmation message.
No JSON, just plain text.
Avoid clinical language; focus on date, time, and location.`

// Composer drafts the plain-language confirmation for a finalized
// appointment. There is no local fallback message: an appointment's
// existence already implies commitment, so upstream failures propagate.
type Composer struct {
	client     llm.Client
	doctorName string
}

// NewComposer creates a confirmation composer.
func NewComposer(client llm.Client, doctorName string) *Composer {
	if doctorName == "" {
		doctorName = "Doctor"
	}
	return &Composer{client: client, doctorName: doctorName}
}

// Compose produces the confirmation message for a stored appointment.
func (c *Composer) Compose(ctx context.Context, appt appointments.Appointment) (string, error) {
	payload, err := json.MarshalIndent(appt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("scheduling: encode appointment: %w", err)
	}

	resp, err := c.client.Complete(ctx, llm.Request{
		System:      []string{fmt.Sprintf(confirmationSystemPrompt, c.doctorName)},
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: "Appointment details (JSON):\n" + string(payload)}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("scheduling: compose confirmation: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("scheduling: empty confirmation message")
	}
	return text, nil
}
