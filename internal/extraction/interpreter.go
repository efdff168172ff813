package extraction

import (
	"context"
	"fmt"

	"github.com/wolfman30/clinic-intake-agent/internal/llm"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

const extractionSystemPrompt = `You are an AI assistant that extracts scheduling information from patient messages.
You DO NOT provide medical advice. You only handle appointment scheduling.

Return ONLY valid JSON (no markdown) matching this schema:

{
  "intent": "schedule | reschedule | cancel | unknown",
  "preferredDate": "YYYY-MM-DD or null",
  "preferredTime": "HH:MM or null",
  "reason": "string",
  "urgencyLevel": "low | medium | high",
  "confidence": number
}

Rules:
- "intent" is about appointments with %s, not medical questions.
- If no clear date/time, use null.
- "urgencyLevel" is based on language: e.g. "as soon as possible", "urgent", "today" -> high; non-urgent -> low.
- If very unsure, set "intent" to "unknown" and "confidence" < 0.5.
- DO NOT include any additional fields or comments.
- Never give medical advice or interpretation.`

// Interpreter turns raw transcript text into a structured extraction Record
// through a single call to the language model. It never retries and never
// persists anything; retry policy belongs to the caller.
type Interpreter struct {
	client     llm.Client
	doctorName string
	logger     *logging.Logger
}

// NewInterpreter creates an extraction interpreter.
func NewInterpreter(client llm.Client, doctorName string, logger *logging.Logger) *Interpreter {
	if doctorName == "" {
		doctorName = "Doctor"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Interpreter{client: client, doctorName: doctorName, logger: logger}
}

// Interpret extracts scheduling intent from a transcript. The phone number
// may be empty when the channel carries none. A model answer that is not a
// single well-formed extraction object fails with llm.ErrParseFailure.
func (i *Interpreter) Interpret(ctx context.Context, transcript, phoneNumber string) (Record, error) {
	phone := phoneNumber
	if phone == "" {
		phone = "unknown"
	}
	userPrompt := fmt.Sprintf("Patient phone: %s\nTranscript: %q", phone, transcript)

	resp, err := i.client.Complete(ctx, llm.Request{
		System:      []string{fmt.Sprintf(extractionSystemPrompt, i.doctorName)},
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: userPrompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return Record{}, fmt.Errorf("extraction: interpret transcript: %w", err)
	}

	var rec Record
	if err := llm.DecodeJSON(resp.Text, &rec); err != nil {
		i.logger.Warn("extraction response unparseable", "error", err)
		return Record{}, err
	}
	if err := rec.validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
