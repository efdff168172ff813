package scheduling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wolfman30/clinic-intake-agent/internal/extraction"
	"github.com/wolfman30/clinic-intake-agent/internal/llm"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// NoSlotsMessage is the fixed reply used when the calendar offered nothing.
// It is a local policy decision so the answer stays deterministic and
// available even when the language model is unreachable.
const NoSlotsMessage = "I'm sorry, I couldn't find any available appointment slots that match your preferences. Could you suggest alternative dates or times?"

const proposalSystemPrompt = `You are an AI assistant helping schedule appointments for %s.
You receive:
- the extracted patient intent as JSON,
- a list of candidate appointment slots from the clinic system.

Your tasks:
1) Choose 1 or 2 of the best slots based on the patient's preferences and urgency.
2) Generate a friendly, professional message for WhatsApp to propose these slots.
3) DO NOT provide medical advice. Only scheduling.

Return ONLY valid JSON matching this schema:

{
  "proposedSlots": [
    {
      "start": "ISO 8601 datetime string in patient's timezone",
      "end": "ISO 8601 datetime string in patient's timezone"
    }
  ],
  "messageText": "string"
}

Guidelines:
- If urgency is high and there is a near-term slot, prioritize the earliest.
- Respect any date/time preferences if possible.
- If no slots match exactly, choose the closest alternatives and explain briefly.
- Office hours are %s to %s; each appointment is %d minutes.
- Tone: warm, concise, scheduling-only.`

// ProposerConfig carries the clinic context embedded in the selection prompt.
type ProposerConfig struct {
	DoctorName       string
	OfficeHoursStart string
	OfficeHoursEnd   string
	SlotMinutes      int
}

// Proposer selects 1-2 candidate slots and drafts the message proposing
// them, delegating the ranking to the language model.
type Proposer struct {
	client llm.Client
	cfg    ProposerConfig
	logger *logging.Logger
}

// NewProposer creates a slot proposer.
func NewProposer(client llm.Client, cfg ProposerConfig, logger *logging.Logger) *Proposer {
	if cfg.DoctorName == "" {
		cfg.DoctorName = "Doctor"
	}
	if cfg.OfficeHoursStart == "" {
		cfg.OfficeHoursStart = "09:00"
	}
	if cfg.OfficeHoursEnd == "" {
		cfg.OfficeHoursEnd = "17:00"
	}
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = 30
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Proposer{client: client, cfg: cfg, logger: logger}
}

// Propose ranks candidateSlots against the extraction and returns the
// proposal. An empty candidate list short-circuits locally with the fixed
// apology and no upstream call. A model answer that is not a well-formed
// proposal fails with llm.ErrParseFailure; there is no local fallback in
// that path.
func (p *Proposer) Propose(ctx context.Context, rec extraction.Record, candidateSlots []Slot, timezone string) (Proposal, error) {
	if len(candidateSlots) == 0 {
		return Proposal{ProposedSlots: []Slot{}, MessageText: NoSlotsMessage}, nil
	}

	extractionJSON, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Proposal{}, fmt.Errorf("scheduling: encode extraction: %w", err)
	}
	slotsJSON, err := json.MarshalIndent(candidateSlots, "", "  ")
	if err != nil {
		return Proposal{}, fmt.Errorf("scheduling: encode candidate slots: %w", err)
	}

	userPrompt := fmt.Sprintf("Patient extraction JSON:\n%s\n\nCandidate slots (ISO 8601, timezone %s):\n%s",
		extractionJSON, timezone, slotsJSON)

	resp, err := p.client.Complete(ctx, llm.Request{
		System: []string{fmt.Sprintf(proposalSystemPrompt,
			p.cfg.DoctorName, p.cfg.OfficeHoursStart, p.cfg.OfficeHoursEnd, p.cfg.SlotMinutes)},
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: userPrompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return Proposal{}, fmt.Errorf("scheduling: propose slots: %w", err)
	}

	var proposal Proposal
	if err := llm.DecodeJSON(resp.Text, &proposal); err != nil {
		p.logger.Warn("proposal response unparseable", "error", err)
		return Proposal{}, err
	}
	if proposal.ProposedSlots == nil {
		proposal.ProposedSlots = []Slot{}
	}
	return proposal, nil
}
