package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
	"github.com/wolfman30/clinic-intake-agent/internal/extraction"
	"github.com/wolfman30/clinic-intake-agent/internal/observability/metrics"
	"github.com/wolfman30/clinic-intake-agent/internal/scheduling"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// ErrValidation marks a request rejected at the boundary for a missing or
// malformed field. It is surfaced to the caller immediately, never retried
// and never logged as a system fault.
var ErrValidation = errors.New("intake: invalid input")

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// InterpretResult pairs an extraction with the appointment skeleton derived
// from it. The draft is not persisted until the patient commits to a slot.
type InterpretResult struct {
	Extraction extraction.Record        `json:"extraction"`
	Draft      appointments.Appointment `json:"baseAppointment"`
}

// ProposeSlotsInput carries a propose-slots request. CandidateSlots must be
// present (a decoded empty list is valid and short-circuits locally; an
// absent field is a validation error).
type ProposeSlotsInput struct {
	Extraction     *extraction.Record `json:"extraction"`
	CandidateSlots []scheduling.Slot  `json:"candidateSlots"`
	Timezone       string             `json:"timezone"`
}

// FinalizeInput carries a finalize-appointment request.
type FinalizeInput struct {
	Draft           *appointments.Appointment `json:"baseAppointment"`
	ChosenSlot      *scheduling.Slot          `json:"chosenSlot"`
	ExternalEventID *string                   `json:"externalEventId"`
}

// FinalizeResult is a stored appointment plus its confirmation message.
type FinalizeResult struct {
	Appointment  appointments.Appointment `json:"appointment"`
	Confirmation string                   `json:"confirmationMessage"`
}

// Service is the stateless pipeline orchestrator. Every operation is a
// straight-line composition of interpreter, proposer, composer and store;
// all state lives in the store.
type Service struct {
	interpreter     *extraction.Interpreter
	proposer        *scheduling.Proposer
	composer        *scheduling.Composer
	store           appointments.Store
	metrics         *metrics.IntakeMetrics
	logger          *logging.Logger
	defaultTimezone string
}

// NewService creates the orchestrator.
func NewService(
	interpreter *extraction.Interpreter,
	proposer *scheduling.Proposer,
	composer *scheduling.Composer,
	store appointments.Store,
	m *metrics.IntakeMetrics,
	logger *logging.Logger,
	defaultTimezone string,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &Service{
		interpreter:     interpreter,
		proposer:        proposer,
		composer:        composer,
		store:           store,
		metrics:         m,
		logger:          logger,
		defaultTimezone: defaultTimezone,
	}
}

// InterpretIntent extracts scheduling intent from a transcript and builds
// the draft appointment skeleton.
func (s *Service) InterpretIntent(ctx context.Context, transcript, phoneNumber string) (InterpretResult, error) {
	if strings.TrimSpace(transcript) == "" {
		return InterpretResult{}, validationError("transcript is required")
	}

	start := time.Now()
	rec, err := s.interpreter.Interpret(ctx, transcript, phoneNumber)
	s.observeLLM("interpret", start, err)
	if err != nil {
		return InterpretResult{}, err
	}

	var phone *string
	if phoneNumber != "" {
		phone = &phoneNumber
	}
	draft := extraction.BuildDraft(rec, transcript, phone, s.defaultTimezone)
	if rec.NeedsReview() {
		s.logger.Info("extraction flagged for review",
			"draft_id", draft.ID,
			"intent", rec.Intent,
			"confidence", rec.Confidence,
		)
	}
	return InterpretResult{Extraction: rec, Draft: draft}, nil
}

// ProposeSlots ranks candidate slots against an extraction and drafts the
// proposal message.
func (s *Service) ProposeSlots(ctx context.Context, in ProposeSlotsInput) (scheduling.Proposal, error) {
	if in.Extraction == nil {
		return scheduling.Proposal{}, validationError("extraction is required")
	}
	if in.CandidateSlots == nil {
		return scheduling.Proposal{}, validationError("candidateSlots is required")
	}
	timezone := in.Timezone
	if timezone == "" {
		timezone = s.defaultTimezone
	}

	// The empty-candidate path never reaches the model, so only count
	// calls that actually go upstream.
	if len(in.CandidateSlots) == 0 {
		return s.proposer.Propose(ctx, *in.Extraction, in.CandidateSlots, timezone)
	}

	start := time.Now()
	proposal, err := s.proposer.Propose(ctx, *in.Extraction, in.CandidateSlots, timezone)
	s.observeLLM("propose", start, err)
	return proposal, err
}

// Finalize commits a chosen slot: the draft becomes a confirmed, stored
// appointment and the confirmation message is composed. The appointment is
// persisted before composition; a composition failure propagates but does
// not roll the record back.
func (s *Service) Finalize(ctx context.Context, in FinalizeInput) (FinalizeResult, error) {
	if in.Draft == nil {
		return FinalizeResult{}, validationError("baseAppointment is required")
	}
	if in.ChosenSlot == nil || strings.TrimSpace(in.ChosenSlot.Start) == "" {
		return FinalizeResult{}, validationError("chosenSlot is required")
	}

	appt := *in.Draft
	if appt.ID == "" {
		return FinalizeResult{}, validationError("baseAppointment.id is required")
	}
	startISO := in.ChosenSlot.Start
	appt.AppointmentDateTime = &startISO
	appt.Status = appointments.StatusConfirmed
	appt.ExternalEventID = in.ExternalEventID
	appt.UpdatedAt = time.Now().UTC()

	stored, err := s.store.Append(ctx, appt)
	if err != nil {
		return FinalizeResult{}, err
	}
	s.metrics.ObserveAppointmentCreated()

	start := time.Now()
	confirmation, err := s.composer.Compose(ctx, stored)
	s.observeLLM("compose", start, err)
	if err != nil {
		return FinalizeResult{}, err
	}

	return FinalizeResult{Appointment: stored, Confirmation: confirmation}, nil
}

// UpdateStatus merges partial fields into a stored appointment.
// appointments.ErrNotFound passes through untouched.
func (s *Service) UpdateStatus(ctx context.Context, id string, fields map[string]any) (appointments.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return appointments.Appointment{}, validationError("appointment id is required")
	}
	return s.store.Update(ctx, id, fields)
}

// List returns the full persisted collection in creation order.
func (s *Service) List(ctx context.Context) []appointments.Appointment {
	return s.store.ListAll(ctx)
}

// FindByPhoneAndDate looks up an appointment by its patient channel and
// scheduled date.
func (s *Service) FindByPhoneAndDate(ctx context.Context, phoneNumber, dateISO string) (appointments.Appointment, bool) {
	return s.store.FindByPhoneAndDate(ctx, phoneNumber, dateISO)
}

func (s *Service) observeLLM(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveLLMCall(operation, status, time.Since(start).Seconds())
}
