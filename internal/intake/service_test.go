package intake

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
	"github.com/wolfman30/clinic-intake-agent/internal/extraction"
	"github.com/wolfman30/clinic-intake-agent/internal/llm"
	"github.com/wolfman30/clinic-intake-agent/internal/scheduling"
)

// scriptedLLM replays canned responses in call order.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	if s.err != nil {
		return llm.Response{}, s.err
	}
	if s.calls >= len(s.responses) {
		return llm.Response{}, errors.New("scripted llm exhausted")
	}
	text := s.responses[s.calls]
	s.calls++
	return llm.Response{Text: text}, nil
}

func newTestService(t *testing.T, client llm.Client) *Service {
	t.Helper()
	store := appointments.NewFileStore(filepath.Join(t.TempDir(), "appointments.json"), nil)
	return NewService(
		extraction.NewInterpreter(client, "Dr. Weber", nil),
		scheduling.NewProposer(client, scheduling.ProposerConfig{DoctorName: "Dr. Weber"}, nil),
		scheduling.NewComposer(client, "Dr. Weber"),
		store,
		nil,
		nil,
		"Europe/Berlin",
	)
}

func TestInterpretIntentRequiresTranscript(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{})

	_, err := svc.InterpretIntent(context.Background(), "   ", "+491234")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInterpretIntentBuildsDraft(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		`{"intent":"schedule","preferredDate":"2026-09-02","preferredTime":null,"reason":"back pain","urgencyLevel":"high","confidence":0.9}`,
	}}
	svc := newTestService(t, stub)

	result, err := svc.InterpretIntent(context.Background(), "I need to see the doctor tomorrow", "+491234")
	require.NoError(t, err)

	assert.Equal(t, extraction.IntentSchedule, result.Extraction.Intent)
	assert.Equal(t, appointments.StatusPending, result.Draft.Status)
	assert.Equal(t, "Europe/Berlin", result.Draft.Timezone)
	require.NotNil(t, result.Draft.PhoneNumber)
	assert.Equal(t, "+491234", *result.Draft.PhoneNumber)

	// Nothing is persisted at interpret time.
	assert.Empty(t, svc.List(context.Background()))
}

func TestProposeSlotsValidation(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{})
	rec := &extraction.Record{Intent: extraction.IntentSchedule, UrgencyLevel: extraction.UrgencyLow, Confidence: 0.9}

	_, err := svc.ProposeSlots(context.Background(), ProposeSlotsInput{CandidateSlots: []scheduling.Slot{}})
	assert.ErrorIs(t, err, ErrValidation, "missing extraction")

	_, err = svc.ProposeSlots(context.Background(), ProposeSlotsInput{Extraction: rec})
	assert.ErrorIs(t, err, ErrValidation, "missing candidateSlots")
}

func TestProposeSlotsEmptyListIsDeterministic(t *testing.T) {
	// An upstream that always fails proves the empty path never calls it.
	svc := newTestService(t, &scriptedLLM{err: errors.New("unreachable")})
	rec := &extraction.Record{Intent: extraction.IntentSchedule, UrgencyLevel: extraction.UrgencyHigh, Confidence: 0.9}

	proposal, err := svc.ProposeSlots(context.Background(), ProposeSlotsInput{
		Extraction:     rec,
		CandidateSlots: []scheduling.Slot{},
	})
	require.NoError(t, err)
	assert.Empty(t, proposal.ProposedSlots)
	assert.Equal(t, scheduling.NoSlotsMessage, proposal.MessageText)
}

func TestFinalizeValidation(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{})
	draft := extraction.BuildDraft(
		extraction.Record{Intent: extraction.IntentSchedule, UrgencyLevel: extraction.UrgencyLow, Confidence: 0.9},
		"t", nil, "UTC")

	_, err := svc.Finalize(context.Background(), FinalizeInput{ChosenSlot: &scheduling.Slot{Start: "x"}})
	assert.ErrorIs(t, err, ErrValidation, "missing draft")

	_, err = svc.Finalize(context.Background(), FinalizeInput{Draft: &draft})
	assert.ErrorIs(t, err, ErrValidation, "missing chosen slot")
}

func TestUpdateStatusPassesThroughNotFound(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{})

	_, err := svc.UpdateStatus(context.Background(), "missing-id", map[string]any{"status": "cancelled"})
	assert.ErrorIs(t, err, appointments.ErrNotFound)
}

func TestUpdateStatusRequiresID(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{})

	_, err := svc.UpdateStatus(context.Background(), "", map[string]any{"status": "cancelled"})
	assert.ErrorIs(t, err, ErrValidation)
}

// Full pipeline: urgent transcript, two candidate windows, finalize the
// near-term one.
func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	morningStart := tomorrow + "T09:00:00+02:00"
	morningEnd := tomorrow + "T09:30:00+02:00"

	stub := &scriptedLLM{responses: []string{
		fmt.Sprintf(`{"intent":"schedule","preferredDate":"%s","preferredTime":null,"reason":"urgent checkup","urgencyLevel":"high","confidence":0.9}`, tomorrow),
		fmt.Sprintf(`{"proposedSlots":[{"start":"%s","end":"%s"}],"messageText":"We can see you tomorrow at 9:00."}`, morningStart, morningEnd),
		"You're confirmed for tomorrow at 9:00. See you then!",
	}}
	svc := newTestService(t, stub)

	interpreted, err := svc.InterpretIntent(ctx, "I need to see the doctor tomorrow, it's urgent", "+4915112345678")
	require.NoError(t, err)
	assert.Equal(t, extraction.UrgencyHigh, interpreted.Extraction.UrgencyLevel)

	nextWeek := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	candidates := []scheduling.Slot{
		{Start: morningStart, End: morningEnd},
		{Start: nextWeek + "T14:00:00+02:00", End: nextWeek + "T14:30:00+02:00"},
	}
	proposal, err := svc.ProposeSlots(ctx, ProposeSlotsInput{
		Extraction:     &interpreted.Extraction,
		CandidateSlots: candidates,
	})
	require.NoError(t, err)
	require.Len(t, proposal.ProposedSlots, 1)
	assert.Equal(t, morningStart, proposal.ProposedSlots[0].Start)

	eventID := "gcal-evt-42"
	result, err := svc.Finalize(ctx, FinalizeInput{
		Draft:           &interpreted.Draft,
		ChosenSlot:      &proposal.ProposedSlots[0],
		ExternalEventID: &eventID,
	})
	require.NoError(t, err)

	assert.Equal(t, appointments.StatusConfirmed, result.Appointment.Status)
	require.NotNil(t, result.Appointment.AppointmentDateTime)
	assert.Equal(t, morningStart, *result.Appointment.AppointmentDateTime)
	require.NotNil(t, result.Appointment.ExternalEventID)
	assert.Equal(t, eventID, *result.Appointment.ExternalEventID)
	assert.NotEmpty(t, result.Confirmation)

	stored := svc.List(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, interpreted.Draft.ID, stored[0].ID)
	assert.Equal(t, appointments.StatusConfirmed, stored[0].Status)

	found, ok := svc.FindByPhoneAndDate(ctx, "+4915112345678", tomorrow)
	require.True(t, ok)
	assert.Equal(t, stored[0].ID, found.ID)
}

func TestFinalizePersistsBeforeComposeFailure(t *testing.T) {
	// Interpret succeeds, composition fails: the appointment must still be
	// stored even though the caller sees an error.
	stub := &scriptedLLM{responses: []string{
		`{"intent":"schedule","preferredDate":null,"preferredTime":null,"reason":"","urgencyLevel":"medium","confidence":0.8}`,
		// compose call exhausts the script and errors
	}}
	svc := newTestService(t, stub)

	interpreted, err := svc.InterpretIntent(context.Background(), "need an appointment", "")
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), FinalizeInput{
		Draft:      &interpreted.Draft,
		ChosenSlot: &scheduling.Slot{Start: "2026-09-02T09:00:00+02:00", End: "2026-09-02T09:30:00+02:00"},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)

	stored := svc.List(context.Background())
	require.Len(t, stored, 1)
	assert.Equal(t, appointments.StatusConfirmed, stored[0].Status)
}
