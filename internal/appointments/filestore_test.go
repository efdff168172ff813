package appointments

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testAppointment() Appointment {
	created := time.Now().UTC().Add(-time.Minute)
	return Appointment{
		ID:           uuid.NewString(),
		PhoneNumber:  strPtr("+4915112345678"),
		Reason:       "back pain",
		Intent:       "schedule",
		Timezone:     "Europe/Berlin",
		UrgencyLevel: "medium",
		Status:       StatusPending,
		Source:       SourceWhatsApp,
		CreatedAt:    created,
		UpdatedAt:    created,
		Meta:         map[string]string{},
	}
}

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appointments.json")
	return NewFileStore(path, nil), path
}

func TestFileStoreAppendRoundTrip(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	appt := testAppointment()
	stored, err := store.Append(ctx, appt)
	require.NoError(t, err)
	assert.Equal(t, appt, stored, "append must not touch the record")

	listed := store.ListAll(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, appt.ID, listed[0].ID)
	assert.Equal(t, appt.Reason, listed[0].Reason)
	assert.Equal(t, appt.Status, listed[0].Status)
	assert.WithinDuration(t, appt.CreatedAt, listed[0].CreatedAt, time.Second)
}

func TestFileStoreListAllPreservesCreationOrder(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	first := testAppointment()
	second := testAppointment()
	_, err := store.Append(ctx, first)
	require.NoError(t, err)
	_, err = store.Append(ctx, second)
	require.NoError(t, err)

	listed := store.ListAll(ctx)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
}

func TestFileStoreListAllIsIdempotent(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, testAppointment())
	require.NoError(t, err)

	assert.Equal(t, store.ListAll(ctx), store.ListAll(ctx))
}

func TestFileStoreListAllOnMissingFile(t *testing.T) {
	store, _ := newTestFileStore(t)
	assert.Empty(t, store.ListAll(context.Background()))
}

func TestFileStoreListAllOnCorruptFile(t *testing.T) {
	store, path := newTestFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	assert.Empty(t, store.ListAll(context.Background()))
}

func TestFileStoreUpdateMergesShallowly(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	appt := testAppointment()
	appt.Reason = "x"
	_, err := store.Append(ctx, appt)
	require.NoError(t, err)

	updated, err := store.Update(ctx, appt.ID, map[string]any{"status": "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, "x", updated.Reason, "untouched fields must survive the merge")
	assert.True(t, updated.UpdatedAt.After(appt.UpdatedAt), "updatedAt must be strictly newer")

	listed := store.ListAll(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, StatusConfirmed, listed[0].Status)
}

func TestFileStoreUpdateCannotOverwriteID(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	appt := testAppointment()
	_, err := store.Append(ctx, appt)
	require.NoError(t, err)

	updated, err := store.Update(ctx, appt.ID, map[string]any{"id": "hijacked", "status": "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, appt.ID, updated.ID)
	assert.Equal(t, StatusCancelled, updated.Status)
}

func TestFileStoreUpdateNotFoundWritesNothing(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, testAppointment())
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = store.Update(ctx, "missing-id", map[string]any{"status": "cancelled"})
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a not-found update must leave the file byte-identical")
}

func TestFileStoreFindByPhoneAndDate(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()

	appt := testAppointment()
	appt.AppointmentDateTime = strPtr("2026-09-02T09:30:00+02:00")
	_, err := store.Append(ctx, appt)
	require.NoError(t, err)

	found, ok := store.FindByPhoneAndDate(ctx, "+4915112345678", "2026-09-02")
	require.True(t, ok)
	assert.Equal(t, appt.ID, found.ID)

	_, ok = store.FindByPhoneAndDate(ctx, "+4915112345678", "2026-09-03")
	assert.False(t, ok)
	_, ok = store.FindByPhoneAndDate(ctx, "+490000000", "2026-09-02")
	assert.False(t, ok)
}
