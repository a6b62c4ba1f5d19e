package leads

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadRow(id uuid.UUID, name string, vendorID uuid.UUID, notes string) []any {
	now := time.Now()
	return []any{id, name, "+5218122334455", "", StageContacted,
		"Monte Verde", vendorID, []byte(notes), now, now}
}

var leadCols = []string{"id", "name", "phone", "email", "stage",
	"property", "assigned_to", "notes", "created_at", "updated_at"}

func TestStoreFindByNameFragment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	vendorID := uuid.New()
	rows := pgxmock.NewRows(leadCols).
		AddRow(leadRow(uuid.New(), "Juan Pérez", vendorID, "{}")...).
		AddRow(leadRow(uuid.New(), "Juana García", vendorID, "{}")...)

	mock.ExpectQuery("SELECT .+ FROM leads").
		WithArgs(vendorID, "juan").
		WillReturnRows(rows)

	store := NewStore(mock)
	got, err := store.FindByNameFragment(context.Background(), vendorID, "juan")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Juan Pérez", got[0].Name)
}

func TestStoreFindByNameFragmentEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM leads").
		WithArgs(pgxmock.AnyArg(), "nadie").
		WillReturnRows(pgxmock.NewRows(leadCols))

	store := NewStore(mock)
	got, err := store.FindByNameFragment(context.Background(), uuid.New(), "nadie")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreUpdateStage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE leads SET stage").
		WithArgs(id, StageVisitScheduled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	require.NoError(t, store.UpdateStage(context.Background(), id, StageVisitScheduled))
}

func TestStoreUpdateStageMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE leads SET stage").
		WithArgs(id, StageClosed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	assert.ErrorIs(t, store.UpdateStage(context.Background(), id, StageClosed), ErrLeadNotFound)
}

func TestStoreSetPendingReschedule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE leads SET notes").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	err = store.SetPendingReschedule(context.Background(), id, PendingReschedule{
		AppointmentID: uuid.New(),
		VendorID:      uuid.New(),
		RequestedBy:   "Laura",
		NewDate:       "2026-01-19",
		NewTime:       "10:00:00",
		RequestedAt:   time.Now(),
	})
	require.NoError(t, err)
}

func TestPendingRescheduleOf(t *testing.T) {
	apptID := uuid.New()
	vendorID := uuid.New()
	lead := &Lead{Notes: []byte(`{"pending_reagendar":{"appointment_id":"` + apptID.String() +
		`","vendor_id":"` + vendorID.String() +
		`","requested_by":"Laura","new_date":"2026-01-19","new_time":"10:00:00","requested_at":"2026-01-14T10:00:00Z"}}`)}

	marker, ok := PendingRescheduleOf(lead)
	require.True(t, ok)
	assert.Equal(t, apptID, marker.AppointmentID)
	assert.Equal(t, vendorID, marker.VendorID)
	assert.Equal(t, "Laura", marker.RequestedBy)
	assert.Equal(t, "2026-01-19", marker.NewDate)
	assert.Equal(t, "10:00:00", marker.NewTime)

	_, ok = PendingRescheduleOf(&Lead{Notes: []byte(`{"otro":"dato"}`)})
	assert.False(t, ok)

	_, ok = PendingRescheduleOf(&Lead{})
	assert.False(t, ok)
}
