package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivenda/crm-platform/internal/schedule"
)

var apptCols = []string{"id", "lead_id", "vendor_id", "lead_name", "property",
	"appointment_date", "appointment_time", "status", "calendar_event_id",
	"notes", "cancelled_at", "cancelled_by", "created_at", "updated_at"}

func apptRow(id uuid.UUID, status, clock string) []any {
	now := time.Now()
	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	return []any{id, uuid.New(), uuid.New(), "Juan Pérez", "Monte Verde",
		date, clock, status, "", "", (*time.Time)(nil), "", now, now}
}

func TestStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	appt := &Appointment{
		LeadID:   uuid.New(),
		VendorID: uuid.New(),
		Property: "Monte Verde",
		Date:     time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		Time:     schedule.ClockTime{Hour: 16},
	}

	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), appt.LeadID, appt.VendorID, "Monte Verde",
			appt.Date, "16:00:00", StatusScheduled, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	store := NewStore(mock)
	require.NoError(t, store.Insert(context.Background(), appt))
	assert.NotEqual(t, uuid.Nil, appt.ID)
	assert.Equal(t, StatusScheduled, appt.Status)
}

func TestStoreFindActiveForLead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	leadID := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM appointments").
		WithArgs(leadID).
		WillReturnRows(pgxmock.NewRows(apptCols).AddRow(apptRow(id, StatusScheduled, "16:00:00")...))

	store := NewStore(mock)
	got, err := store.FindActiveForLead(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 16, got.Time.Hour)
	assert.True(t, got.Active())
}

func TestStoreFindActiveForLeadNone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM appointments").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	store := NewStore(mock)
	_, err = store.FindActiveForLead(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestStoreListForVendorOnDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	vendorID := uuid.New()
	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(apptCols).
		AddRow(apptRow(uuid.New(), StatusScheduled, "10:00:00")...).
		AddRow(apptRow(uuid.New(), StatusConfirmed, "16:30:00")...)

	mock.ExpectQuery("SELECT .+ FROM appointments").
		WithArgs(vendorID, date).
		WillReturnRows(rows)

	store := NewStore(mock)
	got, err := store.ListForVendorOnDate(context.Background(), vendorID, date)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, schedule.ClockTime{Hour: 16, Minute: 30}, got[1].Time)
}

func TestStoreUpdateSchedule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	date := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, date, "11:00:00").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	err = store.UpdateSchedule(context.Background(), id, date, schedule.ClockTime{Hour: 11})
	require.NoError(t, err)
}

func TestStoreCancel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	at := time.Now()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, "Laura Méndez", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	require.NoError(t, store.Cancel(context.Background(), id, "Laura Méndez", at))
}

func TestStoreCancelAlreadyCancelled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments").
		WithArgs(id, "Laura", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	err = store.Cancel(context.Background(), id, "Laura", time.Now())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestParseClockText(t *testing.T) {
	ct, err := parseClockText("16:30:00")
	require.NoError(t, err)
	assert.Equal(t, schedule.ClockTime{Hour: 16, Minute: 30}, ct)

	_, err = parseClockText("mediodía")
	assert.Error(t, err)
}

func TestStartsAt(t *testing.T) {
	loc := schedule.Location(schedule.DefaultTimezone)
	a := &Appointment{
		Date: time.Date(2026, time.January, 15, 0, 0, 0, 0, loc),
		Time: schedule.ClockTime{Hour: 16, Minute: 30},
	}
	at := a.StartsAt(loc)
	assert.Equal(t, 16, at.Hour())
	assert.Equal(t, 30, at.Minute())
	assert.Equal(t, loc, at.Location())
}
