package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestRecorderRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	leadID := uuid.New()
	mock.ExpectExec("INSERT INTO lead_activities").
		WithArgs(pgxmock.AnyArg(), leadID, TypeAppointmentScheduled,
			"Cita agendada para el jueves", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := NewRecorder(mock, nil)
	rec.Record(context.Background(), leadID, TypeAppointmentScheduled,
		"Cita agendada para el jueves", map[string]any{"hora": "16:00"})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderSwallowsInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO lead_activities").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	rec := NewRecorder(mock, nil)
	// Must not panic or propagate.
	rec.Record(context.Background(), uuid.New(), TypeAppointmentCancelled, "Cita cancelada", nil)

	require.NoError(t, mock.ExpectationsWereMet())
}
