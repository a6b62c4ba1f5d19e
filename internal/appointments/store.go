package appointments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vivenda/crm-platform/internal/schedule"
)

var ErrAppointmentNotFound = errors.New("appointments: appointment not found")

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists appointments in Postgres.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Store{pool: pool}
}

const apptColumns = `a.id, a.lead_id, a.vendor_id, COALESCE(l.name, ''),
	COALESCE(a.property, ''), a.appointment_date, a.appointment_time::text,
	a.status, COALESCE(a.calendar_event_id, ''), COALESCE(a.notes, ''),
	a.cancelled_at, COALESCE(a.cancelled_by, ''), a.created_at, a.updated_at`

const apptFrom = ` FROM appointments a JOIN leads l ON l.id = a.lead_id `

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var clock string
	err := row.Scan(&a.ID, &a.LeadID, &a.VendorID, &a.LeadName, &a.Property,
		&a.Date, &clock, &a.Status, &a.CalendarEventID, &a.Notes,
		&a.CancelledAt, &a.CancelledBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: scan: %w", err)
	}
	a.Time, err = parseClockText(clock)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// parseClockText reads the TIME column rendered as "15:04:05".
func parseClockText(s string) (schedule.ClockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return schedule.ClockTime{}, fmt.Errorf("appointments: bad time column %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return schedule.ClockTime{}, fmt.Errorf("appointments: bad time column %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return schedule.ClockTime{}, fmt.Errorf("appointments: bad time column %q", s)
	}
	return schedule.ClockTime{Hour: h, Minute: m}, nil
}

// Insert writes a new scheduled appointment and fills in its id.
func (s *Store) Insert(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	query := `
		INSERT INTO appointments (id, lead_id, vendor_id, property, appointment_date, appointment_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6::time, $7, $8)
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		a.ID, a.LeadID, a.VendorID, a.Property,
		a.Date, a.Time.String(), a.Status, a.Notes,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// FindActiveForLead returns the lead's next active visit, earliest first.
func (s *Store) FindActiveForLead(ctx context.Context, leadID uuid.UUID) (*Appointment, error) {
	query := `SELECT ` + apptColumns + apptFrom + `
		WHERE a.lead_id = $1 AND a.status IN ('scheduled', 'confirmed')
		ORDER BY a.appointment_date, a.appointment_time
		LIMIT 1`
	return scanAppointment(s.pool.QueryRow(ctx, query, leadID))
}

// ListActiveForLead returns every active visit for the lead, earliest first.
func (s *Store) ListActiveForLead(ctx context.Context, leadID uuid.UUID) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + apptFrom + `
		WHERE a.lead_id = $1 AND a.status IN ('scheduled', 'confirmed')
		ORDER BY a.appointment_date, a.appointment_time`
	return s.list(ctx, query, leadID)
}

// ListForVendorOnDate backs the "citas" command: the vendor's visits on one
// calendar day, cancelled ones excluded.
func (s *Store) ListForVendorOnDate(ctx context.Context, vendorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	query := `SELECT ` + apptColumns + apptFrom + `
		WHERE a.vendor_id = $1 AND a.appointment_date = $2
			AND a.status IN ('scheduled', 'confirmed')
		ORDER BY a.appointment_time`
	return s.list(ctx, query, vendorID, date)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Appointment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: query: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: query: %w", err)
	}
	return out, nil
}

// UpdateSchedule moves an appointment to a new slot. The status resets to
// scheduled and any prior cancellation marks are cleared, so rescheduling a
// confirmed or mistakenly cancelled visit revives it.
func (s *Store) UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, clock schedule.ClockTime) error {
	query := `
		UPDATE appointments
		SET appointment_date = $2, appointment_time = $3::time,
			status = 'scheduled', cancelled_at = NULL, cancelled_by = NULL,
			updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, id, date, clock.String())
	if err != nil {
		return fmt.Errorf("appointments: update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Cancel soft-deletes the appointment, recording who asked and when.
func (s *Store) Cancel(ctx context.Context, id uuid.UUID, by string, at time.Time) error {
	query := `
		UPDATE appointments
		SET status = 'cancelled', cancelled_at = $3, cancelled_by = $2, updated_at = now()
		WHERE id = $1 AND status IN ('scheduled', 'confirmed')
	`
	tag, err := s.pool.Exec(ctx, query, id, by, at)
	if err != nil {
		return fmt.Errorf("appointments: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// SetCalendarEventID records the Google Calendar event backing the visit.
func (s *Store) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE appointments SET calendar_event_id = $2, updated_at = now() WHERE id = $1`,
		id, eventID)
	if err != nil {
		return fmt.Errorf("appointments: set calendar event: %w", err)
	}
	return nil
}
