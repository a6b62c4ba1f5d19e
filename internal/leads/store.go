package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrLeadNotFound = errors.New("leads: lead not found")

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists leads in Postgres.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &Store{pool: pool}
}

const leadColumns = `id, name, COALESCE(phone, ''), COALESCE(email, ''), stage,
	COALESCE(property, ''), assigned_to, COALESCE(notes, '{}'::jsonb), created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Stage,
		&l.Property, &l.AssignedTo, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: scan lead: %w", err)
	}
	return &l, nil
}

// GetByID fetches a single lead.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return scanLead(s.pool.QueryRow(ctx, query, id))
}

// FindByNameFragment returns the vendor's leads whose name contains the
// fragment, case-insensitive, most recently updated first. Commands name
// leads loosely ("juan" for "Juan Pérez"), so multiple matches are expected
// and the caller disambiguates.
func (s *Store) FindByNameFragment(ctx context.Context, vendorID uuid.UUID, fragment string) ([]*Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE assigned_to = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY updated_at DESC
		LIMIT 10
	`
	rows, err := s.pool.Query(ctx, query, vendorID, fragment)
	if err != nil {
		return nil, fmt.Errorf("leads: search by name: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: search by name: %w", err)
	}
	return out, nil
}

// UpdateStage moves the lead through the pipeline.
func (s *Store) UpdateStage(ctx context.Context, id uuid.UUID, stage string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET stage = $2, updated_at = now() WHERE id = $1`, id, stage)
	if err != nil {
		return fmt.Errorf("leads: update stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// SetPendingReschedule merges a pending-reschedule marker into the lead's
// notes document without touching other note keys.
func (s *Store) SetPendingReschedule(ctx context.Context, id uuid.UUID, marker PendingReschedule) error {
	doc, err := json.Marshal(map[string]PendingReschedule{"pending_reagendar": marker})
	if err != nil {
		return fmt.Errorf("leads: marshal pending marker: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET notes = COALESCE(notes, '{}'::jsonb) || $2::jsonb, updated_at = now() WHERE id = $1`,
		id, doc)
	if err != nil {
		return fmt.Errorf("leads: set pending reschedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// ClearPendingReschedule drops the marker once the visit is rebooked or
// cancelled.
func (s *Store) ClearPendingReschedule(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE leads SET notes = COALESCE(notes, '{}'::jsonb) - 'pending_reagendar', updated_at = now() WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("leads: clear pending reschedule: %w", err)
	}
	return nil
}

// PendingRescheduleOf decodes the marker from a lead's notes, if present.
func PendingRescheduleOf(l *Lead) (PendingReschedule, bool) {
	if len(l.Notes) == 0 {
		return PendingReschedule{}, false
	}
	var doc struct {
		Pending *PendingReschedule `json:"pending_reagendar"`
	}
	if err := json.Unmarshal(l.Notes, &doc); err != nil || doc.Pending == nil {
		return PendingReschedule{}, false
	}
	return *doc.Pending, true
}
