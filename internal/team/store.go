package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrMemberNotFound is returned when no team member matches the lookup.
var ErrMemberNotFound = errors.New("team: member not found")

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads team members from Postgres.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("team: pgx pool required")
	}
	return &Store{pool: pool}
}

const memberColumns = `id, name, phone, COALESCE(email, ''), role,
	COALESCE(work_start, ''), COALESCE(work_end, ''), COALESCE(working_days, ''),
	COALESCE(saturday_end, ''), active, created_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Email, &m.Role,
		&m.WorkStart, &m.WorkEnd, &m.WorkingDays, &m.SaturdayEnd, &m.Active, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("team: scan member: %w", err)
	}
	return &m, nil
}

// FindByPhone resolves the sender of a WhatsApp command. Only active members
// can operate appointments.
func (s *Store) FindByPhone(ctx context.Context, phone string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE phone = $1 AND active`
	return scanMember(s.pool.QueryRow(ctx, query, phone))
}

// GetByID fetches a member regardless of active flag.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE id = $1`
	return scanMember(s.pool.QueryRow(ctx, query, id))
}
