package team

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberRows(id uuid.UUID) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "phone", "email", "role",
		"work_start", "work_end", "working_days", "saturday_end", "active", "created_at",
	}).AddRow(id, "Laura Méndez", "+5218111222333", "laura@vivenda.mx", "vendor",
		"10", "17:00", "1,2,3,4,5,6", "13", true, time.Now())
}

func TestStoreFindByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM team_members WHERE phone").
		WithArgs("+5218111222333").
		WillReturnRows(memberRows(id))

	store := NewStore(mock)
	m, err := store.FindByPhone(context.Background(), "+5218111222333")
	require.NoError(t, err)
	assert.Equal(t, id, m.ID)
	assert.Equal(t, "Laura Méndez", m.Name)

	hours := m.Hours()
	assert.Equal(t, 10, hours.StartHour)
	assert.Equal(t, 17, hours.EndHour)
	assert.Equal(t, 13, hours.SaturdayEndHour)
	assert.Len(t, hours.WorkingDays, 6)
}

func TestStoreFindByPhoneNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM team_members WHERE phone").
		WithArgs("+5210000000000").
		WillReturnError(pgx.ErrNoRows)

	store := NewStore(mock)
	_, err = store.FindByPhone(context.Background(), "+5210000000000")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberHoursLeaveBlanksZero(t *testing.T) {
	m := &Member{}
	hours := m.Hours()
	assert.Zero(t, hours.StartHour)
	assert.Zero(t, hours.EndHour)
	assert.Zero(t, hours.SaturdayEndHour)
	assert.Len(t, hours.WorkingDays, 6)
}
