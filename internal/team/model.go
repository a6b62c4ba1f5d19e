package team

import (
	"time"

	"github.com/google/uuid"

	"github.com/vivenda/crm-platform/internal/schedule"
)

// Member is a sales vendor who manages leads over WhatsApp. Work hour columns
// come from the CRM as free-form strings and may be empty.
type Member struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	Email       string
	Role        string
	WorkStart   string
	WorkEnd     string
	WorkingDays string
	SaturdayEnd string
	Active      bool
	CreatedAt   time.Time
}

// Hours resolves the member's CRM columns into a work schedule. Hour fields
// stay zero when the column is empty so callers can layer their own defaults
// before validation.
func (m *Member) Hours() schedule.WorkHours {
	return schedule.WorkHours{
		StartHour:       schedule.ParseCRMHour(m.WorkStart, 0),
		EndHour:         schedule.ParseCRMHour(m.WorkEnd, 0),
		SaturdayEndHour: schedule.ParseCRMHour(m.SaturdayEnd, 0),
		WorkingDays:     schedule.ParseCRMDays(m.WorkingDays),
	}
}
