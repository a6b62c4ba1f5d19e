package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/vivenda/crm-platform/internal/schedule"
)

// Appointment statuses. Cancellation is a status change, never a row delete.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Appointment is a property visit booked for a lead.
type Appointment struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	VendorID        uuid.UUID
	LeadName        string
	Property        string
	Date            time.Time // civil date, midnight in the branch timezone
	Time            schedule.ClockTime
	Status          string
	CalendarEventID string
	Notes           string
	CancelledAt     *time.Time
	CancelledBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Active reports whether the visit still occupies the lead's calendar.
func (a *Appointment) Active() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// StartsAt combines date and time in loc, for calendar event payloads.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return time.Date(a.Date.Year(), a.Date.Month(), a.Date.Day(),
		a.Time.Hour, a.Time.Minute, 0, 0, loc)
}
