package leads

import (
	"time"

	"github.com/google/uuid"
)

// Lead stages relevant to appointment flows.
const (
	StageNew            = "new"
	StageContacted      = "contacted"
	StageVisitScheduled = "visit_scheduled"
	StageNegotiating    = "negotiating"
	StageClosed         = "closed"
)

// Lead is a prospective buyer tracked in the CRM.
type Lead struct {
	ID         uuid.UUID
	Name       string
	Phone      string
	Email      string
	Stage      string
	Property   string
	AssignedTo uuid.UUID
	Notes      []byte // raw JSONB document
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PendingReschedule is stored inside the lead's notes document after a visit
// moves, until the lead has been told. It carries everything the downstream
// notifier needs to compose the message without re-reading the appointment.
type PendingReschedule struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	VendorID      uuid.UUID `json:"vendor_id"`
	RequestedBy   string    `json:"requested_by"`
	NewDate       string    `json:"new_date"` // 2006-01-02
	NewTime       string    `json:"new_time"` // 15:04:05
	RequestedAt   time.Time `json:"requested_at"`
}
