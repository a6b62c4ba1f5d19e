package scheduling

import (
	"time"

	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/internal/leads"
	"github.com/vivenda/crm-platform/internal/schedule"
)

// Kind tags the outcome of a scheduling command. Handlers switch on it to
// pick the reply template; only KindScheduled, KindRescheduled and
// KindCancelled mean state changed.
type Kind string

const (
	KindScheduled    Kind = "scheduled"
	KindRescheduled  Kind = "rescheduled"
	KindCancelled    Kind = "cancelled"
	KindAmbiguous    Kind = "ambiguous"
	KindNeedsHelp    Kind = "needs_help"
	KindNeedsSlot    Kind = "needs_slot"
	KindLeadNotFound Kind = "lead_not_found"
	KindNoActive     Kind = "no_active"
	KindOutsideHours Kind = "outside_hours"
	KindInvalidDate  Kind = "invalid_date"
	KindInvalidHour  Kind = "invalid_hour"
)

// Result is the structured outcome of Schedule, Reschedule or Cancel.
type Result struct {
	Kind Kind

	// Lead is set when exactly one lead matched.
	Lead *leads.Lead
	// Matches is set for KindAmbiguous, in presentation order.
	Matches []*leads.Lead
	// SearchedName is the fragment that matched nothing or several leads.
	SearchedName string

	// Appointment is the created, moved or cancelled visit.
	Appointment *appointments.Appointment
	// PriorDate and PriorTime hold the slot a cancelled visit occupied, and
	// the old slot on a reschedule.
	PriorDate time.Time
	PriorTime schedule.ClockTime

	// Date and Clock are the requested slot, parked for selection replays.
	Date  time.Time
	Clock schedule.ClockTime

	// DayToken echoes the unparseable date text for KindInvalidDate.
	DayToken string

	// Check explains a KindOutsideHours rejection. On a reschedule the slot
	// is honored anyway and Warning carries the same text.
	Check   schedule.SlotCheck
	Warning *schedule.SlotCheck
}
