// Package scheduling implements the appointment lifecycle behind the
// vendor WhatsApp commands: agendar, reagendar and cancelar.
//
// Postgres is the ledger. Google Calendar and the activity timeline are
// projections: they are written after the database commit and their failures
// are logged and swallowed, never rolled back into the command outcome.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/internal/clock"
	"github.com/vivenda/crm-platform/internal/gcal"
	"github.com/vivenda/crm-platform/internal/leads"
	"github.com/vivenda/crm-platform/internal/observability/metrics"
	"github.com/vivenda/crm-platform/internal/schedule"
	"github.com/vivenda/crm-platform/internal/team"
	"github.com/vivenda/crm-platform/pkg/logging"
)

var tracer = otel.Tracer("crm.internal.scheduling")

// AutoCancelReason marks appointments displaced by a newer booking for the
// same lead.
const AutoCancelReason = "Reagendada automáticamente"

// EventTitle is the calendar summary convention. Reconciliation by title
// depends on it staying stable.
func EventTitle(leadName string) string {
	return "Cita: " + leadName
}

type LeadDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*leads.Lead, error)
	FindByNameFragment(ctx context.Context, vendorID uuid.UUID, fragment string) ([]*leads.Lead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage string) error
	SetPendingReschedule(ctx context.Context, id uuid.UUID, marker leads.PendingReschedule) error
	ClearPendingReschedule(ctx context.Context, id uuid.UUID) error
}

type AppointmentBook interface {
	Insert(ctx context.Context, a *appointments.Appointment) error
	FindActiveForLead(ctx context.Context, leadID uuid.UUID) (*appointments.Appointment, error)
	ListActiveForLead(ctx context.Context, leadID uuid.UUID) ([]*appointments.Appointment, error)
	ListForVendorOnDate(ctx context.Context, vendorID uuid.UUID, date time.Time) ([]*appointments.Appointment, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, clock schedule.ClockTime) error
	Cancel(ctx context.Context, id uuid.UUID, by string, at time.Time) error
	SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error
}

type ActivityLog interface {
	Record(ctx context.Context, leadID uuid.UUID, activityType, description string, detail map[string]any)
}

// Config wires the service's collaborators. Calendar and Activity may be nil;
// the flows degrade to database-only.
type Config struct {
	Leads    LeadDirectory
	Appts    AppointmentBook
	Calendar gcal.Events
	Activity ActivityLog
	Clock    clock.Clock
	Location *time.Location
	PMCutoff int
	// Defaults fills work-hour fields a team member left blank in the CRM.
	Defaults schedule.WorkHours
	Metrics  *metrics.SchedulingMetrics
	Logger   *logging.Logger
}

// Service runs the appointment lifecycle.
type Service struct {
	leads    LeadDirectory
	appts    AppointmentBook
	calendar gcal.Events
	activity ActivityLog
	clock    clock.Clock
	loc      *time.Location
	pmCutoff int
	defaults schedule.WorkHours
	metrics  *metrics.SchedulingMetrics
	logger   *logging.Logger
}

func NewService(cfg Config) *Service {
	if cfg.Leads == nil {
		panic("scheduling: lead directory required")
	}
	if cfg.Appts == nil {
		panic("scheduling: appointment book required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if cfg.Location == nil {
		cfg.Location = schedule.Location(schedule.DefaultTimezone)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		leads:    cfg.Leads,
		appts:    cfg.Appts,
		calendar: cfg.Calendar,
		activity: cfg.Activity,
		clock:    cfg.Clock,
		loc:      cfg.Location,
		pmCutoff: cfg.PMCutoff,
		defaults: cfg.Defaults,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// vendorHours layers the service defaults under the member's own CRM
// schedule. ValidateSlot still applies the package fallbacks for anything
// left at zero after the merge.
func (s *Service) vendorHours(vendor *team.Member) schedule.WorkHours {
	h := vendor.Hours()
	if h.StartHour == 0 {
		h.StartHour = s.defaults.StartHour
	}
	if h.EndHour == 0 {
		h.EndHour = s.defaults.EndHour
	}
	if h.SaturdayEndHour == 0 {
		h.SaturdayEndHour = s.defaults.SaturdayEndHour
	}
	if len(h.WorkingDays) == 0 {
		h.WorkingDays = s.defaults.WorkingDays
	}
	return h
}

// resolveDate turns a day token or free text into a calendar date.
func (s *Service) resolveDate(dayToken, body string) (time.Time, bool) {
	now := s.now()
	if dayToken != "" {
		if d, ok := schedule.ParseRelativeDay(dayToken, now); ok {
			return d, true
		}
	}
	return schedule.ParseFreeformDate(schedule.Normalize(body), now)
}

func (s *Service) resolveClock(tok schedule.ClockTokens) (schedule.ClockTime, error) {
	ct, err := schedule.ResolveClock(tok.Hour, tok.Minutes, tok.Meridiem, s.pmCutoff)
	if err != nil {
		return schedule.ClockTime{}, err
	}
	if ct.HeuristicUsed {
		s.metrics.ObserveMeridiemGuess()
		s.logger.Info("assumed pm for ambiguous hour", "hour", ct.Hour-12, "resolved", ct.Hour)
	}
	return ct, nil
}

// Schedule handles "agendar cita con <nombre> <día> <hora>".
func (s *Service) Schedule(ctx context.Context, vendor *team.Member, body string) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduling.schedule")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID.String()))

	p := schedule.ParseScheduleParams(body)
	if p.LeadName == "" {
		return s.outcome("schedule", Result{Kind: KindNeedsHelp}), nil
	}

	matches, err := s.leads.FindByNameFragment(ctx, vendor.ID, p.LeadName)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: search leads: %w", err)
	}
	if len(matches) == 0 {
		return s.outcome("schedule", Result{Kind: KindLeadNotFound, SearchedName: p.LeadName}), nil
	}

	if len(matches) > 1 {
		res := Result{Kind: KindAmbiguous, Matches: matches, SearchedName: p.LeadName}
		// Park the requested slot when it parses, so the numbered reply can
		// complete the booking without retyping it.
		if date, ok := s.resolveDate(p.DayToken, body); ok && p.HasClock {
			if ct, err := s.resolveClock(p.Clock); err == nil {
				res.Date = date
				res.Clock = ct
			}
		}
		return s.outcome("schedule", res), nil
	}

	lead := matches[0]
	if p.DayToken == "" && !p.HasClock {
		return s.outcome("schedule", Result{Kind: KindNeedsSlot, Lead: lead}), nil
	}

	date, ok := s.resolveDate(p.DayToken, body)
	if !ok {
		return s.outcome("schedule", Result{Kind: KindInvalidDate, Lead: lead, DayToken: p.DayToken}), nil
	}
	if !p.HasClock {
		return s.outcome("schedule", Result{Kind: KindNeedsSlot, Lead: lead}), nil
	}
	ct, err := s.resolveClock(p.Clock)
	if err != nil {
		return s.outcome("schedule", Result{Kind: KindInvalidHour, Lead: lead}), nil
	}

	return s.ScheduleWithSelection(ctx, vendor, lead, date, ct)
}

// ScheduleWithSelection books a visit for an already-resolved lead. It also
// completes a numbered reply after an ambiguous "agendar".
func (s *Service) ScheduleWithSelection(ctx context.Context, vendor *team.Member, lead *leads.Lead, date time.Time, ct schedule.ClockTime) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduling.schedule_with_selection")
	defer span.End()
	span.SetAttributes(
		attribute.String("vendor.id", vendor.ID.String()),
		attribute.String("lead.id", lead.ID.String()),
	)

	if date.IsZero() {
		return s.outcome("schedule", Result{Kind: KindNeedsSlot, Lead: lead}), nil
	}

	if check := schedule.ValidateSlot(ct.Hour, date, s.vendorHours(vendor)); !check.Valid {
		return s.outcome("schedule", Result{Kind: KindOutsideHours, Lead: lead, Check: check, Date: date, Clock: ct}), nil
	}

	// Displace any still-active visit so the lead holds exactly one.
	priors, err := s.appts.ListActiveForLead(ctx, lead.ID)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: list prior visits: %w", err)
	}
	now := s.now()
	for _, prior := range priors {
		if err := s.appts.Cancel(ctx, prior.ID, AutoCancelReason, now); err != nil {
			span.RecordError(err)
			return Result{}, fmt.Errorf("scheduling: displace prior visit: %w", err)
		}
		if s.calendar != nil && prior.CalendarEventID != "" {
			if err := s.calendar.DeleteEvent(ctx, prior.CalendarEventID); err != nil {
				s.calendarFailed("schedule", "delete prior event", err)
			}
		}
	}

	appt := &appointments.Appointment{
		LeadID:   lead.ID,
		VendorID: vendor.ID,
		LeadName: lead.Name,
		Property: lead.Property,
		Date:     date,
		Time:     ct,
	}
	if err := s.appts.Insert(ctx, appt); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: insert visit: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, lead.ID, "appointment_scheduled",
			fmt.Sprintf("Cita agendada por %s (%s %s)", vendor.Name,
				schedule.FormatDateES(date), schedule.FormatClock12(ct.Hour, ct.Minute)),
			map[string]any{"appointment_id": appt.ID.String()})
	}

	if s.calendar != nil {
		start := appt.StartsAt(s.loc)
		eventID, err := s.calendar.CreateEvent(ctx, gcal.EventInput{
			Title:       EventTitle(lead.Name),
			Description: fmt.Sprintf("Cita con %s\nVendedor: %s\nTeléfono: %s", lead.Name, vendor.Name, orNA(lead.Phone)),
			Location:    lead.Property,
			Start:       start,
			End:         start.Add(time.Hour),
		})
		if err != nil {
			s.calendarFailed("schedule", "create event", err)
		} else {
			appt.CalendarEventID = eventID
			if err := s.appts.SetCalendarEventID(ctx, appt.ID, eventID); err != nil {
				s.logger.Warn("could not persist calendar event id",
					"appointment_id", appt.ID.String(), "error", err.Error())
			}
		}
	}

	if err := s.leads.UpdateStage(ctx, lead.ID, leads.StageVisitScheduled); err != nil {
		s.logger.Warn("could not update lead stage",
			"lead_id", lead.ID.String(), "error", err.Error())
	}

	return s.outcome("schedule", Result{Kind: KindScheduled, Lead: lead, Appointment: appt, Date: date, Clock: ct}), nil
}

// Reschedule handles "reagendar <nombre> <día> <hora>".
func (s *Service) Reschedule(ctx context.Context, vendor *team.Member, body string) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduling.reschedule")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID.String()))

	p := schedule.ParseRescheduleParams(body)
	if p.LeadName == "" {
		return s.outcome("reschedule", Result{Kind: KindNeedsHelp}), nil
	}

	matches, err := s.leads.FindByNameFragment(ctx, vendor.ID, p.LeadName)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: search leads: %w", err)
	}
	if len(matches) == 0 {
		return s.outcome("reschedule", Result{Kind: KindLeadNotFound, SearchedName: p.LeadName}), nil
	}
	if len(matches) > 1 {
		res := Result{Kind: KindAmbiguous, Matches: matches, SearchedName: p.LeadName}
		if date, ok := s.resolveDate(p.DayToken, body); ok && p.HasClock {
			if ct, err := s.resolveClock(p.Clock); err == nil {
				res.Date = date
				res.Clock = ct
			}
		}
		return s.outcome("reschedule", res), nil
	}

	lead := matches[0]
	if p.DayToken == "" && !p.HasClock {
		return s.outcome("reschedule", Result{Kind: KindNeedsSlot, Lead: lead}), nil
	}
	date, ok := s.resolveDate(p.DayToken, body)
	if !ok {
		return s.outcome("reschedule", Result{Kind: KindInvalidDate, Lead: lead, DayToken: p.DayToken}), nil
	}
	if !p.HasClock {
		return s.outcome("reschedule", Result{Kind: KindNeedsSlot, Lead: lead}), nil
	}
	ct, err := s.resolveClock(p.Clock)
	if err != nil {
		return s.outcome("reschedule", Result{Kind: KindInvalidHour, Lead: lead}), nil
	}

	return s.RescheduleWithSelection(ctx, vendor, lead, date, ct)
}

// RescheduleWithSelection moves the lead's active visit to a new slot.
// Unlike Schedule, an out-of-hours slot is honored with a warning: the vendor
// is moving an existing commitment and may know something the schedule
// doesn't.
func (s *Service) RescheduleWithSelection(ctx context.Context, vendor *team.Member, lead *leads.Lead, date time.Time, ct schedule.ClockTime) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduling.reschedule_with_selection")
	defer span.End()
	span.SetAttributes(
		attribute.String("vendor.id", vendor.ID.String()),
		attribute.String("lead.id", lead.ID.String()),
	)

	if date.IsZero() {
		return s.outcome("reschedule", Result{Kind: KindNeedsSlot, Lead: lead}), nil
	}

	appt, err := s.appts.FindActiveForLead(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, appointments.ErrAppointmentNotFound) {
			return s.outcome("reschedule", Result{Kind: KindNoActive, Lead: lead}), nil
		}
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: find active visit: %w", err)
	}

	var warning *schedule.SlotCheck
	if check := schedule.ValidateSlot(ct.Hour, date, s.vendorHours(vendor)); !check.Valid {
		warning = &check
		s.logger.Warn("reschedule outside work hours",
			"lead_id", lead.ID.String(), "hour", ct.Hour, "reason", check.Error)
	}

	priorDate, priorTime := appt.Date, appt.Time
	if err := s.appts.UpdateSchedule(ctx, appt.ID, date, ct); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: move visit: %w", err)
	}
	appt.Date, appt.Time, appt.Status = date, ct, appointments.StatusScheduled

	if s.activity != nil {
		s.activity.Record(ctx, lead.ID, "appointment_rescheduled",
			fmt.Sprintf("Cita reagendada por %s (nueva: %s %s)", vendor.Name,
				schedule.FormatDateES(date), schedule.FormatClock12(ct.Hour, ct.Minute)),
			map[string]any{"appointment_id": appt.ID.String()})
	}

	s.syncMovedEvent(ctx, vendor, lead, appt)

	marker := leads.PendingReschedule{
		AppointmentID: appt.ID,
		VendorID:      vendor.ID,
		RequestedBy:   vendor.Name,
		NewDate:       date.Format("2006-01-02"),
		NewTime:       ct.String(),
		RequestedAt:   s.now(),
	}
	if err := s.leads.SetPendingReschedule(ctx, lead.ID, marker); err != nil {
		s.logger.Warn("could not persist pending reschedule marker",
			"lead_id", lead.ID.String(), "error", err.Error())
	}

	return s.outcome("reschedule", Result{
		Kind: KindRescheduled, Lead: lead, Appointment: appt,
		PriorDate: priorDate, PriorTime: priorTime,
		Date: date, Clock: ct, Warning: warning,
	}), nil
}

// syncMovedEvent reconciles the calendar after a move. With a stored event id
// it patches the times; without one it deletes any events matching the title
// convention and creates a fresh event, persisting its id.
func (s *Service) syncMovedEvent(ctx context.Context, vendor *team.Member, lead *leads.Lead, appt *appointments.Appointment) {
	if s.calendar == nil {
		return
	}
	start := appt.StartsAt(s.loc)
	end := start.Add(time.Hour)

	if appt.CalendarEventID != "" {
		if err := s.calendar.UpdateEventTime(ctx, appt.CalendarEventID, start, end); err != nil {
			s.calendarFailed("reschedule", "update event", err)
		}
		return
	}

	title := EventTitle(lead.Name)
	found, err := s.calendar.FindEventsByTitle(ctx, title, s.now())
	if err != nil {
		s.calendarFailed("reschedule", "find events", err)
	}
	for _, ev := range found {
		if err := s.calendar.DeleteEvent(ctx, ev.ID); err != nil {
			s.calendarFailed("reschedule", "delete stale event", err)
		}
	}

	eventID, err := s.calendar.CreateEvent(ctx, gcal.EventInput{
		Title:       title,
		Description: fmt.Sprintf("Cita con %s\nVendedor: %s\nTeléfono: %s", lead.Name, vendor.Name, orNA(lead.Phone)),
		Location:    appt.Property,
		Start:       start,
		End:         end,
	})
	if err != nil {
		s.calendarFailed("reschedule", "create event", err)
		return
	}
	appt.CalendarEventID = eventID
	if err := s.appts.SetCalendarEventID(ctx, appt.ID, eventID); err != nil {
		s.logger.Warn("could not persist calendar event id",
			"appointment_id", appt.ID.String(), "error", err.Error())
	}
}

// Cancel handles "cancelar cita con <nombre>".
func (s *Service) Cancel(ctx context.Context, vendor *team.Member, body string) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduling.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("vendor.id", vendor.ID.String()))

	name, ok := schedule.ParseCancelName(body)
	if !ok {
		return s.outcome("cancel", Result{Kind: KindNeedsHelp}), nil
	}

	matches, err := s.leads.FindByNameFragment(ctx, vendor.ID, name)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: search leads: %w", err)
	}
	if len(matches) == 0 {
		return s.outcome("cancel", Result{Kind: KindLeadNotFound, SearchedName: name}), nil
	}
	if len(matches) > 1 {
		return s.outcome("cancel", Result{Kind: KindAmbiguous, Matches: matches, SearchedName: name}), nil
	}

	return s.CancelForLead(ctx, vendor, matches[0])
}

// CancelForLead cancels the lead's active visit. The row survives as an audit
// record; only the status and cancellation marks change.
func (s *Service) CancelForLead(ctx context.Context, vendor *team.Member, lead *leads.Lead) (Result, error) {
	ctx, span := tracer.Start(ctx, "scheduling.cancel_for_lead")
	defer span.End()
	span.SetAttributes(
		attribute.String("vendor.id", vendor.ID.String()),
		attribute.String("lead.id", lead.ID.String()),
	)

	appt, err := s.appts.FindActiveForLead(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, appointments.ErrAppointmentNotFound) {
			return s.outcome("cancel", Result{Kind: KindNoActive, Lead: lead}), nil
		}
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: find active visit: %w", err)
	}

	now := s.now()
	if err := s.appts.Cancel(ctx, appt.ID, vendor.Name, now); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("scheduling: cancel visit: %w", err)
	}
	appt.Status = appointments.StatusCancelled
	appt.CancelledBy = vendor.Name
	appt.CancelledAt = &now

	if s.activity != nil {
		s.activity.Record(ctx, lead.ID, "appointment_cancelled",
			fmt.Sprintf("Cita cancelada por %s (era: %s %s)", vendor.Name,
				schedule.FormatDateES(appt.Date), schedule.FormatClock12(appt.Time.Hour, appt.Time.Minute)),
			map[string]any{"appointment_id": appt.ID.String()})
	}

	s.removeCancelledEvent(ctx, lead, appt)

	if err := s.leads.ClearPendingReschedule(ctx, lead.ID); err != nil {
		s.logger.Warn("could not clear pending reschedule marker",
			"lead_id", lead.ID.String(), "error", err.Error())
	}

	return s.outcome("cancel", Result{
		Kind: KindCancelled, Lead: lead, Appointment: appt,
		PriorDate: appt.Date, PriorTime: appt.Time,
	}), nil
}

// removeCancelledEvent deletes the calendar event, falling back to the title
// convention when no event id was ever stored.
func (s *Service) removeCancelledEvent(ctx context.Context, lead *leads.Lead, appt *appointments.Appointment) {
	if s.calendar == nil {
		return
	}
	if appt.CalendarEventID != "" {
		err := s.calendar.DeleteEvent(ctx, appt.CalendarEventID)
		if err == nil {
			return
		}
		s.calendarFailed("cancel", "delete event", err)
	}
	found, err := s.calendar.FindEventsByTitle(ctx, EventTitle(lead.Name), s.now())
	if err != nil {
		s.calendarFailed("cancel", "find events", err)
		return
	}
	for _, ev := range found {
		if err := s.calendar.DeleteEvent(ctx, ev.ID); err != nil {
			s.calendarFailed("cancel", "delete event by title", err)
		}
	}
}

// TodaysAppointments backs the "citas" command.
func (s *Service) TodaysAppointments(ctx context.Context, vendor *team.Member) ([]*appointments.Appointment, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.appts.ListForVendorOnDate(ctx, vendor.ID, today)
}

// LeadByID re-resolves a parked selection.
func (s *Service) LeadByID(ctx context.Context, id uuid.UUID) (*leads.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

func (s *Service) outcome(operation string, res Result) Result {
	s.metrics.ObserveOperation(operation, string(res.Kind))
	return res
}

func (s *Service) calendarFailed(operation, action string, err error) {
	s.metrics.ObserveCalendarFailure(operation)
	s.logger.Warn("calendar sync failed", "operation", operation, "action", action, "error", err.Error())
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
