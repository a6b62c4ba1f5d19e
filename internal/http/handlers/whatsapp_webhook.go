package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/internal/leads"
	"github.com/vivenda/crm-platform/internal/messaging"
	"github.com/vivenda/crm-platform/internal/messaging/templates"
	observemetrics "github.com/vivenda/crm-platform/internal/observability/metrics"
	"github.com/vivenda/crm-platform/internal/pending"
	"github.com/vivenda/crm-platform/internal/schedule"
	"github.com/vivenda/crm-platform/internal/scheduling"
	"github.com/vivenda/crm-platform/internal/team"
	"github.com/vivenda/crm-platform/pkg/logging"
)

type vendorDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*team.Member, error)
}

type appointmentService interface {
	Schedule(ctx context.Context, vendor *team.Member, body string) (scheduling.Result, error)
	ScheduleWithSelection(ctx context.Context, vendor *team.Member, lead *leads.Lead, date time.Time, ct schedule.ClockTime) (scheduling.Result, error)
	Reschedule(ctx context.Context, vendor *team.Member, body string) (scheduling.Result, error)
	RescheduleWithSelection(ctx context.Context, vendor *team.Member, lead *leads.Lead, date time.Time, ct schedule.ClockTime) (scheduling.Result, error)
	Cancel(ctx context.Context, vendor *team.Member, body string) (scheduling.Result, error)
	CancelForLead(ctx context.Context, vendor *team.Member, lead *leads.Lead) (scheduling.Result, error)
	TodaysAppointments(ctx context.Context, vendor *team.Member) ([]*appointments.Appointment, error)
	LeadByID(ctx context.Context, id uuid.UUID) (*leads.Lead, error)
}

type selectionStore interface {
	Put(ctx context.Context, vendorPhone string, sel pending.Selection) error
	Take(ctx context.Context, vendorPhone string) (pending.Selection, error)
}

// WhatsAppWebhookHandler receives Meta Cloud API webhooks and routes vendor
// appointment commands. Messages from numbers that are not active team
// members are ignored; Meta always gets a 200 so it stops redelivering.
type WhatsAppWebhookHandler struct {
	team        vendorDirectory
	svc         appointmentService
	pending     selectionStore
	provider    messaging.Provider
	logger      *logging.Logger
	metrics     *observemetrics.SchedulingMetrics
	verifyToken string
}

type WhatsAppWebhookConfig struct {
	Team        vendorDirectory
	Service     appointmentService
	Pending     selectionStore
	Provider    messaging.Provider
	Logger      *logging.Logger
	Metrics     *observemetrics.SchedulingMetrics
	VerifyToken string
}

func NewWhatsAppWebhookHandler(cfg WhatsAppWebhookConfig) *WhatsAppWebhookHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &WhatsAppWebhookHandler{
		team:        cfg.Team,
		svc:         cfg.Service,
		pending:     cfg.Pending,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		verifyToken: cfg.VerifyToken,
	}
}

// HandleVerify answers Meta's webhook subscription challenge.
func (h *WhatsAppWebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && h.verifyToken != "" && q.Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "verification failed", http.StatusForbidden)
}

type webhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// HandleMessages processes inbound WhatsApp messages.
func (h *WhatsAppWebhookHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	var env webhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" {
					continue
				}
				if err := h.processMessage(r.Context(), msg.From, msg.Text.Body); err != nil {
					h.logger.Error("whatsapp message processing failed",
						"error", err, "message_id", msg.ID)
				}
			}
		}
	}
	w.WriteHeader(http.StatusOK)
}

var selectionRe = regexp.MustCompile(`^\d{1,2}$`)

func (h *WhatsAppWebhookHandler) processMessage(ctx context.Context, from, body string) error {
	vendor, err := h.team.FindByPhone(ctx, from)
	if err != nil {
		if errors.Is(err, team.ErrMemberNotFound) {
			h.logger.Debug("ignoring message from unknown number", "from", from)
			return nil
		}
		return err
	}

	text := strings.ToLower(strings.TrimSpace(body))
	start := time.Now()
	var (
		operation string
		reply     string
	)
	switch {
	case selectionRe.MatchString(text):
		operation = "selection"
		reply, err = h.completeSelection(ctx, vendor, text)
	case text == "citas" || text == "mis citas":
		operation = "list"
		reply, err = h.listToday(ctx, vendor)
	case text == "ayuda" || text == "help" || text == "comandos":
		operation = "help"
		reply = templates.Help()
	case strings.HasPrefix(text, "agendar") || strings.HasPrefix(text, "agenda "):
		operation = "schedule"
		reply, err = h.runCommand(ctx, vendor, body, pending.ActionSchedule)
	case strings.HasPrefix(text, "reagendar") || strings.HasPrefix(text, "re agendar") || strings.HasPrefix(text, "re-agendar"):
		operation = "reschedule"
		reply, err = h.runCommand(ctx, vendor, body, pending.ActionReschedule)
	case strings.Contains(text, "cancelar"):
		operation = "cancel"
		reply, err = h.runCommand(ctx, vendor, body, pending.ActionCancel)
	default:
		// Anything else from a team member gets the command help.
		operation = "help"
		reply = templates.Help()
	}
	if err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.ObserveCommandLatency(operation, time.Since(start).Seconds())
	}
	return h.send(ctx, vendor.Phone, reply)
}

func (h *WhatsAppWebhookHandler) runCommand(ctx context.Context, vendor *team.Member, body string, action pending.Action) (string, error) {
	var (
		res scheduling.Result
		err error
	)
	switch action {
	case pending.ActionSchedule:
		res, err = h.svc.Schedule(ctx, vendor, body)
	case pending.ActionReschedule:
		res, err = h.svc.Reschedule(ctx, vendor, body)
	case pending.ActionCancel:
		res, err = h.svc.Cancel(ctx, vendor, body)
	}
	if err != nil {
		return "", err
	}
	switch res.Kind {
	case scheduling.KindAmbiguous:
		h.parkSelection(ctx, vendor, res, action)
	case scheduling.KindScheduled, scheduling.KindRescheduled, scheduling.KindCancelled:
		h.parkNotifyPrompt(ctx, vendor, res)
	}
	return h.renderResult(res, action), nil
}

// parkSelection saves the numbered prompt so the next bare digit reply
// resolves against the same list. A redis failure only costs the shortcut;
// the vendor can re-issue the full command.
func (h *WhatsAppWebhookHandler) parkSelection(ctx context.Context, vendor *team.Member, res scheduling.Result, action pending.Action) {
	sel := pending.Selection{
		Action:    action,
		Date:      res.Date,
		Hour:      res.Clock.Hour,
		Minute:    res.Clock.Minute,
		CreatedAt: time.Now(),
	}
	for _, l := range res.Matches {
		sel.Options = append(sel.Options, l.ID)
		sel.Names = append(sel.Names, l.Name)
	}
	if err := h.pending.Put(ctx, vendor.Phone, sel); err != nil {
		h.logger.Warn("failed to park lead selection", "error", err, "vendor", vendor.Phone)
	}
}

// parkNotifyPrompt saves the "¿Le aviso?" follow-up every success reply ends
// with, so the vendor's next "1" forwards the lead-facing message.
func (h *WhatsAppWebhookHandler) parkNotifyPrompt(ctx context.Context, vendor *team.Member, res scheduling.Result) {
	if res.Lead == nil || res.Lead.Phone == "" {
		return
	}
	var msg string
	switch res.Kind {
	case scheduling.KindScheduled:
		msg = templates.LeadConfirmation(res.Lead.Name, res.Lead.Property,
			templates.FormatDate(res.Appointment), templates.FormatHour(res.Appointment),
			vendor.Name, vendor.Phone)
	case scheduling.KindRescheduled:
		msg = templates.LeadRescheduled(res.Lead.Name,
			templates.FormatDate(res.Appointment), templates.FormatHour(res.Appointment),
			res.Lead.Property, vendor.Name, vendor.Phone)
	case scheduling.KindCancelled:
		msg = templates.LeadCancelled(res.Lead.Name,
			schedule.FormatDateES(res.PriorDate), schedule.FormatClock12(res.PriorTime.Hour, res.PriorTime.Minute),
			vendor.Name)
	default:
		return
	}
	sel := pending.Selection{
		Action:    pending.ActionNotify,
		Names:     []string{res.Lead.Name},
		LeadPhone: res.Lead.Phone,
		Message:   msg,
		CreatedAt: time.Now(),
	}
	if err := h.pending.Put(ctx, vendor.Phone, sel); err != nil {
		h.logger.Warn("failed to park notify prompt", "error", err, "vendor", vendor.Phone)
	}
}

func (h *WhatsAppWebhookHandler) completeSelection(ctx context.Context, vendor *team.Member, text string) (string, error) {
	sel, err := h.pending.Take(ctx, vendor.Phone)
	if err != nil {
		if errors.Is(err, pending.ErrNoSelection) {
			// A stray digit with no open prompt gets the help reply too.
			return templates.Help(), nil
		}
		return "", err
	}
	if sel.Action == pending.ActionNotify {
		return h.completeNotify(ctx, vendor, sel, text)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(sel.Options) {
		// Re-park so the vendor can answer again.
		if putErr := h.pending.Put(ctx, vendor.Phone, sel); putErr != nil {
			h.logger.Warn("failed to restore lead selection", "error", putErr, "vendor", vendor.Phone)
		}
		return templates.InvalidSelection(len(sel.Options)), nil
	}
	lead, err := h.svc.LeadByID(ctx, sel.Options[n-1])
	if err != nil {
		return "", err
	}
	ct := schedule.ClockTime{Hour: sel.Hour, Minute: sel.Minute}
	var res scheduling.Result
	switch sel.Action {
	case pending.ActionSchedule:
		res, err = h.svc.ScheduleWithSelection(ctx, vendor, lead, sel.Date, ct)
	case pending.ActionReschedule:
		res, err = h.svc.RescheduleWithSelection(ctx, vendor, lead, sel.Date, ct)
	case pending.ActionCancel:
		res, err = h.svc.CancelForLead(ctx, vendor, lead)
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}
	switch res.Kind {
	case scheduling.KindScheduled, scheduling.KindRescheduled, scheduling.KindCancelled:
		h.parkNotifyPrompt(ctx, vendor, res)
	}
	return h.renderResult(res, sel.Action), nil
}

func (h *WhatsAppWebhookHandler) completeNotify(ctx context.Context, vendor *team.Member, sel pending.Selection, text string) (string, error) {
	leadName := ""
	if len(sel.Names) > 0 {
		leadName = sel.Names[0]
	}
	switch text {
	case "1":
		if err := h.send(ctx, sel.LeadPhone, sel.Message); err != nil {
			h.logger.Warn("lead notification failed", "error", err, "to", sel.LeadPhone)
			return "⚠️ No pude enviarle el mensaje, avísale tú por favor.", nil
		}
		return templates.NotifySent(leadName), nil
	case "2":
		return templates.NotifySkipped(), nil
	default:
		if err := h.pending.Put(ctx, vendor.Phone, sel); err != nil {
			h.logger.Warn("failed to restore notify prompt", "error", err, "vendor", vendor.Phone)
		}
		return templates.InvalidSelection(2), nil
	}
}

func (h *WhatsAppWebhookHandler) listToday(ctx context.Context, vendor *team.Member) (string, error) {
	appts, err := h.svc.TodaysAppointments(ctx, vendor)
	if err != nil {
		return "", err
	}
	return templates.TodaysAppointments(appts), nil
}

func (h *WhatsAppWebhookHandler) renderResult(res scheduling.Result, action pending.Action) string {
	switch res.Kind {
	case scheduling.KindScheduled:
		return templates.ScheduleSuccess(res.Lead.Name, res.Lead.Phone,
			templates.FormatDate(res.Appointment), templates.FormatHour(res.Appointment), res.Lead.Property)
	case scheduling.KindRescheduled:
		reply := templates.RescheduleSuccess(res.Lead.Name,
			templates.FormatDate(res.Appointment), templates.FormatHour(res.Appointment))
		if res.Warning != nil {
			reply += "\n\n⚠️ " + res.Warning.Error
		}
		return reply
	case scheduling.KindCancelled:
		return templates.Cancelled(res.Lead.Name,
			schedule.FormatDateES(res.PriorDate), schedule.FormatClock12(res.PriorTime.Hour, res.PriorTime.Minute))
	case scheduling.KindAmbiguous:
		names := make([]string, 0, len(res.Matches))
		phones := make([]string, 0, len(res.Matches))
		for _, l := range res.Matches {
			names = append(names, l.Name)
			phones = append(phones, l.Phone)
		}
		return templates.MultipleLeads(names, phones, actionVerb(action))
	case scheduling.KindNeedsHelp:
		switch action {
		case pending.ActionReschedule:
			return templates.HelpReschedule()
		case pending.ActionCancel:
			return templates.HelpCancel()
		default:
			return templates.HelpSchedule()
		}
	case scheduling.KindNeedsSlot:
		verb := "Agendar"
		if action == pending.ActionReschedule {
			verb = "Reagendar"
		}
		return templates.NeedsSlot(verb, res.Lead.Name)
	case scheduling.KindLeadNotFound:
		return templates.LeadNotFound(res.SearchedName)
	case scheduling.KindNoActive:
		return templates.NoActiveAppointment(res.Lead.Name)
	case scheduling.KindOutsideHours:
		return templates.OutsideHours(res.Check)
	case scheduling.KindInvalidDate:
		return templates.InvalidDate(res.DayToken)
	case scheduling.KindInvalidHour:
		return templates.InvalidHour()
	default:
		return ""
	}
}

func actionVerb(action pending.Action) string {
	switch action {
	case pending.ActionReschedule:
		return "reagendar"
	case pending.ActionCancel:
		return "cancelar"
	default:
		return "agendar"
	}
}

func (h *WhatsAppWebhookHandler) send(ctx context.Context, to, body string) error {
	if body == "" {
		return nil
	}
	if h.provider == nil {
		h.logger.Warn("no messaging provider configured, dropping reply", "to", to)
		return nil
	}
	msgID, err := h.provider.SendText(ctx, to, body)
	if err != nil {
		return err
	}
	h.logger.Info("reply sent", "to", to, "message_id", msgID)
	return nil
}
