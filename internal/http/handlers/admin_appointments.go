package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vivenda/crm-platform/internal/appointments"
	"github.com/vivenda/crm-platform/pkg/logging"
)

type appointmentLister interface {
	ListForVendorOnDate(ctx context.Context, vendorID uuid.UUID, date time.Time) ([]*appointments.Appointment, error)
}

// AdminAppointmentsHandler serves the back-office agenda views.
type AdminAppointmentsHandler struct {
	appts  appointmentLister
	logger *logging.Logger
}

func NewAdminAppointmentsHandler(appts appointmentLister, logger *logging.Logger) *AdminAppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{appts: appts, logger: logger}
}

type appointmentView struct {
	ID              string `json:"id"`
	LeadID          string `json:"lead_id"`
	LeadName        string `json:"lead_name"`
	Property        string `json:"property,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Status          string `json:"status"`
	CalendarEventID string `json:"calendar_event_id,omitempty"`
}

// ListForMember returns a team member's appointments for one date.
// GET /admin/team/{memberID}/appointments?date=2026-01-15
func (h *AdminAppointmentsHandler) ListForMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		http.Error(w, "invalid member id", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid or missing date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	appts, err := h.appts.ListForVendorOnDate(r.Context(), memberID, date)
	if err != nil {
		h.logger.Error("admin appointment listing failed", "error", err, "member_id", memberID)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	views := make([]appointmentView, 0, len(appts))
	for _, a := range appts {
		views = append(views, appointmentView{
			ID:              a.ID.String(),
			LeadID:          a.LeadID.String(),
			LeadName:        a.LeadName,
			Property:        a.Property,
			Date:            a.Date.Format("2006-01-02"),
			Time:            a.Time.String(),
			Status:          a.Status,
			CalendarEventID: a.CalendarEventID,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"member_id":    memberID.String(),
		"date":         date.Format("2006-01-02"),
		"appointments": views,
	})
}
