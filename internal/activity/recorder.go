package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vivenda/crm-platform/pkg/logging"
)

// Activity types written by the scheduling flows.
const (
	TypeAppointmentScheduled   = "appointment_scheduled"
	TypeAppointmentRescheduled = "appointment_rescheduled"
	TypeAppointmentCancelled   = "appointment_cancelled"
)

type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder appends rows to the lead activity timeline. The timeline is an
// audit trail, not ledger state: a failed insert is logged and swallowed so
// it can never undo a booking that already happened.
type Recorder struct {
	pool   Execer
	logger *logging.Logger
}

func NewRecorder(pool Execer, logger *logging.Logger) *Recorder {
	if pool == nil {
		panic("activity: pgx pool required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{pool: pool, logger: logger}
}

// Record inserts one timeline entry. detail is marshaled into the JSONB
// payload column; nil is fine.
func (r *Recorder) Record(ctx context.Context, leadID uuid.UUID, activityType, description string, detail map[string]any) {
	payload := []byte("{}")
	if detail != nil {
		var err error
		payload, err = json.Marshal(detail)
		if err != nil {
			r.logger.Warn("activity payload not serializable",
				"lead_id", leadID.String(), "type", activityType, "error", err.Error())
			payload = []byte("{}")
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activities (id, lead_id, activity_type, description, payload)
		VALUES ($1, $2, $3, $4, $5::jsonb)`,
		uuid.New(), leadID, activityType, description, payload)
	if err != nil {
		r.logger.Warn("activity insert failed",
			"lead_id", leadID.String(), "type", activityType,
			"error", fmt.Sprintf("%v", err))
	}
}
