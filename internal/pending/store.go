package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSelection means the vendor has no open disambiguation prompt, or it
// expired.
var ErrNoSelection = errors.New("pending: no selection waiting")

// Action identifies which command the numbered reply completes.
type Action string

const (
	ActionSchedule   Action = "schedule"
	ActionReschedule Action = "reschedule"
	ActionCancel     Action = "cancel"
	// ActionNotify is the "¿Le aviso?" prompt after a completed operation;
	// "1" forwards Message to LeadPhone, "2" drops it.
	ActionNotify Action = "notify"
)

// Selection is the state parked while a vendor picks a lead from a numbered
// list. Options keeps the order the list was presented in, so "2" resolves to
// the same lead the vendor saw as option 2.
type Selection struct {
	Action    Action      `json:"action"`
	Options   []uuid.UUID `json:"options"`
	Names     []string    `json:"names"`
	Date      time.Time   `json:"date"`
	Hour      int         `json:"hour"`
	Minute    int         `json:"minute"`
	CreatedAt time.Time   `json:"created_at"`

	// Notify prompt payload (ActionNotify only).
	LeadPhone string `json:"lead_phone,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Store parks pending selections in redis, keyed by the vendor's phone. The
// TTL is the whole expiry mechanism; nothing sweeps stale entries.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		panic("pending: redis client required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

func key(vendorPhone string) string {
	return "pending:selection:" + vendorPhone
}

// Put saves the vendor's open prompt, replacing any previous one.
func (s *Store) Put(ctx context.Context, vendorPhone string, sel Selection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("pending: marshal selection: %w", err)
	}
	if err := s.client.Set(ctx, key(vendorPhone), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("pending: save selection: %w", err)
	}
	return nil
}

// Get returns the vendor's open prompt without consuming it.
func (s *Store) Get(ctx context.Context, vendorPhone string) (Selection, error) {
	raw, err := s.client.Get(ctx, key(vendorPhone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Selection{}, ErrNoSelection
	}
	if err != nil {
		return Selection{}, fmt.Errorf("pending: load selection: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return Selection{}, fmt.Errorf("pending: decode selection: %w", err)
	}
	return sel, nil
}

// Take returns and deletes the vendor's open prompt. A numbered reply is
// consumed exactly once.
func (s *Store) Take(ctx context.Context, vendorPhone string) (Selection, error) {
	sel, err := s.Get(ctx, vendorPhone)
	if err != nil {
		return Selection{}, err
	}
	if err := s.client.Del(ctx, key(vendorPhone)).Err(); err != nil {
		return Selection{}, fmt.Errorf("pending: consume selection: %w", err)
	}
	return sel, nil
}

// Clear drops any open prompt, for when the vendor issues a fresh command
// instead of answering.
func (s *Store) Clear(ctx context.Context, vendorPhone string) error {
	if err := s.client.Del(ctx, key(vendorPhone)).Err(); err != nil {
		return fmt.Errorf("pending: clear selection: %w", err)
	}
	return nil
}
