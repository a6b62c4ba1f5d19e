package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// Events is the calendar surface the scheduling flows depend on. The real
// implementation talks to Google Calendar; tests swap in a fake.
type Events interface {
	CreateEvent(ctx context.Context, in EventInput) (string, error)
	UpdateEventTime(ctx context.Context, eventID string, start, end time.Time) error
	DeleteEvent(ctx context.Context, eventID string) error
	FindEventsByTitle(ctx context.Context, title string, from time.Time) ([]FoundEvent, error)
}

// EventInput describes a visit event to create.
type EventInput struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// FoundEvent is a minimal view of an existing calendar event.
type FoundEvent struct {
	ID    string
	Title string
	Start time.Time
}

// Client wraps the Google Calendar API for one branch calendar. Every call
// runs under its own deadline so a slow calendar API cannot stall a WhatsApp
// reply.
type Client struct {
	svc        *calendar.Service
	calendarID string
	timezone   string
	timeout    time.Duration
}

func NewClient(svc *calendar.Service, calendarID, timezone string, timeout time.Duration) *Client {
	if svc == nil {
		panic("gcal: calendar service required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{svc: svc, calendarID: calendarID, timezone: timezone, timeout: timeout}
}

func (c *Client) eventTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.timezone,
	}
}

// CreateEvent inserts the event and returns its id.
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ev := &calendar.Event{
		Summary:     in.Title,
		Description: in.Description,
		Location:    in.Location,
		Start:       c.eventTime(in.Start),
		End:         c.eventTime(in.End),
	}
	for _, email := range in.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gcal: create event: %w", err)
	}
	return created.Id, nil
}

// UpdateEventTime patches only the start and end of an existing event.
func (c *Client) UpdateEventTime(ctx context.Context, eventID string, start, end time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	patch := &calendar.Event{
		Start: c.eventTime(start),
		End:   c.eventTime(end),
	}
	if _, err := c.svc.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gcal: update event %s: %w", eventID, err)
	}
	return nil
}

// DeleteEvent removes an event. A 404 or 410 counts as success since the goal
// state (no event) already holds.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
			return nil
		}
		return fmt.Errorf("gcal: delete event %s: %w", eventID, err)
	}
	return nil
}

// FindEventsByTitle returns upcoming events whose summary matches title
// exactly. Used to reconcile appointments whose event id was never persisted.
func (c *Client) FindEventsByTitle(ctx context.Context, title string, from time.Time) ([]FoundEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.svc.Events.List(c.calendarID).
		Q(title).
		TimeMin(from.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(25).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: list events: %w", err)
	}

	var out []FoundEvent
	for _, item := range list.Items {
		if item.Summary != title {
			continue
		}
		start := time.Time{}
		if item.Start != nil && item.Start.DateTime != "" {
			start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		}
		out = append(out, FoundEvent{ID: item.Id, Title: item.Summary, Start: start})
	}
	return out, nil
}
