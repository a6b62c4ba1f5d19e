package messaging

import "context"

// Provider sends outbound WhatsApp messages. The concrete implementation is
// the Meta Cloud API client in whatsappclient; tests use a recorder.
type Provider interface {
	SendText(ctx context.Context, to, body string) (messageID string, err error)
}
