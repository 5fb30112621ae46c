// Package relay holds the values flowing through a single relay invocation and its error taxonomy.
package relay

import (
	"log/slog"
	"net/http"

	"github.com/isometry/webhook-relay/internal/config"
)

// Stage is the position of an invocation in the relay pipeline.
type Stage string

const (
	Received   Stage = "received"
	Decoded    Stage = "decoded"
	Built      Stage = "built"
	Dispatched Stage = "dispatched"
	Responded  Stage = "responded"
	Failed     Stage = "failed"
)

// InboundMessage is the message the caller wants delivered.
type InboundMessage struct {
	Text string
}

// WebhookPayload is the body expected by the messaging webhook.
type WebhookPayload struct {
	Text string `json:"text"`
}

// NewWebhookPayload maps an inbound message onto the webhook shape.
func NewWebhookPayload(msg InboundMessage) WebhookPayload {
	return WebhookPayload{Text: msg.Text}
}

// UpstreamResponse is what the messaging webhook answered.
type UpstreamResponse struct {
	StatusCode int
	Body       string
}

// Bus carries the state of one invocation between the pipeline stages. It is never shared.
type Bus struct {
	Stage    Stage
	Settings config.Settings

	Body        []byte
	ContentType string

	Message  *InboundMessage
	Payload  *WebhookPayload
	Outbound *http.Request
	Upstream *UpstreamResponse
}

// NewBus returns a bus in the Received stage.
func NewBus(settings config.Settings, body []byte, contentType string) *Bus {
	return &Bus{
		Stage:       Received,
		Settings:    settings,
		Body:        body,
		ContentType: contentType,
	}
}

// LogValue keeps message content out of logs.
func (b *Bus) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("stage", string(b.Stage)),
		slog.Int("bodyBytes", len(b.Body)),
	}
	if b.Message != nil {
		attrs = append(attrs, slog.Int("textBytes", len(b.Message.Text)))
	}
	if b.Upstream != nil {
		attrs = append(attrs, slog.Int("upstreamStatus", b.Upstream.StatusCode))
	}
	return slog.GroupValue(attrs...)
}
