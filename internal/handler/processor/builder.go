package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/pkg/errors"
)

// UserAgent identifies the relay towards the messaging webhook.
const UserAgent = "webhook-relay"

type builderProcessor struct {
	logger *slog.Logger
}

// NewBuilderProcessor returns the stage mapping the decoded message onto the outbound webhook request.
func NewBuilderProcessor(opts ...Option) Processor {
	_inst := &builderProcessor{logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *builderProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:builder")
}

func (p *builderProcessor) Process(ctx context.Context, bus *relay.Bus) error {
	if bus.Message == nil {
		return errors.New("no decoded message on bus")
	}
	payload := relay.NewWebhookPayload(*bus.Message)

	body, err := EncodePayload(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bus.Settings.WebhookURL, bytes.NewReader(body))
	if err != nil {
		p.logger.Error("failed to build webhook request", slog.Any("error", err))
		return relay.NewMisconfiguredError("invalid webhook URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	bus.Payload = &payload
	bus.Outbound = req
	bus.Stage = relay.Built
	p.logger.Debug("webhook request built", slog.Int("payloadBytes", len(body)))
	return nil
}

// EncodePayload serialises the payload without HTML escaping so the text reaches the webhook byte for byte.
func EncodePayload(payload relay.WebhookPayload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
