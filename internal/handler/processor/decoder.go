package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/relay"
)

// MessageField is the inbound JSON field holding the message text.
const MessageField = "message"

type decoderProcessor struct {
	logger *slog.Logger
}

// NewDecoderProcessor returns the stage turning the raw request body into a relay.InboundMessage.
func NewDecoderProcessor(opts ...Option) Processor {
	_inst := &decoderProcessor{logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *decoderProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:decoder")
}

func (p *decoderProcessor) Process(_ context.Context, bus *relay.Bus) error {
	if err := checkContentType(bus.ContentType); err != nil {
		p.logger.Warn("rejecting request", slog.String("contentType", bus.ContentType))
		return err
	}
	if len(strings.TrimSpace(string(bus.Body))) == 0 {
		p.logger.Warn("rejecting request", slog.String("reason", "empty body"))
		return relay.NewBadRequestError("missing request body")
	}
	if !json.Valid(bus.Body) {
		p.logger.Warn("rejecting request", slog.String("reason", "invalid json"))
		return relay.NewBadRequestError("invalid JSON in request body")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(bus.Body, &fields); err != nil {
		p.logger.Warn("rejecting request", slog.String("reason", "not an object"))
		return relay.NewBadRequestError("request body must be a JSON object")
	}

	raw, found := fields[MessageField]
	if !found {
		p.logger.Warn("rejecting request", slog.String("reason", "missing message"))
		return relay.NewBadRequestError("missing '%s' field in request body", MessageField)
	}

	if !utf8.Valid(raw) {
		p.logger.Warn("rejecting request", slog.String("reason", "message is not valid utf-8"))
		return relay.NewBadRequestError("'%s' field must be valid UTF-8", MessageField)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		p.logger.Warn("rejecting request", slog.String("reason", "message is not a string"))
		return relay.NewBadRequestError("'%s' field must be a string", MessageField)
	}
	if !lossless(raw, text) {
		p.logger.Warn("rejecting request", slog.String("reason", "message holds an unpaired surrogate"))
		return relay.NewBadRequestError("'%s' field must be valid UTF-8", MessageField)
	}
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("rejecting request", slog.String("reason", "empty message"))
		return relay.NewBadRequestError("'%s' field must not be empty", MessageField)
	}

	bus.Message = &relay.InboundMessage{Text: text}
	bus.Stage = relay.Decoded
	p.logger.Debug("request decoded", slog.Any("bus", bus))
	return nil
}

// lossless reports whether decoding raw into text introduced replacement characters,
// as encoding/json does for unpaired surrogate escapes.
func lossless(raw []byte, text string) bool {
	replaced := strings.Count(text, string(utf8.RuneError))
	if replaced == 0 {
		return true
	}
	present := bytes.Count(raw, []byte(string(utf8.RuneError))) +
		strings.Count(strings.ToLower(string(raw)), `\ufffd`)
	return replaced <= present
}

// checkContentType accepts an absent content type, JSON types and plain text.
func checkContentType(contentType string) error {
	if strings.TrimSpace(contentType) == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return relay.NewBadRequestError("invalid content type")
	}
	switch {
	case mediaType == "application/json", mediaType == "text/plain", strings.HasSuffix(mediaType, "+json"):
		return nil
	default:
		return relay.NewBadRequestError("unsupported content type: %s", mediaType)
	}
}
