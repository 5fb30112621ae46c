package relay

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/pkg/errors"
)

// maxDiagnosticBytes caps the part of the upstream body echoed to the caller.
const maxDiagnosticBytes = 256

// Kind classifies a relay failure. Each kind maps to a fixed status class returned to the caller.
type Kind string

const (
	// BadRequest marks a malformed or empty inbound payload.
	BadRequest Kind = "bad_request"
	// UpstreamRejected marks a non-2xx answer from the messaging webhook.
	UpstreamRejected Kind = "upstream_rejected"
	// UpstreamUnreachable marks a transport failure while reaching the messaging webhook.
	UpstreamUnreachable Kind = "upstream_unreachable"
	// Misconfigured marks an absent or invalid webhook URL.
	Misconfigured Kind = "misconfigured"
)

// Error is the terminal failure of a single relay invocation.
// Error() returns a message that is safe to hand back to the caller; the underlying cause is only
// reachable through Unwrap and LogValue.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Timeout is set on UpstreamUnreachable errors caused by a deadline.
	Timeout bool
	// Upstream holds the remote answer of UpstreamRejected errors.
	Upstream *UpstreamResponse
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// LogValue exposes the kind, the cause and the upstream answer to structured logs.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(e.Kind)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	if e.Upstream != nil {
		attrs = append(attrs, slog.Int("upstreamStatus", e.Upstream.StatusCode))
	}
	if e.Timeout {
		attrs = append(attrs, slog.Bool("timeout", true))
	}
	return slog.GroupValue(attrs...)
}

// NewBadRequestError reports a client fault in the inbound payload.
func NewBadRequestError(format string, args ...any) error {
	return &Error{Kind: BadRequest, Message: fmt.Sprintf(format, args...)}
}

// NewMisconfiguredError reports an absent or invalid webhook configuration.
// The reason is shown to the caller, the cause is only logged.
func NewMisconfiguredError(reason string, cause error) error {
	return &Error{Kind: Misconfigured, Message: "relay is misconfigured: " + reason, Cause: cause}
}

// NewUpstreamRejectedError reports a non-2xx answer of the messaging webhook.
func NewUpstreamRejectedError(upstream *UpstreamResponse) error {
	return &Error{
		Kind:     UpstreamRejected,
		Message:  rejectedMessage(upstream),
		Cause:    errors.Errorf("webhook answered %d: %s", upstream.StatusCode, upstream.Body),
		Upstream: upstream,
	}
}

func rejectedMessage(upstream *UpstreamResponse) string {
	msg := fmt.Sprintf("webhook rejected message with status %d", upstream.StatusCode)
	if body := strings.TrimSpace(upstream.Body); body != "" {
		msg += ": " + helpers.Truncate(body, maxDiagnosticBytes)
	}
	return msg
}

// NewUpstreamUnreachableError reports a transport failure. The cause never reaches the caller.
func NewUpstreamUnreachableError(cause error, timeout bool) error {
	msg := "webhook endpoint unreachable"
	if timeout {
		msg = "webhook endpoint timed out"
	}
	return &Error{Kind: UpstreamUnreachable, Message: msg, Cause: cause, Timeout: timeout}
}

// KindOf returns the Kind carried by err, or an empty Kind when err is not a relay error.
func KindOf(err error) Kind {
	var rErr *Error
	if errors.As(err, &rErr) {
		return rErr.Kind
	}
	return ""
}
