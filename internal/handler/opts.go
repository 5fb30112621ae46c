package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/isometry/webhook-relay/internal/handler/processor"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithContext sets the context used while resolving settings at activation.
func WithContext(ctx context.Context) Option {
	return func(h *Handler) {
		h.ctx = ctx
	}
}

// WithWebhookURL sets the messaging webhook URL.
func WithWebhookURL(url string) Option {
	return func(h *Handler) {
		h.webhookURL = url
	}
}

// WithSSMKey sets the SSM parameter holding the webhook URL, used when no URL is given.
func WithSSMKey(key string) Option {
	return func(h *Handler) {
		h.ssmKey = key
	}
}

// WithSecretStore replaces the AWS controller used to resolve the SSM key.
func WithSecretStore(store SecretStore) Option {
	return func(h *Handler) {
		h.secretStore = store
	}
}

// WithSettingsSource selects where the webhook URL comes from: 'static' or 'header'.
func WithSettingsSource(source string) Option {
	return func(h *Handler) {
		h.settingsSource = source
	}
}

// WithAllowInsecureWebhook permits plain http webhook URLs.
func WithAllowInsecureWebhook(allow bool) Option {
	return func(h *Handler) {
		h.allowInsecure = allow
	}
}

// WithTimeout bounds the outbound webhook call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		h.timeout = timeout
	}
}

// WithHTTPClient sets the client performing the outbound webhook call.
func WithHTTPClient(doer processor.Doer) Option {
	return func(h *Handler) {
		h.doer = doer
	}
}
