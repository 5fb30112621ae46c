// Package handler relays inbound messages to the configured messaging webhook.
package handler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/controllers/aws"
	"github.com/isometry/webhook-relay/internal/handler/processor"
	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/isometry/webhook-relay/internal/validation"
	"github.com/pkg/errors"
)

type Option func(*Handler)

// SecretStore resolves configuration values kept outside the deployment, such as SSM parameters.
type SecretStore interface {
	GetSecret(key string, encrypted bool) (*string, error)
}

// Handler owns the immutable relay settings and runs one pipeline per invocation.
type Handler struct {
	ctx    context.Context
	logger *slog.Logger

	doer           processor.Doer
	timeout        time.Duration
	settingsSource string
	allowInsecure  bool
	webhookURL     string
	ssmKey         string
	secretStore    SecretStore

	settings    config.Settings
	settingsErr error
}

// NewRelayHandler creates the handler and resolves the webhook settings once.
// An unusable webhook URL does not fail the construction: every invocation is then answered as
// misconfigured without any outbound call. An unknown settings source is returned as an error.
func NewRelayHandler(options ...Option) (*Handler, error) {
	_inst := &Handler{
		logger:         helpers.NewNoopLogger(),
		settingsSource: config.SettingsSourceStatic,
	}
	for _, opt := range options {
		opt(_inst)
	}

	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}
	if _inst.doer == nil {
		_inst.doer = processor.NewHTTPClient()
	}

	switch _inst.settingsSource {
	case config.SettingsSourceHeader:
		_inst.logger.Info("webhook settings are read from each request", slog.String("header", config.SettingsHeader))
		return _inst, nil
	case config.SettingsSourceStatic:
		_inst.settings, _inst.settingsErr = _inst.resolveSettings()
		if _inst.settingsErr != nil {
			_inst.logger.Error("relay is misconfigured, every request will be rejected", slog.Any("error", _inst.settingsErr))
		} else {
			_inst.logger.Debug("webhook settings resolved")
		}
		return _inst, nil
	default:
		return nil, errors.Errorf("unsupported settings source: %s", _inst.settingsSource)
	}
}

func (h *Handler) resolveSettings() (config.Settings, error) {
	webhookURL := strings.TrimSpace(h.webhookURL)
	if webhookURL == "" && h.ssmKey != "" {
		if h.secretStore == nil {
			awsCtl, err := aws.NewController(
				aws.WithLogger(h.logger.With("component", "aws-controller")),
				aws.WithContext(h.ctx))
			if err != nil {
				return config.Settings{}, errors.Wrap(err, "failed to create AWS controller")
			}
			h.secretStore = awsCtl
		}
		value, err := h.secretStore.GetSecret(h.ssmKey, true)
		if err != nil {
			return config.Settings{}, errors.Wrap(err, "failed to resolve webhook URL")
		}
		webhookURL = awssdk.ToString(value)
	}
	return config.NewSettings(webhookURL, h.allowInsecure)
}

// Settings returns the resolved settings and the activation error, if any.
func (h *Handler) Settings() (config.Settings, error) {
	return h.settings, h.settingsErr
}

func (h *Handler) settingsFor(headers map[string]string) (config.Settings, error) {
	if h.settingsSource == config.SettingsSourceHeader {
		settings, err := config.SettingsFromHeaders(headers, h.allowInsecure)
		if err != nil {
			return config.Settings{}, relay.NewMisconfiguredError(misconfiguredReason(err), err)
		}
		return settings, nil
	}
	if h.settingsErr != nil {
		return config.Settings{}, relay.NewMisconfiguredError(misconfiguredReason(h.settingsErr), h.settingsErr)
	}
	return h.settings, nil
}

// misconfiguredReason keeps resolution details, such as SSM errors, away from callers.
func misconfiguredReason(err error) string {
	switch {
	case errors.Is(err, validation.ErrMissingWebhookURL):
		return "missing webhook URL"
	case errors.Is(err, config.ErrInvalidSettings):
		return "invalid component settings"
	default:
		return "invalid webhook URL"
	}
}

// Process relays one inbound request: decode, build, dispatch, then map the outcome.
// The returned error is safe to show to the caller.
func (h *Handler) Process(ctx context.Context, req models.Request) (models.Response, error) {
	logger := h.logger.With(slog.String("invocation", uuid.NewString()))
	logger.Info("processing request...")

	var bus *relay.Bus
	settings, err := h.settingsFor(req.Headers)
	if err == nil {
		bus = relay.NewBus(settings, req.Body, req.Headers["content-type"])
		err = processor.Process(ctx, logger, bus, processor.Pipeline(h.doer, processor.WithTimeout(h.timeout))...)
	}

	response, respErr := Respond(bus, err)
	outcome := metrics.OutcomeDelivered
	if err != nil {
		outcome = string(relay.KindOf(err))
		if outcome == "" {
			outcome = "internal"
		}
		logger.Warn("relay failed", slog.Any("error", err), slog.Int("status", response.StatusCode))
	} else {
		logger.Info("relay complete", slog.Int("status", response.StatusCode))
	}
	metrics.RelaysTotal.WithLabelValues(outcome).Inc()

	return response, respErr
}
