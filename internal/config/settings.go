package config

import (
	"encoding/json"
	"strings"

	"github.com/isometry/webhook-relay/internal/validation"
	"github.com/pkg/errors"
)

// ErrInvalidSettings is returned when the component settings header is absent or malformed.
var ErrInvalidSettings = errors.New("invalid component settings")

// SettingsHeader is the header through which the edge host passes the component settings.
const SettingsHeader = "x-edgee-component-settings"

// Settings is the immutable relay configuration handed to every invocation.
type Settings struct {
	WebhookURL string
}

// NewSettings validates the webhook URL and returns the matching Settings.
func NewSettings(webhookURL string, allowInsecure bool) (Settings, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if err := validation.ValidateWebhookURL(webhookURL, allowInsecure); err != nil {
		return Settings{}, err
	}
	return Settings{WebhookURL: webhookURL}, nil
}

// SettingsFromHeaders reads the component settings header from lower-cased request headers.
// The header holds a JSON object such as {"webhook_url": "https://hooks.slack.com/..."}.
func SettingsFromHeaders(headers map[string]string, allowInsecure bool) (Settings, error) {
	raw, found := headers[SettingsHeader]
	if !found {
		return Settings{}, errors.Wrapf(ErrInvalidSettings, "missing '%s' header", SettingsHeader)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return Settings{}, errors.Wrapf(ErrInvalidSettings, "invalid '%s' header: %v", SettingsHeader, err)
	}

	return NewSettings(values["webhook_url"], allowInsecure)
}
