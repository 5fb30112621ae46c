// Package validation provides the checks applied to the relay configuration at activation time.
package validation

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
)

// ErrMissingWebhookURL is returned when no webhook URL is configured.
var ErrMissingWebhookURL = errors.New("missing webhook URL")

var validate = validator.New()

// ValidateWebhookURL checks that raw is an absolute https URL with a host.
// Plain http is only accepted when allowInsecure is set.
func ValidateWebhookURL(raw string, allowInsecure bool) error {
	if raw == "" {
		return ErrMissingWebhookURL
	}
	if err := validate.Var(raw, "url"); err != nil {
		return errors.New("webhook URL must be absolute")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !allowInsecure {
			return errors.New("webhook URL must use https")
		}
	default:
		return fmt.Errorf("unsupported webhook URL scheme: %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("webhook URL has no host")
	}
	if u.User != nil {
		return errors.New("webhook URL must not embed credentials")
	}
	return nil
}
