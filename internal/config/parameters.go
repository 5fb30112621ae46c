// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Relay is a struct that contains the configuration of the messaging webhook relay.
	Relay relay
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

const (
	// ModeService runs the relay behind a standalone HTTP server.
	ModeService = "service"
	// ModeLambdaHTTP runs the relay as a Lambda function behind API Gateway or a function URL.
	ModeLambdaHTTP = "lambda-http"
	// ModeLambdaEvent runs the relay as a Lambda function triggered by EventBridge.
	ModeLambdaEvent = "lambda-event"
)

const (
	// SettingsSourceStatic resolves the webhook URL once, at activation.
	SettingsSourceStatic = "static"
	// SettingsSourceHeader reads the webhook URL from the host-provided component settings header.
	SettingsSourceHeader = "header"
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"lambda-http"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type relay struct {
	// WebhookURL is the messaging webhook every message is relayed to.
	WebhookURL string `yaml:"webhookUrl,omitempty"`
	// WebhookURLSSMKey is the SSM parameter holding the webhook URL when WebhookURL is empty.
	WebhookURLSSMKey string `yaml:"webhookUrlSSMKey,omitempty"`
	// SettingsSource is either 'static' or 'header'.
	SettingsSource string `yaml:"settingsSource,omitempty" default:"static"`
	// AllowInsecureWebhook permits plain http webhook URLs.
	AllowInsecureWebhook bool `yaml:"allowInsecureWebhook,omitempty"`
	// Timeout bounds the outbound webhook call. Zero leaves it to the transport and the host.
	Timeout time.Duration `yaml:"timeout,omitempty" default:"0s"`
}

type service struct {
	Path        string        `yaml:"path,omitempty" default:"/"`
	MetricsPath string        `yaml:"metricsPath,omitempty" default:"/metrics"`
	HealthPath  string        `yaml:"healthPath,omitempty" default:"/healthz"`
	Addr        string        `yaml:"addr,omitempty"`
	Port        string        `yaml:"port,omitempty" default:"8080"`
	Timeout     time.Duration `yaml:"timeout,omitempty" default:"5s"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Relay),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global  global  `yaml:"global,omitempty"`
		Relay   relay   `yaml:"relay,omitempty"`
		Service service `yaml:"service,omitempty"`
		Lambda  lambda  `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Relay = a.Relay
	Service = a.Service
	Lambda = a.Lambda

	return nil
}
