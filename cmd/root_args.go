package cmd

import (
	"time"

	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'service', 'lambda-http' and 'lambda-event'",
		Short:       helpers.Ptr("m"),
	},
	&config.Relay.WebhookURL: {
		Name:        "webhook-url",
		Description: "The messaging webhook URL every message is relayed to",
		Short:       helpers.Ptr("w"),
		Env:         helpers.Ptr("WEBHOOK_URL"),
	},
	&config.Relay.WebhookURLSSMKey: {
		Name:        "webhook-url-ssm-key",
		Description: "The SSM parameter holding the webhook URL, used when no webhook URL is given",
	},
	&config.Relay.SettingsSource: {
		Name:        "settings-source",
		Description: "Where the webhook URL is read from. Supported values are 'static' and 'header'",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Relay.AllowInsecureWebhook: {
		Name:        "allow-insecure-webhook",
		Description: "Permit plain http webhook URLs",
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Relay.Timeout: {
		Name:        "webhook-timeout",
		Description: "Bound on the outbound webhook call (0 disables it)",
	},
}
