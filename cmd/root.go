// Package cmd provides the entrypoint for the webhook-relay cli.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/handler"
	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configFilePath string
	logger         *slog.Logger
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the webhook-relay.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "webhook-relay",
		Short:        "Relay inbound messages to a messaging webhook",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = helpers.NewJSONLogger(os.Stdout,
				config.Global.Logging.Verbosity,
				config.Global.Logging.CallerTrace)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return cmdService().RunE(cmd, args)
			case config.ModeLambdaHTTP:
				return cmdLambdaHTTP().RunE(cmd, args)
			case config.ModeLambdaEvent:
				return cmdLambdaEvent().RunE(cmd, args)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Root command flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", defaultConfigFilePath, "path to the configuration file")

	// Configuration loading & defaults
	// The file is read before the dynamic flags are registered: its values become their defaults.
	configFilePath = configPathFromArgs(os.Args[1:])
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

const defaultConfigFilePath = "config.yaml"

// configPathFromArgs picks -c/--config out of the raw arguments, ignoring every other flag.
func configPathFromArgs(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.StringP("config", "c", defaultConfigFilePath, "")
	_ = fs.Parse(args)
	return *path
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
}

// newHandler creates the relay handler from the loaded configuration.
func newHandler(cmd *cobra.Command) (*handler.Handler, error) {
	logger.Debug("creating relay handler...")
	return handler.NewRelayHandler(
		handler.WithWebhookURL(config.Relay.WebhookURL),
		handler.WithSSMKey(config.Relay.WebhookURLSSMKey),
		handler.WithSettingsSource(config.Relay.SettingsSource),
		handler.WithAllowInsecureWebhook(config.Relay.AllowInsecureWebhook),
		handler.WithTimeout(config.Relay.Timeout),
		handler.WithContext(cmd.Context()),
		handler.WithLogger(logger.With("component", "relay-handler")))
}
