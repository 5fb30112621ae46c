package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/webhook-relay/internal/config"
	"github.com/isometry/webhook-relay/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var lambdaEnvMapString = map[*string]boundEnvVar[string]{
	&config.Lambda.PayloadType: {
		Name:        "lambda-payload-type",
		Description: "The shape of the HTTP trigger payloads: 'api-gateway-v1', 'api-gateway-v2' or 'lambda-url'",
	},
}

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lambda",
		Aliases: []string{"l"},
	}

	cmd.AddCommand(
		cmdLambdaHTTP(),
		cmdLambdaEvent(),
	)

	bindEnvMap(cmd, lambdaEnvMapString)

	return cmd
}

// cmdLambdaHTTP runs the relay behind API Gateway or a Lambda function URL.
func cmdLambdaHTTP() *cobra.Command {
	return &cobra.Command{
		Use: "http",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeLambdaHTTP)
			switch config.Lambda.PayloadType {
			case runtime.PayloadAPIGatewayV1, runtime.PayloadAPIGatewayV2, runtime.PayloadLambdaURL:
			default:
				return errors.Errorf("unsupported lambda payload type: %s", config.Lambda.PayloadType)
			}
			rtm, err := setupLambda(cmd)
			if err != nil {
				return err
			}

			logger.Info("lambda starting...", "payloadType", config.Lambda.PayloadType)
			lambda.StartWithOptions(rtm.Lambda,
				lambda.WithContext(cmd.Context()))
			return nil
		},
	}
}

// cmdLambdaEvent runs the relay for EventBridge events.
func cmdLambdaEvent() *cobra.Command {
	return &cobra.Command{
		Use: "event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeLambdaEvent)
			rtm, err := setupLambda(cmd)
			if err != nil {
				return err
			}

			logger.Info("lambda starting...")
			lambda.StartWithOptions(rtm.LambdaForEvent,
				lambda.WithContext(cmd.Context()))
			return nil
		},
	}
}

func setupLambda(cmd *cobra.Command) (*runtime.Runtime, error) {
	hdl, err := newHandler(cmd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to setup lambda")
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithPayloadType(config.Lambda.PayloadType),
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
