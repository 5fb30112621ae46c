// Package runtime adapts the relay handler to the Lambda and HTTP server invocation triggers.
package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/webhook-relay/internal/handler"
	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/relay"
)

// Supported Lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

// MaxBodyBytes caps the inbound body read in service mode.
const MaxBodyBytes = 1 << 20

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithPayloadType selects the Lambda response shape.
func WithPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// HTTPRequest is the Lambda HTTP trigger payload. API Gateway v2 and function URL payloads carry the
// method in requestContext.http.method, API Gateway v1 payloads in httpMethod.
type HTTPRequest struct {
	events.APIGatewayV2HTTPRequest
	HTTPMethod string `json:"httpMethod"`
}

// Method returns the HTTP method of the request, whichever payload version carried it.
func (r HTTPRequest) Method() string {
	if r.HTTPMethod != "" {
		return r.HTTPMethod
	}
	return r.RequestContext.HTTP.Method
}

type Runtime struct {
	*handler.Handler
	logger      *slog.Logger
	payloadType string
}

// NewRuntime creates a new runtime instance
func NewRuntime(handler *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: handler, payloadType: PayloadAPIGatewayV2}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// Lambda is the Lambda handler for HTTP-triggered invocations.
// Relay failures are reported through the response status; the returned error only signals an unusable payload type.
func (r *Runtime) Lambda(ctx context.Context, req HTTPRequest) (any, error) {
	r.logger.Info("received API Gateway request")

	var response models.Response
	var err error
	if method := req.Method(); method != "" && method != http.MethodPost {
		r.logger.Debug("rejecting request...", "reason", "method not allowed", slog.String("method", method))
		response, err = models.Response{StatusCode: http.StatusMethodNotAllowed, Body: "method not allowed"}, nil
	} else if body, decodeErr := decodeBody(req.Body, req.IsBase64Encoded); decodeErr != nil {
		r.logger.Warn("failed to decode request body", slog.Any("error", decodeErr))
		response, err = handler.Respond(nil, relay.NewBadRequestError("invalid base64 request body"))
	} else {
		response, err = r.Handler.Process(ctx, models.Request{
			Method:  req.Method(),
			Body:    body,
			Headers: helpers.LowerHeaderMap(req.Headers),
		})
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range response.Headers {
		headers[k] = v
	}
	body := helpers.EncodeBody(response, err)

	switch r.payloadType {
	case PayloadAPIGatewayV1:
		return events.APIGatewayProxyResponse{
			Body:       body,
			Headers:    headers,
			StatusCode: response.StatusCode,
		}, nil
	case PayloadAPIGatewayV2:
		return events.APIGatewayV2HTTPResponse{
			Body:       body,
			Headers:    headers,
			StatusCode: response.StatusCode,
		}, nil
	case PayloadLambdaURL:
		return events.LambdaFunctionURLResponse{
			Body:       body,
			Headers:    headers,
			StatusCode: response.StatusCode,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

// LambdaForEvent is the Lambda handler for EventBridge-triggered invocations. The event detail is the inbound message.
// Failures are never returned as errors so the host does not retry the delivery.
func (r *Runtime) LambdaForEvent(ctx context.Context, event models.Event) (models.Response, error) {
	r.logger.Info("received EventBridge event", slog.String("id", event.ID), slog.String("detailType", event.DetailType))

	response, err := r.Handler.Process(ctx, models.Request{
		Body:    event.Detail,
		Headers: map[string]string{"content-type": "application/json"},
	})
	if err != nil {
		r.logger.Error("event relay failed", slog.String("id", event.ID), slog.Int("status", response.StatusCode), slog.Any("error", err))
	}
	response.Body = helpers.EncodeBody(response, err)
	return response, nil
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		break
	default:
		r.logger.Debug("rejecting HTTP request...", slog.Any("requestor", req.RemoteAddr), "reason", "method not allowed", slog.Any("method", req.Method))
		resp.Header().Set("Allow", http.MethodPost)
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusMethodNotAllowed, Body: "method not allowed"}, nil, resp)
		return
	}

	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))
	body, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, MaxBodyBytes))
	if err != nil {
		r.logger.Warn("failed to read request body", slog.Any("error", err))
		response, respErr := handler.Respond(nil, relay.NewBadRequestError("unreadable request body"))
		helpers.RespondHTTP(response, respErr, resp)
		return
	}

	response, err := r.Handler.Process(req.Context(), models.Request{
		Method:  req.Method,
		Body:    body,
		Headers: helpers.LowerHeaders(req.Header),
	})
	helpers.RespondHTTP(response, err, resp)
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	return base64.StdEncoding.DecodeString(body)
}
