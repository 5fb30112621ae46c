package runtime_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/webhook-relay/internal/handler"
	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/isometry/webhook-relay/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func setupRuntime(t *testing.T, status int, opts ...runtime.Option) (*runtime.Runtime, chan relay.WebhookPayload) {
	t.Helper()
	received := make(chan relay.WebhookPayload, 4)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload relay.WebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)

	hdl, err := handler.NewRelayHandler(
		handler.WithWebhookURL(srv.URL),
		handler.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return runtime.NewRuntime(hdl, opts...), received
}

func TestRuntime_ServeHTTP(t *testing.T) {
	testCases := []struct {
		Name           string
		Method         string
		Body           string
		ExpectedStatus int
		ExpectedError  string
	}{
		{
			Name:           "valid",
			Method:         http.MethodPost,
			Body:           `{"message": "hello world!"}`,
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:           "missing_message",
			Method:         http.MethodPost,
			Body:           `{}`,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedError:  "missing 'message' field in request body",
		},
		{
			Name:           "method_not_allowed",
			Method:         http.MethodGet,
			ExpectedStatus: http.StatusMethodNotAllowed,
		},
		{
			Name:           "body_too_large",
			Method:         http.MethodPost,
			Body:           `{"message": "` + strings.Repeat("x", runtime.MaxBodyBytes) + `"}`,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedError:  "unreadable request body",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rtm, received := setupRuntime(t, http.StatusOK)

			req := httptest.NewRequest(tc.Method, "/", strings.NewReader(tc.Body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			rtm.ServeHTTP(rr, req)

			assert.Equal(t, tc.ExpectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var env envelope
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
			assert.Equal(t, tc.ExpectedError, env.Error)

			if tc.ExpectedStatus == http.StatusOK {
				assert.Equal(t, "ok", env.Message)
				assert.Equal(t, "hello world!", (<-received).Text)
			} else {
				assert.Empty(t, received)
			}
		})
	}
}

func TestRuntime_Lambda(t *testing.T) {
	testCases := []struct {
		Name        string
		PayloadType string
		Request     events.APIGatewayV2HTTPRequest
		HTTPMethod  string
		Expected    int
	}{
		{
			Name:        "api_gateway_v2",
			PayloadType: runtime.PayloadAPIGatewayV2,
			Request: events.APIGatewayV2HTTPRequest{
				Body:    `{"message": "hello world!"}`,
				Headers: map[string]string{"Content-Type": "application/json"},
				RequestContext: events.APIGatewayV2HTTPRequestContext{
					HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost},
				},
			},
			Expected: http.StatusOK,
		},
		{
			Name:        "api_gateway_v1",
			PayloadType: runtime.PayloadAPIGatewayV1,
			Request:     events.APIGatewayV2HTTPRequest{Body: `{"message": "hello world!"}`},
			Expected:    http.StatusOK,
		},
		{
			Name:        "api_gateway_v1_method_not_allowed",
			PayloadType: runtime.PayloadAPIGatewayV1,
			Request:     events.APIGatewayV2HTTPRequest{Body: `{"message": "hello world!"}`},
			HTTPMethod:  http.MethodPut,
			Expected:    http.StatusMethodNotAllowed,
		},
		{
			Name:        "api_gateway_v1_post",
			PayloadType: runtime.PayloadAPIGatewayV1,
			Request:     events.APIGatewayV2HTTPRequest{Body: `{"message": "hello world!"}`},
			HTTPMethod:  http.MethodPost,
			Expected:    http.StatusOK,
		},
		{
			Name:        "lambda_url_base64",
			PayloadType: runtime.PayloadLambdaURL,
			Request: events.APIGatewayV2HTTPRequest{
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"message": "hello world!"}`)),
				IsBase64Encoded: true,
			},
			Expected: http.StatusOK,
		},
		{
			Name:        "invalid_base64",
			PayloadType: runtime.PayloadLambdaURL,
			Request:     events.APIGatewayV2HTTPRequest{Body: "%%%", IsBase64Encoded: true},
			Expected:    http.StatusBadRequest,
		},
		{
			Name:        "missing_message",
			PayloadType: runtime.PayloadAPIGatewayV2,
			Request:     events.APIGatewayV2HTTPRequest{Body: `{}`},
			Expected:    http.StatusBadRequest,
		},
		{
			Name:        "method_not_allowed",
			PayloadType: runtime.PayloadAPIGatewayV2,
			Request: events.APIGatewayV2HTTPRequest{
				RequestContext: events.APIGatewayV2HTTPRequestContext{
					HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodGet},
				},
			},
			Expected: http.StatusMethodNotAllowed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rtm, received := setupRuntime(t, http.StatusOK, runtime.WithPayloadType(tc.PayloadType))

			out, err := rtm.Lambda(context.Background(), runtime.HTTPRequest{
				APIGatewayV2HTTPRequest: tc.Request,
				HTTPMethod:              tc.HTTPMethod,
			})
			require.NoError(t, err)

			var status int
			var body string
			switch resp := out.(type) {
			case events.APIGatewayProxyResponse:
				status, body = resp.StatusCode, resp.Body
			case events.APIGatewayV2HTTPResponse:
				status, body = resp.StatusCode, resp.Body
			case events.LambdaFunctionURLResponse:
				status, body = resp.StatusCode, resp.Body
			default:
				t.Fatalf("unexpected response type %T", out)
			}
			assert.Equal(t, tc.Expected, status)

			var env envelope
			require.NoError(t, json.Unmarshal([]byte(body), &env))
			if tc.Expected == http.StatusOK {
				assert.Equal(t, "ok", env.Message)
			} else {
				assert.Empty(t, received)
			}
		})
	}
}

func TestHTTPRequest_Method(t *testing.T) {
	testCases := []struct {
		Name     string
		Payload  string
		Expected string
	}{
		{
			Name:     "api_gateway_v1",
			Payload:  `{"httpMethod": "GET", "body": "{}"}`,
			Expected: http.MethodGet,
		},
		{
			Name:     "api_gateway_v2",
			Payload:  `{"version": "2.0", "requestContext": {"http": {"method": "DELETE"}}}`,
			Expected: http.MethodDelete,
		},
		{
			Name:     "no_method",
			Payload:  `{"body": "{}"}`,
			Expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var req runtime.HTTPRequest
			require.NoError(t, json.Unmarshal([]byte(tc.Payload), &req))
			assert.Equal(t, tc.Expected, req.Method())
		})
	}
}

func TestRuntime_LambdaUnsupportedPayloadType(t *testing.T) {
	rtm, _ := setupRuntime(t, http.StatusOK, runtime.WithPayloadType("alb"))
	_, err := rtm.Lambda(context.Background(), runtime.HTTPRequest{
		APIGatewayV2HTTPRequest: events.APIGatewayV2HTTPRequest{Body: `{"message": "hi"}`},
	})
	assert.Error(t, err)
}

func TestRuntime_LambdaForEvent(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		rtm, received := setupRuntime(t, http.StatusOK)
		resp, err := rtm.LambdaForEvent(context.Background(), models.Event{
			ID:     "evt-1",
			Detail: json.RawMessage(`{"message": "from eventbridge"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"message": "ok"}`, resp.Body)
		assert.Equal(t, "from eventbridge", (<-received).Text)
	})

	t.Run("rejected_is_not_an_error", func(t *testing.T) {
		rtm, _ := setupRuntime(t, http.StatusGone)
		resp, err := rtm.LambdaForEvent(context.Background(), models.Event{
			ID:     "evt-2",
			Detail: json.RawMessage(`{"message": "from eventbridge"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, resp.Body, "status 410")
	})

	t.Run("missing_detail", func(t *testing.T) {
		rtm, _ := setupRuntime(t, http.StatusOK)
		resp, err := rtm.LambdaForEvent(context.Background(), models.Event{ID: "evt-3"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
