package handler

import (
	"net/http"
	"strconv"

	"github.com/isometry/webhook-relay/internal/models"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/pkg/errors"
)

// UpstreamStatusHeader carries the status answered by the webhook when it rejected the message.
const UpstreamStatusHeader = "X-Upstream-Status"

var errInternal = errors.New("internal error")

// Respond maps the outcome of a relay pipeline onto the response returned to the caller.
// The returned error only ever carries caller-safe diagnostics.
func Respond(bus *relay.Bus, err error) (models.Response, error) {
	if err == nil {
		if bus == nil || bus.Upstream == nil {
			return models.Response{StatusCode: http.StatusInternalServerError, Body: "relay incomplete"}, errInternal
		}
		bus.Stage = relay.Responded
		return models.Response{StatusCode: bus.Upstream.StatusCode, Body: bus.Upstream.Body}, nil
	}

	var rErr *relay.Error
	if !errors.As(err, &rErr) {
		return models.Response{StatusCode: http.StatusInternalServerError, Body: "relay failed"}, errInternal
	}

	switch rErr.Kind {
	case relay.BadRequest:
		return models.Response{StatusCode: http.StatusBadRequest, Body: "invalid request"}, rErr
	case relay.Misconfigured:
		return models.Response{StatusCode: http.StatusInternalServerError, Body: "relay misconfigured"}, rErr
	case relay.UpstreamRejected:
		resp := models.Response{StatusCode: http.StatusBadGateway, Body: "webhook rejected message"}
		if rErr.Upstream != nil {
			resp.Headers = map[string]string{UpstreamStatusHeader: strconv.Itoa(rErr.Upstream.StatusCode)}
		}
		return resp, rErr
	case relay.UpstreamUnreachable:
		if rErr.Timeout {
			return models.Response{StatusCode: http.StatusGatewayTimeout, Body: "webhook unreachable"}, rErr
		}
		return models.Response{StatusCode: http.StatusServiceUnavailable, Body: "webhook unreachable"}, rErr
	default:
		return models.Response{StatusCode: http.StatusInternalServerError, Body: "relay failed"}, errInternal
	}
}
