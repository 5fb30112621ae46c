package processor

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/isometry/webhook-relay/internal/helpers"
	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/isometry/webhook-relay/internal/relay"
	"github.com/pkg/errors"
)

// MaxUpstreamBodyBytes caps how much of the webhook answer is read.
const MaxUpstreamBodyBytes = 64 << 10

// Doer performs a single HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type dispatcherProcessor struct {
	logger  *slog.Logger
	doer    Doer
	timeout time.Duration
}

// WithTimeout bounds the outbound call. A zero duration leaves it to the transport and the host.
func WithTimeout(timeout time.Duration) Option {
	return func(p Processor) {
		if d, ok := p.(*dispatcherProcessor); ok {
			d.timeout = timeout
		}
	}
}

// NewHTTPClient returns the default webhook client. Redirects are not followed.
func NewHTTPClient() *http.Client {
	return &http.Client{CheckRedirect: stopRedirects}
}

func stopRedirects(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// withoutRedirects keeps an *http.Client from turning one dispatch into several requests.
// A 3xx answer is then handled like any other non-2xx status.
func withoutRedirects(doer Doer) Doer {
	client, ok := doer.(*http.Client)
	if !ok {
		return doer
	}
	c := *client
	c.CheckRedirect = stopRedirects
	return &c
}

// NewDispatcherProcessor returns the stage sending the built request to the webhook, once.
func NewDispatcherProcessor(doer Doer, opts ...Option) Processor {
	if doer == nil {
		doer = NewHTTPClient()
	}
	_inst := &dispatcherProcessor{doer: withoutRedirects(doer), logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *dispatcherProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:dispatcher")
}

func (p *dispatcherProcessor) Process(_ context.Context, bus *relay.Bus) error {
	if bus.Outbound == nil {
		return errors.New("no outbound request on bus")
	}

	req := bus.Outbound
	if p.timeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), p.timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	p.logger.Debug("dispatching webhook request...")
	start := time.Now()
	resp, err := p.doer.Do(req)
	if err != nil {
		timeout := isTimeout(err)
		p.observe(relay.UpstreamUnreachable, start)
		p.logger.Warn("webhook unreachable", slog.Any("error", err), slog.Bool("timeout", timeout))
		return relay.NewUpstreamUnreachableError(errors.Wrap(err, "webhook request failed"), timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxUpstreamBodyBytes))
	if err != nil {
		p.logger.Warn("failed to read webhook response body", slog.Any("error", err))
	}
	upstream := &relay.UpstreamResponse{StatusCode: resp.StatusCode, Body: string(body)}
	bus.Upstream = upstream

	if resp.StatusCode/100 != 2 {
		p.observe(relay.UpstreamRejected, start)
		p.logger.Warn("webhook rejected message", slog.Int("status", resp.StatusCode))
		return relay.NewUpstreamRejectedError(upstream)
	}

	p.observe(metrics.OutcomeDelivered, start)
	bus.Stage = relay.Dispatched
	p.logger.Info("message delivered", slog.Int("status", resp.StatusCode))
	return nil
}

func (p *dispatcherProcessor) observe(outcome relay.Kind, start time.Time) {
	metrics.DispatchDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
