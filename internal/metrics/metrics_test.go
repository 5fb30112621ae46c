package metrics_test

import (
	"testing"

	"github.com/isometry/webhook-relay/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { metrics.MustRegister(reg) })

	metrics.RelaysTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()
	metrics.DispatchDuration.WithLabelValues(metrics.OutcomeDelivered).Observe(0.01)

	count, err := testutil.GatherAndCount(reg, "webhook_relay_invocations_total", "webhook_relay_dispatch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Panics(t, func() { metrics.MustRegister(reg) })
}
