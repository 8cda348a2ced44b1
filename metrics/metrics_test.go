package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/hitl/metrics"
	"github.com/viant/hitl/service/awaiter"
	"github.com/viant/hitl/service/event"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	var m *metrics.Metrics
	observe := func(ctx context.Context, e *event.Event) { m.Observe(ctx, e) }
	approvals := awaiter.New[bool]("approval", awaiter.WithObserver(observe))
	clarifications := awaiter.New[string]("clarification", awaiter.WithObserver(observe))

	var err error
	m, err = metrics.New(registry, approvals, clarifications)
	require.NoError(t, err)

	approvals.MarkPending(ctx, "plan-1")
	approvals.MarkPending(ctx, "plan-2")
	assert.True(t, approvals.Deliver(ctx, "plan-1", true))
	assert.False(t, approvals.Deliver(ctx, "plan-1", false))
	approvals.Wait(ctx, "plan-1")
	clarifications.Wait(ctx, "req-1", awaiter.WithTimeout(time.Millisecond))

	assert.Equal(t, float64(1), promtest.ToFloat64(m.WaitOutcomes.WithLabelValues("approval", "resolved")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.WaitOutcomes.WithLabelValues("clarification", "timed_out")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.Deliveries.WithLabelValues("approval", "accepted")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.Deliveries.WithLabelValues("approval", "discarded")))
	assert.Equal(t, 2, promtest.CollectAndCount(m.WaitSeconds))

	families, err := registry.Gather()
	require.NoError(t, err)
	slots := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "hitl_slots" {
			continue
		}
		for _, metric := range family.GetMetric() {
			var kind, status string
			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "kind":
					kind = label.GetValue()
				case "status":
					status = label.GetValue()
				}
			}
			slots[kind+"/"+status] = metric.GetGauge().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"approval/pending":        1,
		"approval/resolved":       1,
		"approval/timed_out":      0,
		"clarification/pending":   0,
		"clarification/resolved":  0,
		"clarification/timed_out": 1,
	}, slots)
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := metrics.New(registry)
	require.NoError(t, err)
	_, err = metrics.New(registry)
	assert.Error(t, err)
}
