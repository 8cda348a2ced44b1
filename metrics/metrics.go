// Package metrics exports registry state and wait outcomes to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/hitl/service/awaiter"
	"github.com/viant/hitl/service/event"
)

var (
	slotsDesc    = prometheus.NewDesc("hitl_slots", "The number of live wait slots by status.", []string{"kind", "status"}, nil)
	waitersDesc  = prometheus.NewDesc("hitl_waiters", "The number of goroutines currently waiting.", []string{"kind"}, nil)
	detachedDesc = prometheus.NewDesc("hitl_detached_slots", "The number of removed slots that still have waiters.", []string{"kind"}, nil)
)

// StatsSource is implemented by every awaiter.Registry.
type StatsSource interface {
	Kind() string
	Stats() awaiter.Stats
}

// Metrics counts wait outcomes and deliveries from registry events and
// reports slot gauges on scrape.
type Metrics struct {
	WaitOutcomes *prometheus.CounterVec
	WaitSeconds  *prometheus.HistogramVec
	Deliveries   *prometheus.CounterVec

	sources []StatsSource
}

var _ prometheus.Collector = new(Metrics)

// New creates the metrics and registers them on registerer.
func New(registerer prometheus.Registerer, sources ...StatsSource) (*Metrics, error) {
	m := &Metrics{
		WaitOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hitl",
			Name:      "wait_outcomes_total",
			Help:      "The number of completed waits by outcome.",
		}, []string{"kind", "status"}),
		WaitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hitl",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for a human-supplied result.",
			Buckets:   []float64{0.01, 0.1, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"kind"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hitl",
			Name:      "deliveries_total",
			Help:      "The number of delivered results by whether the registry accepted them.",
		}, []string{"kind", "result"}),
		sources: sources,
	}
	if err := registerer.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Describe(descCh chan<- *prometheus.Desc) {
	descCh <- slotsDesc
	descCh <- waitersDesc
	descCh <- detachedDesc
	m.WaitOutcomes.Describe(descCh)
	m.WaitSeconds.Describe(descCh)
	m.Deliveries.Describe(descCh)
}

func (m *Metrics) Collect(metricsCh chan<- prometheus.Metric) {
	for _, source := range m.sources {
		kind := source.Kind()
		stats := source.Stats()
		metricsCh <- prometheus.MustNewConstMetric(slotsDesc, prometheus.GaugeValue, float64(stats.Pending), kind, awaiter.StatusPending.String())
		metricsCh <- prometheus.MustNewConstMetric(slotsDesc, prometheus.GaugeValue, float64(stats.Resolved), kind, awaiter.StatusResolved.String())
		metricsCh <- prometheus.MustNewConstMetric(slotsDesc, prometheus.GaugeValue, float64(stats.TimedOut), kind, awaiter.StatusTimedOut.String())
		metricsCh <- prometheus.MustNewConstMetric(waitersDesc, prometheus.GaugeValue, float64(stats.Waiters), kind)
		metricsCh <- prometheus.MustNewConstMetric(detachedDesc, prometheus.GaugeValue, float64(stats.Detached), kind)
	}
	m.WaitOutcomes.Collect(metricsCh)
	m.WaitSeconds.Collect(metricsCh)
	m.Deliveries.Collect(metricsCh)
}

// Observe updates counters from a registry event; it satisfies event.Observer.
func (m *Metrics) Observe(_ context.Context, e *event.Event) {
	switch e.Topic {
	case event.TopicWaitDone:
		m.WaitOutcomes.WithLabelValues(e.Kind, e.Status).Inc()
		m.WaitSeconds.WithLabelValues(e.Kind).Observe(e.Waited.Seconds())
	case event.TopicSlotResolved:
		m.Deliveries.WithLabelValues(e.Kind, "accepted").Inc()
	case event.TopicDeliveryDiscarded:
		m.Deliveries.WithLabelValues(e.Kind, "discarded").Inc()
	}
}
