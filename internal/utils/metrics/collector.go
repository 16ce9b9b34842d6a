// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rovshanmuradov/aptos-swap-bot/internal/events"
	"github.com/rovshanmuradov/aptos-swap-bot/internal/types"
)

const namespace = "aptos_bot"

// Collector owns the swap metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	executions *prometheus.CounterVec
	legs       *prometheus.CounterVec
	duration   prometheus.Histogram
	inFlight   prometheus.Gauge
}

// NewCollector creates the metrics on a private registry, so several
// collectors (tests, multiple runners) never clash.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_executions_total",
				Help:      "Finished swap runs by terminal status",
			},
			[]string{"status"},
		),
		legs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_legs_total",
				Help:      "Submitted swap legs by direction and status",
			},
			[]string{"direction", "status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "swap_execution_duration_seconds",
				Help:      "Wall time of a swap run including the reverse delay",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
			},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "swaps_in_flight",
				Help:      "Swap runs currently executing",
			},
		),
	}

	c.registry.MustRegister(c.executions, c.legs, c.duration, c.inFlight)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SwapStarted marks a run as in flight.
func (c *Collector) SwapStarted() {
	c.inFlight.Inc()
}

// RecordExecution counts a finished run.
func (c *Collector) RecordExecution(status types.ExecutionStatus, duration time.Duration) {
	c.inFlight.Dec()
	c.executions.WithLabelValues(status.String()).Inc()
	c.duration.Observe(duration.Seconds())
}

// RecordLeg counts one submission.
func (c *Collector) RecordLeg(direction events.Direction, status types.ExecutionStatus) {
	c.legs.WithLabelValues(string(direction), status.String()).Inc()
}

// Subscribe feeds the collector from bus events.
func (c *Collector) Subscribe(bus *events.Bus) []events.Subscription {
	onFinish := events.On(func(_ context.Context, fin *events.SwapFinishedEvent) error {
		c.RecordExecution(fin.Status, fin.Duration)
		return nil
	})

	return []events.Subscription{
		bus.Subscribe(events.SwapStarted, events.On(func(context.Context, *events.SwapStartedEvent) error {
			c.SwapStarted()
			return nil
		})),
		bus.Subscribe(events.SwapLegSubmitted, events.On(func(_ context.Context, leg *events.LegSubmittedEvent) error {
			c.RecordLeg(leg.Direction, leg.Status)
			return nil
		})),
		bus.Subscribe(events.SwapCompleted, onFinish),
		bus.Subscribe(events.SwapFailed, onFinish),
	}
}
