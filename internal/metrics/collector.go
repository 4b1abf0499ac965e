// Package metrics exposes provider and bus state to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kazi-app/ups/internal/ups"
)

const namespace = "ups"

// Source is what the collector reads at scrape time.
type Source interface {
	Metrics() ups.Metrics
	HealthStatus() ups.HealthStatus
}

var states = []ups.State{
	ups.StateUninitialized,
	ups.StateInitializing,
	ups.StateReady,
	ups.StateDegraded,
	ups.StateTornDown,
}

// Collector reads a Source on every scrape, so the numbers are never
// older than the scrape itself.
type Collector struct {
	src Source

	published   *prometheus.Desc
	delivered   *prometheus.Desc
	dropped     *prometheus.Desc
	executed    *prometheus.Desc
	errors      *prometheus.Desc
	panics      *prometheus.Desc
	subscribers *prometheus.Desc
	queueDepth  *prometheus.Desc
	latency     *prometheus.Desc

	healthy     *prometheus.Desc
	state       *prometheus.Desc
	checks      *prometheus.Desc
	transitions *prometheus.Desc
	features    *prometheus.Desc
	comments    *prometheus.Desc
	unread      *prometheus.Desc
	exports     *prometheus.Desc
	pending     *prometheus.Desc
	uptime      *prometheus.Desc
}

// NewCollector returns a collector for src.
func NewCollector(src Source) *Collector {
	bus := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "bus", name), help, nil, nil)
	}
	provider := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "provider", name), help, labels, nil)
	}
	return &Collector{
		src:         src,
		published:   bus("events_published_total", "Events accepted by the bus"),
		delivered:   bus("events_delivered_total", "Handler deliveries"),
		dropped:     bus("events_dropped_total", "Events dropped while paused or stopped"),
		executed:    bus("handlers_executed_total", "Handler invocations"),
		errors:      bus("handler_errors_total", "Handlers that returned an error"),
		panics:      bus("handler_panics_total", "Handlers that panicked"),
		subscribers: bus("subscribers", "Active subscriptions"),
		queueDepth:  bus("queue_depth", "Events waiting for async delivery"),
		latency:     bus("dispatch_latency_seconds", "Average synchronous dispatch latency"),

		healthy:     provider("healthy", "1 when the last health check passed"),
		state:       provider("state", "1 for the current lifecycle state", "state"),
		checks:      provider("health_checks_total", "Health checks run while mounted"),
		transitions: provider("state_transitions_total", "Ready/Degraded transitions"),
		features:    provider("features_enabled", "Enabled feature flags"),
		comments:    provider("comments", "Comments in the feed"),
		unread:      provider("notifications_unread", "Unread notifications"),
		exports:     provider("exports", "Exports in history"),
		pending:     provider("exports_pending", "Scheduled exports not yet run"),
		uptime:      provider("uptime_seconds", "Time since the provider was mounted"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.published, c.delivered, c.dropped, c.executed, c.errors, c.panics,
		c.subscribers, c.queueDepth, c.latency,
		c.healthy, c.state, c.checks, c.transitions, c.features,
		c.comments, c.unread, c.exports, c.pending, c.uptime,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	h := c.src.HealthStatus()

	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}
	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	counter(c.published, float64(m.Bus.EventsPublished))
	counter(c.delivered, float64(m.Bus.EventsDelivered))
	counter(c.dropped, float64(m.Bus.EventsDropped))
	counter(c.executed, float64(m.Bus.HandlersExecuted))
	counter(c.errors, float64(m.Bus.HandlerErrors))
	counter(c.panics, float64(m.Bus.HandlerPanics))
	gauge(c.subscribers, float64(m.Bus.ActiveSubscribers))
	gauge(c.queueDepth, float64(m.Bus.QueueDepth))
	gauge(c.latency, m.Bus.AvgDispatchLatency.Seconds())

	gauge(c.healthy, boolFloat(h.IsHealthy))
	for _, s := range states {
		gauge(c.state, boolFloat(m.State == s), s.String())
	}
	counter(c.checks, float64(m.HealthChecks))
	counter(c.transitions, float64(m.StateTransitions))
	gauge(c.features, float64(m.EnabledFeatures))
	gauge(c.comments, float64(m.Comments))
	gauge(c.unread, float64(m.Unread))
	gauge(c.exports, float64(m.Exports))
	gauge(c.pending, float64(m.PendingExports))
	gauge(c.uptime, m.Uptime.Seconds())
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
