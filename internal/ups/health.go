package ups

import (
	"time"

	"github.com/kazi-app/ups/internal/event"
	"github.com/kazi-app/ups/internal/integration"
)

// HealthStatus is the aggregate health of the provider.
type HealthStatus struct {
	IsHealthy       bool               `json:"is_healthy"`
	State           State              `json:"state"`
	Bus             event.Health       `json:"bus"`
	Integration     integration.Health `json:"integration"`
	RealTimeEnabled bool               `json:"realtime_enabled"`
	Timestamp       time.Time          `json:"timestamp"`
}

// computeHealth derives health from the current bus and domain state. The
// connection only counts when real time is enabled.
func (p *Provider) computeHealth() HealthStatus {
	h := HealthStatus{
		Bus:             p.bus.HealthStatus(),
		Integration:     p.svc.Health(),
		RealTimeEnabled: p.cfg.RealTimeEnabled,
		Timestamp:       p.clock(),
	}
	h.IsHealthy = h.Bus.IsHealthy &&
		!h.Integration.HasErrors &&
		(!p.cfg.RealTimeEnabled || h.Integration.IsConnected)
	return h
}

// CheckHealth recomputes health and moves between Ready and Degraded. It
// does nothing unless the provider is mounted.
func (p *Provider) CheckHealth() HealthStatus {
	return p.evaluate(false)
}

// evaluate recomputes health. Initializing only moves on when final is
// set, which Mount does once every step ran.
func (p *Provider) evaluate(final bool) HealthStatus {
	h := p.computeHealth()

	p.mu.Lock()
	if !p.state.IsMounted() {
		last := p.health
		p.mu.Unlock()
		return last
	}
	p.checks.Add(1)

	prev := p.state
	next := prev
	if prev != StateInitializing || final {
		next = StateDegraded
		if h.IsHealthy {
			next = StateReady
		}
	}
	p.state = next
	h.State = next
	p.health = h
	p.mu.Unlock()

	if next != prev && prev != StateInitializing {
		p.transitions.Add(1)
		ev := p.log.Info()
		if next == StateDegraded {
			ev = p.log.Warn()
		}
		ev.Str("from", prev.String()).
			Str("to", next.String()).
			Bool("bus_healthy", h.Bus.IsHealthy).
			Bool("has_errors", h.Integration.HasErrors).
			Bool("connected", h.Integration.IsConnected).
			Msg("provider health changed")
	}
	return h
}

// IsHealthy returns the result of the last health check.
func (p *Provider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health.IsHealthy
}

// HealthStatus returns the last health check.
func (p *Provider) HealthStatus() HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// HealthChecks returns how many health checks ran while mounted.
func (p *Provider) HealthChecks() int64 {
	return p.checks.Load()
}

// Metrics is the advisory snapshot returned by Provider.Metrics.
type Metrics struct {
	State            State                    `json:"state"`
	Healthy          bool                     `json:"healthy"`
	Bus              event.PerformanceMetrics `json:"bus"`
	HealthChecks     int64                    `json:"health_checks"`
	StateTransitions int64                    `json:"state_transitions"`
	EnabledFeatures  int                      `json:"enabled_features"`
	Comments         int                      `json:"comments"`
	Notifications    int                      `json:"notifications"`
	Unread           int                      `json:"unread"`
	Exports          int                      `json:"exports"`
	PendingExports   int                      `json:"pending_exports"`
	Uptime           time.Duration            `json:"uptime"`
}

// Metrics returns counters for dashboards. Nothing reads them to make
// decisions.
func (p *Provider) Metrics() Metrics {
	p.mu.RLock()
	state, healthy, mountedAt := p.state, p.health.IsHealthy, p.mountedAt
	p.mu.RUnlock()

	snap := p.svc.Snapshot()
	m := Metrics{
		State:            state,
		Healthy:          healthy,
		Bus:              p.bus.PerformanceMetrics(),
		HealthChecks:     p.checks.Load(),
		StateTransitions: p.transitions.Load(),
		EnabledFeatures:  p.features.Len(),
		Comments:         len(snap.Comments),
		Notifications:    len(snap.Notifications),
		Unread:           snap.UnreadCount,
		Exports:          len(snap.Exports),
		PendingExports:   p.svc.PendingExports(),
	}
	if state.IsMounted() && !mountedAt.IsZero() {
		m.Uptime = p.clock().Sub(mountedAt)
	}
	return m
}
