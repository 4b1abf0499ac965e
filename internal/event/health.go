package event

import (
	"sync"
	"time"
)

// Health is a point-in-time view of the bus.
type Health struct {
	IsHealthy      bool          `json:"is_healthy"`
	Running        bool          `json:"running"`
	Paused         bool          `json:"paused"`
	Subscribers    int           `json:"subscribers"`
	RecentErrors   int           `json:"recent_errors"`
	TotalErrors    uint64        `json:"total_errors"`
	ErrorWindow    time.Duration `json:"error_window"`
	ErrorThreshold int           `json:"error_threshold"`
	QueueDepth     int           `json:"queue_depth"`
	CheckedAt      time.Time     `json:"checked_at"`
}

// PerformanceMetrics are cumulative counters. They are advisory and never
// used for flow control.
type PerformanceMetrics struct {
	EventsPublished    uint64        `json:"events_published"`
	EventsDelivered    uint64        `json:"events_delivered"`
	EventsDropped      uint64        `json:"events_dropped"`
	HandlersExecuted   uint64        `json:"handlers_executed"`
	HandlerErrors      uint64        `json:"handler_errors"`
	HandlerPanics      uint64        `json:"handler_panics"`
	AvgDispatchLatency time.Duration `json:"avg_dispatch_latency"`
	EventsPerSecond    float64       `json:"events_per_second"`
	ActiveSubscribers  int           `json:"active_subscribers"`
	QueueDepth         int           `json:"queue_depth"`
	Uptime             time.Duration `json:"uptime"`
}

func (b *bus) HealthStatus() Health {
	now := b.config.clock()
	recent := b.recent.count(now)
	running := b.running.Load()
	paused := b.paused.Load()

	return Health{
		IsHealthy:      running && !paused && recent < b.config.errorThreshold,
		Running:        running,
		Paused:         paused,
		Subscribers:    b.registry.CountActive(),
		RecentErrors:   recent,
		TotalErrors:    b.handlerErrors.Load() + b.handlerPanics.Load(),
		ErrorWindow:    b.config.errorWindow,
		ErrorThreshold: b.config.errorThreshold,
		QueueDepth:     b.asyncDispatcher.QueueDepth(),
		CheckedAt:      now,
	}
}

func (b *bus) PerformanceMetrics() PerformanceMetrics {
	m := PerformanceMetrics{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		EventsDropped:     b.eventsDropped.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: b.registry.CountActive(),
		QueueDepth:        b.asyncDispatcher.QueueDepth(),
	}
	if n := b.dispatches.Load(); n > 0 {
		m.AvgDispatchLatency = time.Duration(b.dispatchNs.Load() / int64(n))
	}
	if started := b.startedAt.Load(); started > 0 {
		m.Uptime = b.config.clock().Sub(time.Unix(0, started))
		if secs := m.Uptime.Seconds(); secs > 0 {
			m.EventsPerSecond = float64(m.EventsPublished) / secs
		}
	}
	return m
}

// errorWindow counts failures inside a sliding time window.
type errorWindow struct {
	mu     sync.Mutex
	window time.Duration
	times  []time.Time
}

func newErrorWindow(window time.Duration) *errorWindow {
	return &errorWindow{window: window}
}

func (w *errorWindow) add(t time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.times = append(w.times, t)
	w.prune(t)
}

func (w *errorWindow) count(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now)
	return len(w.times)
}

func (w *errorWindow) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.times) && !w.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.times = append(w.times[:0], w.times[i:]...)
	}
}
