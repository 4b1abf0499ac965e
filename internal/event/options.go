package event

import (
	"time"

	"github.com/rs/zerolog"
)

// BusOption configures a Bus.
type BusOption func(*busConfig)

type busConfig struct {
	source           string
	asyncQueueSize   int
	asyncWorkerCount int
	asyncTimeout     time.Duration
	errorWindow      time.Duration
	errorThreshold   int
	logger           zerolog.Logger
	clock            func() time.Time
}

func defaultBusConfig() busConfig {
	return busConfig{
		source:           "ups",
		asyncQueueSize:   1024,
		asyncWorkerCount: 4,
		asyncTimeout:     5 * time.Second,
		errorWindow:      time.Minute,
		errorThreshold:   10,
		logger:           zerolog.Nop(),
		clock:            time.Now,
	}
}

// WithSource sets the Source stamped on events published without one.
func WithSource(source string) BusOption {
	return func(c *busConfig) {
		if source != "" {
			c.source = source
		}
	}
}

// WithAsyncQueueSize sets the async delivery queue size.
func WithAsyncQueueSize(size int) BusOption {
	return func(c *busConfig) {
		if size > 0 {
			c.asyncQueueSize = size
		}
	}
}

// WithAsyncWorkerCount sets the number of async delivery workers.
func WithAsyncWorkerCount(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.asyncWorkerCount = n
		}
	}
}

// WithAsyncTimeout bounds each asynchronously delivered handler.
func WithAsyncTimeout(d time.Duration) BusOption {
	return func(c *busConfig) {
		c.asyncTimeout = d
	}
}

// WithErrorWindow sets how far back HealthStatus counts handler failures.
func WithErrorWindow(d time.Duration) BusOption {
	return func(c *busConfig) {
		if d > 0 {
			c.errorWindow = d
		}
	}
}

// WithErrorThreshold sets how many failures inside the error window make
// the bus unhealthy.
func WithErrorThreshold(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.errorThreshold = n
		}
	}
}

// WithLogger sets the bus logger.
func WithLogger(l zerolog.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) BusOption {
	return func(c *busConfig) {
		if now != nil {
			c.clock = now
		}
	}
}

// BroadcastOption configures a Broadcast call.
type BroadcastOption func(*broadcastConfig)

type broadcastConfig struct {
	channel  string
	priority BroadcastPriority
	source   string
}

// WithChannel sets the broadcast channel. The default is "global".
func WithChannel(ch string) BroadcastOption {
	return func(c *broadcastConfig) {
		if ch != "" {
			c.channel = ch
		}
	}
}

// WithBroadcastPriority sets the UI priority hint.
func WithBroadcastPriority(p BroadcastPriority) BroadcastOption {
	return func(c *broadcastConfig) {
		if p != "" {
			c.priority = p
		}
	}
}

// WithBroadcastSource sets the event source.
func WithBroadcastSource(source string) BroadcastOption {
	return func(c *broadcastConfig) {
		c.source = source
	}
}
