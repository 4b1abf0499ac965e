package event

import (
	"context"

	"github.com/kazi-app/ups/internal/event/topic"
)

// Priority orders handlers of the same event. Lower values run first.
type Priority int

const (
	// PriorityCritical is for state owners that must observe an event
	// before anyone reacts to it.
	PriorityCritical Priority = 0

	// PriorityHigh is for the provider's own bookkeeping subscriptions.
	PriorityHigh Priority = 100

	// PriorityNormal is the default.
	PriorityNormal Priority = 200

	// PriorityLow is for analytics and logging.
	PriorityLow Priority = 300
)

func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// DeliveryMode selects where a handler runs.
type DeliveryMode int

const (
	// DeliverySync runs the handler in the publisher's goroutine.
	DeliverySync DeliveryMode = iota

	// DeliveryAsync queues the handler on the bus worker pool.
	DeliveryAsync
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// FilterFunc gates delivery. Returning false skips the handler.
type FilterFunc func(e Event) bool

// BroadcastPriority is a UI hint attached to broadcasts. It never affects
// delivery order.
type BroadcastPriority string

const (
	BroadcastLow    BroadcastPriority = "low"
	BroadcastNormal BroadcastPriority = "normal"
	BroadcastHigh   BroadcastPriority = "high"
	BroadcastUrgent BroadcastPriority = "urgent"
)

// DefaultChannel is the broadcast channel used when none is given.
const DefaultChannel = "global"

// Bus is the event bus.
//
// Publish runs synchronous subscriptions on the caller's goroutine, in
// priority and then registration order, and queues asynchronous ones on a
// bounded worker pool. A failing or panicking handler is counted and
// reported as a system.error event; it never reaches the publisher nor stops
// the remaining handlers. Events are not retained, so a late subscriber
// sees only what is published after it subscribed.
//
// Thread-safety: All methods are safe for concurrent use. Handlers may
// publish and subscribe from within a delivery.
type Bus interface {
	// Publish delivers e to every matching subscription. Deliveries that
	// cannot happen, because the bus is paused, ctx is done or the async
	// queue is full, are counted as dropped. It returns an error only for
	// a malformed event or a stopped bus.
	Publish(ctx context.Context, e Event) error

	// Broadcast publishes p tagged with a channel and a priority.
	Broadcast(ctx context.Context, p Payload, opts ...BroadcastOption) error

	Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeMany(patterns []topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error

	Start() error
	Stop(ctx context.Context) error
	Pause()
	Resume()
	IsRunning() bool
	IsPaused() bool

	HealthStatus() Health
	PerformanceMetrics() PerformanceMetrics
}
