package event

import (
	"slices"
	"sync/atomic"

	"github.com/kazi-app/ups/internal/event/topic"
)

// SubscriptionState is the lifecycle state of a subscription.
type SubscriptionState int32

const (
	SubscriptionStateActive SubscriptionState = iota
	SubscriptionStatePaused
	SubscriptionStateCancelled

	// subscriptionStateClaimed marks a once-subscription whose single
	// delivery is in flight. It reads as cancelled from outside.
	subscriptionStateClaimed
)

func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is a registered handler.
type Subscription interface {
	ID() string

	// Topics returns the subscribed patterns.
	Topics() []topic.Topic

	State() SubscriptionState
	IsActive() bool

	// Pause stops delivery until Resume.
	Pause()
	Resume()

	// Unsubscribe cancels the subscription and removes it from the bus.
	// Calling it again is a no-op.
	Unsubscribe()
}

// SubscriptionConfig holds per-subscription options.
type SubscriptionConfig struct {
	Priority     Priority
	DeliveryMode DeliveryMode
	Filter       FilterFunc

	// Once cancels the subscription before its first delivery, so the
	// handler runs at most once.
	Once bool
}

// DefaultSubscriptionConfig returns normal priority synchronous delivery.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		Priority:     PriorityNormal,
		DeliveryMode: DeliverySync,
	}
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the execution priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithDeliveryMode sets sync or async delivery.
func WithDeliveryMode(m DeliveryMode) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.DeliveryMode = m
	}
}

// WithFilter gates delivery on f.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce removes the subscription after the first matching event that
// passes the filter.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

type subscription struct {
	id      string
	seq     uint64
	topics  []topic.Topic
	handler Handler
	config  SubscriptionConfig
	state   atomic.Int32

	// remove unregisters the subscription and reports whether it was still
	// registered.
	remove func(id string) bool
}

func newSubscription(id string, seq uint64, topics []topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}
	s := &subscription{
		id:      id,
		seq:     seq,
		topics:  topics,
		handler: h,
		config:  config,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Topics() []topic.Topic {
	return slices.Clone(s.topics)
}

func (s *subscription) State() SubscriptionState {
	st := SubscriptionState(s.state.Load())
	if st == subscriptionStateClaimed {
		return SubscriptionStateCancelled
	}
	return st
}

func (s *subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

func (s *subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

func (s *subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	if s.remove != nil {
		s.remove(s.id)
	}
}

func (s *subscription) cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

// claimOnce reserves the single delivery of an active once-subscription.
// Exactly one caller wins. The winner must call either consumeOnce or
// releaseOnce.
func (s *subscription) claimOnce() bool {
	return s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(subscriptionStateClaimed))
}

// consumeOnce cancels a claimed subscription after its delivery ran or was
// queued.
func (s *subscription) consumeOnce() {
	s.state.CompareAndSwap(int32(subscriptionStateClaimed), int32(SubscriptionStateCancelled))
	if s.remove != nil {
		s.remove(s.id)
	}
}

// releaseOnce makes a claimed subscription active again when its delivery
// never happened. An Unsubscribe in between wins.
func (s *subscription) releaseOnce() {
	s.state.CompareAndSwap(int32(subscriptionStateClaimed), int32(SubscriptionStateActive))
}

// accepts runs the filter. A panicking filter rejects the event.
func (s *subscription) accepts(e Event) (ok bool) {
	if s.config.Filter == nil {
		return true
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return s.config.Filter(e)
}
