package event

import (
	"context"
	"sync"

	"github.com/kazi-app/ups/internal/event/topic"
)

// Subscriber tracks the subscriptions of one component so they can be
// released together.
type Subscriber struct {
	bus    Bus
	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

// NewSubscriber returns a Subscriber on bus.
func NewSubscriber(bus Bus) *Subscriber {
	return &Subscriber{bus: bus}
}

// Subscribe subscribes h to pattern.
func (s *Subscriber) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	return s.SubscribeMany([]topic.Topic{pattern}, h, opts...)
}

// SubscribeFunc subscribes fn to pattern.
func (s *Subscriber) SubscribeFunc(pattern topic.Topic, fn func(context.Context, Event) error, opts ...SubscriptionOption) (Subscription, error) {
	return s.Subscribe(pattern, HandlerFunc(fn), opts...)
}

// SubscribeMany subscribes h to several patterns at once.
func (s *Subscriber) SubscribeMany(patterns []topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSubscriberClosed
	}
	sub, err := s.bus.SubscribeMany(patterns, h, opts...)
	if err != nil {
		return nil, err
	}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// Count returns the number of tracked subscriptions.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// PauseAll pauses every tracked subscription.
func (s *Subscriber) PauseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		sub.Pause()
	}
}

// ResumeAll resumes every tracked subscription.
func (s *Subscriber) ResumeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		sub.Resume()
	}
}

// Close unsubscribes everything. Further Subscribe calls fail.
func (s *Subscriber) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// typed wraps fn so it only sees payloads of type T. Events carrying other
// payloads are ignored.
func typed[T Payload](fn func(context.Context, Event, T) error) Handler {
	return HandlerFunc(func(ctx context.Context, e Event) error {
		p, ok := e.Payload.(T)
		if !ok {
			return nil
		}
		return fn(ctx, e, p)
	})
}

// On subscribes fn to pattern with the payload asserted to T.
func On[T Payload](bus Bus, pattern topic.Topic, fn func(context.Context, Event, T) error, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return bus.Subscribe(pattern, typed(fn), opts...)
}

// SubscribeTyped is On for a Subscriber.
func SubscribeTyped[T Payload](s *Subscriber, pattern topic.Topic, fn func(context.Context, Event, T) error, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return s.Subscribe(pattern, typed(fn), opts...)
}

// Once waits for the next event matching pattern and filter, or for ctx to
// end.
func Once(ctx context.Context, bus Bus, pattern topic.Topic, filter FilterFunc) (Event, error) {
	ch := make(chan Event, 1)
	opts := []SubscriptionOption{WithOnce()}
	if filter != nil {
		opts = append(opts, WithFilter(filter))
	}
	sub, err := bus.Subscribe(pattern, HandlerFunc(func(_ context.Context, e Event) error {
		ch <- e
		return nil
	}), opts...)
	if err != nil {
		return Event{}, err
	}
	defer sub.Unsubscribe()

	select {
	case e := <-ch:
		return e, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}
