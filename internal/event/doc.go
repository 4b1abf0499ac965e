// Package event is the in-process publish/subscribe bus of the UPS layer.
//
// The bus routes events by hierarchical type (see package topic) to every
// matching subscription. Each event type has one payload type, declared in
// package events, so handlers receive a statically known shape:
//
//	bus := event.NewBus(event.WithSource("ups"), event.WithLogger(log))
//	_ = bus.Start()
//	defer bus.Stop(ctx)
//
//	sub, _ := event.On(bus, events.TypeCommentCreated,
//	    func(ctx context.Context, e event.Event, p events.CommentCreated) error {
//	        return nil
//	    })
//	defer sub.Unsubscribe()
//
//	_ = bus.Publish(ctx, event.New(events.CommentCreated{Comment: c}))
//
// # Delivery
//
// Publish is synchronous by default: handlers run in the publisher's
// goroutine in priority order and, within a priority, in registration order.
// Subscriptions created with WithDeliveryMode(DeliveryAsync) run on a worker
// pool instead.
//
// Every handler invocation is isolated. A handler that returns an error or
// panics does not stop the remaining handlers and does not fail Publish;
// the bus counts the failure and publishes a system.error event describing
// it. Failures of system.error handlers are counted but never re-published.
//
// Delivery is best effort. Events published while nobody is subscribed are
// dropped, and late subscribers never see earlier events.
//
// # Subscriptions
//
// A subscription covers one or more type patterns, with optional filter and
// once semantics:
//
//	bus.Subscribe("notification.created", h, event.WithOnce())
//	bus.SubscribeMany([]topic.Topic{"comment.*", "export.**"}, h,
//	    event.WithFilter(event.FilterBySource("comments")))
//
// Subscription.Unsubscribe may be called any number of times.
//
// # Health
//
// HealthStatus and PerformanceMetrics return synchronous snapshots. The bus
// is healthy while it is running, not paused, and the number of handler
// failures inside the sliding error window stays below the threshold.
package event
