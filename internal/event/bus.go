package event

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/event/dispatch"
	"github.com/kazi-app/ups/internal/event/events"
	"github.com/kazi-app/ups/internal/event/topic"
)

type bus struct {
	registry *Registry

	syncDispatcher  *dispatch.SyncDispatcher
	asyncDispatcher *dispatch.AsyncDispatcher

	config busConfig
	log    zerolog.Logger
	recent *errorWindow

	running   atomic.Bool
	paused    atomic.Bool
	startedAt atomic.Int64

	eventsPublished  atomic.Uint64
	eventsDelivered  atomic.Uint64
	eventsDropped    atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
	dispatches       atomic.Uint64
	dispatchNs       atomic.Int64
}

// NewBus creates a stopped bus. Call Start before publishing.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	b := &bus{
		registry: NewRegistry(),
		config:   config,
		log:      config.logger.With().Str("component", "event-bus").Logger(),
		recent:   newErrorWindow(config.errorWindow),
	}

	onPanic := func(evt any, v any, stack []byte) {
		e, _ := evt.(Event)
		b.log.Error().
			Str("event_type", e.Type.String()).
			Str("event_id", e.ID).
			Interface("panic", v).
			Bytes("stack", stack).
			Msg("event handler panicked")
	}

	b.syncDispatcher = dispatch.NewSyncDispatcher(dispatch.WithPanicHandler(onPanic))
	b.asyncDispatcher = dispatch.NewAsyncDispatcher(
		dispatch.WithQueueSize(config.asyncQueueSize),
		dispatch.WithWorkerCount(config.asyncWorkerCount),
		dispatch.WithAsyncTimeout(config.asyncTimeout),
		dispatch.WithAsyncPanicHandler(onPanic),
	)
	return b
}

func (b *bus) Start() error {
	if b.running.Load() {
		return ErrBusAlreadyRunning
	}
	if err := b.asyncDispatcher.Start(); err != nil {
		return err
	}
	b.startedAt.Store(b.config.clock().UnixNano())
	b.running.Store(true)
	b.log.Debug().Msg("event bus started")
	return nil
}

// Stop stops accepting events and waits for queued async deliveries.
func (b *bus) Stop(ctx context.Context) error {
	if !b.running.Swap(false) {
		return ErrBusNotRunning
	}
	b.log.Debug().Msg("event bus stopping")
	return b.asyncDispatcher.Stop(ctx)
}

// Pause drops published events until Resume.
func (b *bus) Pause() {
	b.paused.Store(true)
}

func (b *bus) Resume() {
	b.paused.Store(false)
}

func (b *bus) IsRunning() bool {
	return b.running.Load()
}

func (b *bus) IsPaused() bool {
	return b.paused.Load()
}

func (b *bus) Publish(ctx context.Context, e Event) error {
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	evt, err := e.normalize(b.config.source, b.config.clock())
	if err != nil {
		return err
	}

	b.eventsPublished.Add(1)
	if b.paused.Load() {
		b.eventsDropped.Add(1)
		return nil
	}

	if err := ctx.Err(); err != nil {
		b.eventsDropped.Add(1)
		b.log.Debug().Err(err).Str("event_type", evt.Type.String()).Msg("context done, event dropped")
		return nil
	}

	start := time.Now()
	defer func() {
		b.dispatches.Add(1)
		b.dispatchNs.Add(time.Since(start).Nanoseconds())
	}()

	matched := false
	for _, sub := range b.registry.Match(evt.Type) {
		if !sub.IsActive() || !sub.accepts(evt) {
			continue
		}
		if sub.config.Once && !sub.claimOnce() {
			continue
		}
		matched = true
		delivered := b.deliver(ctx, sub, evt)
		if sub.config.Once {
			if delivered {
				sub.consumeOnce()
			} else {
				sub.releaseOnce()
			}
		}
	}

	if !matched {
		b.eventsDropped.Add(1)
		b.log.Trace().Str("event_type", evt.Type.String()).Msg("no subscriber, event dropped")
	}
	return nil
}

// deliver hands evt to sub. It reports false when the handler never ran and
// never will: the context ended first or the async queue was full. Such
// deliveries are counted as dropped.
func (b *bus) deliver(ctx context.Context, sub *subscription, evt Event) bool {
	h := dispatch.HandlerFunc(func(ctx context.Context, v any) error {
		return sub.handler.Handle(ctx, v.(Event))
	})

	if sub.config.DeliveryMode == DeliveryAsync {
		err := b.asyncDispatcher.Enqueue(ctx, evt, h, func(_ any, r dispatch.Result) {
			b.record(context.Background(), sub, evt, r)
		})
		if err != nil {
			b.eventsDropped.Add(1)
			b.log.Warn().Err(err).
				Str("event_type", evt.Type.String()).
				Str("subscription", sub.id).
				Msg("async delivery dropped")
			return false
		}
		return true
	}

	r := b.syncDispatcher.Dispatch(ctx, evt, h)
	b.record(ctx, sub, evt, r)
	return !r.Skipped
}

// record accounts for one handler outcome and turns failures into
// system.error events.
func (b *bus) record(ctx context.Context, sub *subscription, evt Event, r dispatch.Result) {
	if r.Skipped {
		b.eventsDropped.Add(1)
		b.log.Debug().
			Str("event_type", evt.Type.String()).
			Str("subscription", sub.id).
			Msg("handler skipped, context done")
		return
	}
	b.handlersExecuted.Add(1)

	var err error
	switch {
	case r.Panicked:
		b.handlerPanics.Add(1)
		err = &PanicError{SubscriptionID: sub.id, Type: evt.Type, Value: r.PanicValue, Stack: string(r.PanicStack)}
	case r.Error != nil:
		b.handlerErrors.Add(1)
		err = &HandlerError{SubscriptionID: sub.id, Type: evt.Type, Err: r.Error}
	default:
		b.eventsDelivered.Add(1)
		return
	}

	b.recent.add(b.config.clock())
	b.log.Warn().Err(err).
		Str("event_type", evt.Type.String()).
		Str("event_id", evt.ID).
		Str("subscription", sub.id).
		Msg("event handler failed")

	if evt.Type == events.TypeSystemError {
		return
	}

	report := New(events.SystemError{
		Message:        err.Error(),
		Err:            err,
		Component:      "event-bus",
		SubscriptionID: sub.id,
		HandledType:    evt.Type,
		Panicked:       r.Panicked,
	}).WithCausation(evt.ID)

	if perr := b.Publish(context.WithoutCancel(ctx), report); perr != nil {
		b.log.Debug().Err(perr).Msg("system.error not published")
	}
}

// Broadcast publishes p on a channel with a UI priority hint.
func (b *bus) Broadcast(ctx context.Context, p Payload, opts ...BroadcastOption) error {
	cfg := broadcastConfig{channel: DefaultChannel, priority: BroadcastNormal}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := New(p).
		WithSource(cfg.source).
		WithMetadata(MetaChannel, cfg.channel).
		WithMetadata(MetaPriority, cfg.priority)
	return b.Publish(ctx, e)
}

func (b *bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	return b.SubscribeMany([]topic.Topic{pattern}, h, opts...)
}

func (b *bus) SubscribeMany(patterns []topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if len(patterns) == 0 {
		return nil, ErrInvalidTopic
	}

	topics := make([]topic.Topic, 0, len(patterns))
	for _, p := range patterns {
		if !p.IsValid() {
			return nil, ErrInvalidTopic
		}
		if !slices.Contains(topics, p) {
			topics = append(topics, p)
		}
	}

	sub := newSubscription(uuid.NewString(), b.registry.nextSeq(), topics, h, opts...)
	sub.remove = b.registry.Remove
	b.registry.Add(sub)
	return sub, nil
}

// Unsubscribe removes sub. It returns ErrSubscriptionNotFound when sub was
// already removed.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	if s, ok := sub.(*subscription); ok {
		s.cancel()
	}
	if !b.registry.Remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}
