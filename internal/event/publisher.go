package event

import (
	"context"
	"maps"
)

// Publisher emits events under a fixed source name.
type Publisher struct {
	bus    Bus
	source string
}

// NewPublisher returns a Publisher stamping source on every event.
func NewPublisher(bus Bus, source string) *Publisher {
	return &Publisher{bus: bus, source: source}
}

// Source returns the publisher's source name.
func (p *Publisher) Source() string {
	return p.source
}

// Publish publishes payload.
func (p *Publisher) Publish(ctx context.Context, payload Payload) error {
	return p.bus.Publish(ctx, New(payload).WithSource(p.source))
}

// PublishWithMetadata publishes payload with extra metadata.
func (p *Publisher) PublishWithMetadata(ctx context.Context, payload Payload, md map[string]any) error {
	e := New(payload).WithSource(p.source)
	e.Metadata = maps.Clone(md)
	return p.bus.Publish(ctx, e)
}

// PublishCorrelated publishes payload linked to correlationID.
func (p *Publisher) PublishCorrelated(ctx context.Context, payload Payload, correlationID string) error {
	return p.bus.Publish(ctx, New(payload).WithSource(p.source).WithCorrelation(correlationID))
}

// PublishCausedBy publishes payload as a consequence of cause. The
// correlation id of cause is carried over.
func (p *Publisher) PublishCausedBy(ctx context.Context, payload Payload, cause Event) error {
	e := New(payload).WithSource(p.source).WithCausation(cause.ID)
	if id := cause.CorrelationID(); id != "" {
		e = e.WithCorrelation(id)
	}
	return p.bus.Publish(ctx, e)
}

// Broadcast broadcasts payload from this publisher's source.
func (p *Publisher) Broadcast(ctx context.Context, payload Payload, opts ...BroadcastOption) error {
	opts = append([]BroadcastOption{WithBroadcastSource(p.source)}, opts...)
	return p.bus.Broadcast(ctx, payload, opts...)
}
