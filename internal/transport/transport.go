package transport

import (
	"context"
	"errors"
)

// Errors returned by transports.
var (
	ErrClosed         = errors.New("transport closed")
	ErrForeignMessage = errors.New("not a ups broadcast")
	ErrCircuitOpen    = errors.New("transport circuit open")
	ErrRateLimited    = errors.New("transport rate limited")
)

// Transport posts envelopes to listeners outside the provider.
type Transport interface {
	Post(ctx context.Context, e Envelope) error
	Close() error
}

// Noop discards every envelope.
type Noop struct{}

func (Noop) Post(context.Context, Envelope) error { return nil }
func (Noop) Close() error                         { return nil }

// Fanout posts to several transports. Every transport is tried; failures
// are joined.
type Fanout []Transport

func (f Fanout) Post(ctx context.Context, e Envelope) error {
	var errs []error
	for _, t := range f {
		if err := t.Post(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, t := range f {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
