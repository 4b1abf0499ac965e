package dispatch

import (
	"context"
	"time"
)

// Handler mirrors event.Handler with a type-erased event so this package
// does not import the bus.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Result is the outcome of one handler execution.
type Result struct {
	Success    bool
	Error      error
	Panicked   bool
	PanicValue any
	PanicStack []byte
	Duration   time.Duration

	// Skipped is set when the handler never ran because ctx was done.
	Skipped bool
}

// IsSuccess reports a clean run.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError reports a returned error (not a panic).
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked
}

// IsPanic reports a recovered panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// PanicHandler observes recovered panics.
type PanicHandler func(event any, panicValue any, stack []byte)

// ResultHandler receives the outcome of an asynchronous execution.
type ResultHandler func(event any, result Result)

func defaultPanicHandler(any, any, []byte) {}
