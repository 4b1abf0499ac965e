package dispatch

import (
	"context"
	"errors"
	"testing"
)

func TestSyncDispatcher_Stats(t *testing.T) {
	d := NewSyncDispatcher()
	ctx := context.Background()

	d.Dispatch(ctx, 1, &testHandler{})
	d.Dispatch(ctx, 2, &testHandler{fn: func(context.Context, any) error { return errors.New("x") }})
	d.Dispatch(ctx, 3, &testHandler{fn: func(context.Context, any) error { panic("p") }})

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	d.Dispatch(cancelled, 4, &testHandler{})

	s := d.Stats()
	if s.Dispatched != 4 {
		t.Errorf("Dispatched = %d, want 4", s.Dispatched)
	}
	if s.Succeeded != 1 || s.Failed != 1 || s.Panicked != 1 || s.Skipped != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestSyncDispatcher_RunsInCallerGoroutine(t *testing.T) {
	d := NewSyncDispatcher()
	var seen any
	d.Dispatch(context.Background(), "payload", &testHandler{fn: func(_ context.Context, e any) error {
		seen = e
		return nil
	}})
	if seen != "payload" {
		t.Errorf("handler saw %v", seen)
	}
}

func TestSyncDispatcher_PanicHandler(t *testing.T) {
	var got any
	d := NewSyncDispatcher(WithPanicHandler(func(_ any, v any, _ []byte) { got = v }))
	res := d.Dispatch(context.Background(), nil, &testHandler{fn: func(context.Context, any) error { panic("boom") }})
	if !res.IsPanic() {
		t.Fatal("expected panic")
	}
	if got != "boom" {
		t.Errorf("panic handler got %v", got)
	}
}
