// Package dispatch runs bus handlers with panic isolation.
//
// A handler that panics or returns an error never takes down the publisher
// or the other handlers of the same event; the outcome is reported as a
// Result and the caller decides what to do with it (the bus turns failures
// into system.error events).
//
//   - SyncDispatcher runs the handler in the caller's goroutine, which is the
//     default delivery mode of the bus.
//   - AsyncDispatcher runs handlers on a bounded worker pool for
//     subscriptions that must never block a publisher, such as the
//     cross-window forwarder.
//
// Usage:
//
//	d := dispatch.NewSyncDispatcher(
//	    dispatch.WithPanicHandler(func(event any, v any, stack []byte) {
//	        log.Error().Interface("panic", v).Bytes("stack", stack).Msg("handler panic")
//	    }),
//	)
//	res := d.Dispatch(ctx, evt, handler)
//	if !res.IsSuccess() {
//	    // report
//	}
package dispatch
