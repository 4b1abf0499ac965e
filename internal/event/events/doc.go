// Package events defines the payload of every event published on the UPS
// bus.
//
// Each event type string has exactly one payload type, and the payload
// reports its own type through EventType. Handlers type-switch or use
// event.On to get the concrete payload:
//
//	event.On(bus, events.TypeCommentCreated, func(ctx context.Context, e event.Event, p events.CommentCreated) error {
//	    log.Info().Str("comment", p.Comment.ID).Msg("new comment")
//	    return nil
//	})
//
// Types that have no dedicated payload (analytics events tracked by name,
// cross-app notifications) use Custom.
package events
