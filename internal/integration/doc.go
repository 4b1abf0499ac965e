// Package integration holds the workspace's mutable domain state and turns
// every domain action into a bus event.
//
// The Service owns the current project and user, the comment feed, the
// notification center, the real-time connection status, the active
// filters, the export history and the most recent error. All mutation goes
// through one mutex, so concurrent callers are serialized and the last
// write wins. Events are published after the lock is released, which means
// a handler always observes the mutation its event describes.
//
//	svc, err := integration.NewService(
//	    integration.WithBus(bus),
//	    integration.WithConnector(realtime.NewSimulated()),
//	    integration.WithExportStore(store),
//	    integration.WithLogger(log),
//	)
//	c, err := svc.AddComment(ctx, integration.CommentInput{Content: "Move the logo left"})
//
// # Errors
//
// Operations return sentinel errors (ErrCommentNotFound, ErrEmptyComment,
// ...) wrapped with context. Every failure is also recorded as the service's
// last error and published as system.error, so one failing feature is
// visible to the health check and the notification center without the
// caller having to forward it.
package integration
