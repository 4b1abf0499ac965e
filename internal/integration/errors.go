package integration

import (
	"errors"

	"github.com/kazi-app/ups/internal/export"
)

// Sentinel errors for the integration service.
var (
	// ErrServiceClosed is returned after Close.
	ErrServiceClosed = errors.New("integration service is closed")

	// ErrCommentNotFound is returned for unknown comment ids.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrNotificationNotFound is returned for unknown notification ids.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrEmptyComment is returned when a comment has no content.
	ErrEmptyComment = errors.New("comment content is empty")

	// ErrUnknownFormat is returned for unsupported export formats.
	ErrUnknownFormat = export.ErrUnknownFormat

	// ErrExportNotFound is returned when cancelling an unknown export.
	ErrExportNotFound = errors.New("export not found")

	// ErrNoConnector is returned by Connect when no connector is configured.
	ErrNoConnector = errors.New("no realtime connector configured")
)
