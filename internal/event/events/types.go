package events

import "github.com/kazi-app/ups/internal/event/topic"

// Comment events.
const (
	TypeCommentCreated  topic.Topic = "comment.created"
	TypeCommentUpdated  topic.Topic = "comment.updated"
	TypeCommentDeleted  topic.Topic = "comment.deleted"
	TypeCommentResolved topic.Topic = "comment.resolved"
	TypeCommentAssigned topic.Topic = "comment.assigned"
	TypeCommentSelected topic.Topic = "comment.selected"
)

// Notification events.
const (
	TypeNotificationCreated topic.Topic = "notification.created"
	TypeNotificationRead    topic.Topic = "notification.read"
	TypeNotificationReadAll topic.Topic = "notification.read_all"
	TypeNotificationCleared topic.Topic = "notification.cleared"
)

// Session events.
const (
	TypeProjectChanged   topic.Topic = "project.changed"
	TypeUserChanged      topic.Topic = "user.changed"
	TypeConnectionStatus topic.Topic = "connection.status"
)

// System events.
const (
	TypeSystemError   topic.Topic = "system.error"
	TypeSystemWarning topic.Topic = "system.warning"
	TypeSystemInfo    topic.Topic = "system.info"
)

// Feature flag events.
const (
	TypeFeatureEnabled  topic.Topic = "feature.enabled"
	TypeFeatureDisabled topic.Topic = "feature.disabled"
)

// Filter and search events.
const (
	TypeFiltersUpdated  topic.Topic = "filters.updated"
	TypeFiltersCleared  topic.Topic = "filters.cleared"
	TypeSearchPerformed topic.Topic = "search.performed"
)

// Export events.
const (
	TypeExportCompleted topic.Topic = "export.completed"
	TypeExportScheduled topic.Topic = "export.scheduled"
	TypeExportFailed    topic.Topic = "export.failed"
)

// Cross-app, analytics and assistant events.
const (
	TypeAppBroadcast   topic.Topic = "app.broadcast"
	TypeAnalyticsTrack topic.Topic = "analytics.track"
	TypeAISuggestion   topic.Topic = "ai.suggestion"
)
