package events

import "github.com/kazi-app/ups/internal/event/topic"

// AppBroadcast carries a cross-app notification. Target names the receiving
// app and is empty for suite-wide broadcasts. Kind is the caller's event
// type, for example "invoice.sent".
type AppBroadcast struct {
	Target string
	Kind   string
	Data   any
}

func (AppBroadcast) EventType() topic.Topic { return TypeAppBroadcast }

// AnalyticsTrack records a named usage event.
type AnalyticsTrack struct {
	Name       string
	Properties map[string]any
	UserID     string
	ProjectID  string
}

func (AnalyticsTrack) EventType() topic.Topic { return TypeAnalyticsTrack }

// AISuggestion carries an assistant reply for a comment or prompt.
type AISuggestion struct {
	CommentID string
	Prompt    string
	Text      string
	Model     string
}

func (AISuggestion) EventType() topic.Topic { return TypeAISuggestion }

// Custom is the payload for event types without a dedicated struct.
type Custom struct {
	Type topic.Topic
	Data any
}

func (c Custom) EventType() topic.Topic { return c.Type }
