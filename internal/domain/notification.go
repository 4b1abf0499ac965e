package domain

import "time"

// NotificationType drives the icon and toast variant.
type NotificationType string

const (
	NotifyInfo       NotificationType = "info"
	NotifySuccess    NotificationType = "success"
	NotifyWarning    NotificationType = "warning"
	NotifyError      NotificationType = "error"
	NotifyComment    NotificationType = "comment"
	NotifyMention    NotificationType = "mention"
	NotifyAssignment NotificationType = "assignment"
)

// Notification is an entry in the user's notification center.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	Priority  Priority         `json:"priority,omitempty"`
	Read      bool             `json:"read"`
	ActionURL string           `json:"action_url,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ConnectionStatus is the state of the real-time channel.
type ConnectionStatus string

const (
	ConnectionDisconnected ConnectionStatus = "disconnected"
	ConnectionConnecting   ConnectionStatus = "connecting"
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionError        ConnectionStatus = "error"
)
