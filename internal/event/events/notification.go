package events

import (
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/topic"
)

// NotificationCreated is published for every notification added to the
// notification center.
type NotificationCreated struct {
	Notification domain.Notification
}

func (NotificationCreated) EventType() topic.Topic { return TypeNotificationCreated }

// NotificationRead is published when one notification is marked read.
type NotificationRead struct {
	NotificationID string
}

func (NotificationRead) EventType() topic.Topic { return TypeNotificationRead }

// NotificationReadAll is published when every notification is marked read.
type NotificationReadAll struct {
	Count int
}

func (NotificationReadAll) EventType() topic.Topic { return TypeNotificationReadAll }

// NotificationCleared is published when the notification center is emptied.
type NotificationCleared struct {
	Count int
}

func (NotificationCleared) EventType() topic.Topic { return TypeNotificationCleared }
