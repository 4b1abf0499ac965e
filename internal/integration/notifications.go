package integration

import (
	"context"
	"slices"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
)

// NotificationInput is the data needed to create a notification.
type NotificationInput struct {
	Type      domain.NotificationType
	Title     string
	Message   string
	Priority  domain.Priority
	ActionURL string
}

// AddNotification appends to the notification center and publishes
// notification.created.
func (s *Service) AddNotification(ctx context.Context, in NotificationInput) (domain.Notification, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Notification{}, err
	}

	n := domain.Notification{
		ID:        s.nextID(),
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Priority:  in.Priority,
		ActionURL: in.ActionURL,
		CreatedAt: s.clock(),
	}
	if n.Type == "" {
		n.Type = domain.NotifyInfo
	}

	s.mu.Lock()
	if s.user != nil {
		n.UserID = s.user.ID
	}
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()

	s.publish(ctx, events.NotificationCreated{Notification: n})
	return n, nil
}

// MarkNotificationRead marks one notification read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.mu.Lock()
	i := slices.IndexFunc(s.notifications, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return s.fail(ctx, "mark notification "+id, ErrNotificationNotFound)
	}
	s.notifications[i].Read = true
	s.mu.Unlock()

	s.publish(ctx, events.NotificationRead{NotificationID: id})
	return nil
}

// MarkAllNotificationsRead marks everything read and returns how many
// notifications changed.
func (s *Service) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	changed := 0
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed++
		}
	}
	s.mu.Unlock()

	s.publish(ctx, events.NotificationReadAll{Count: changed})
	return changed, nil
}

// ClearNotifications empties the notification center.
func (s *Service) ClearNotifications(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.mu.Lock()
	n := len(s.notifications)
	s.notifications = nil
	s.mu.Unlock()

	s.publish(ctx, events.NotificationCleared{Count: n})
	return nil
}

// Notifications returns the notification center in insertion order.
func (s *Service) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, item := range s.notifications {
		if !item.Read {
			n++
		}
	}
	return n
}
