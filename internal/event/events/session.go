package events

import (
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/topic"
)

// ProjectChanged is published when the current project is set or cleared.
type ProjectChanged struct {
	Project  *domain.Project
	Previous *domain.Project
}

func (ProjectChanged) EventType() topic.Topic { return TypeProjectChanged }

// UserChanged is published when the current user is set or cleared.
type UserChanged struct {
	User     *domain.User
	Previous *domain.User
}

func (UserChanged) EventType() topic.Topic { return TypeUserChanged }

// ConnectionStatus is published on every real-time status transition.
type ConnectionStatus struct {
	Status   domain.ConnectionStatus
	Previous domain.ConnectionStatus
	Endpoint string
	Err      string
}

func (ConnectionStatus) EventType() topic.Topic { return TypeConnectionStatus }
