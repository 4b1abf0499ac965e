package integration

import (
	"context"
	"fmt"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
)

// SetCurrentProject switches the project. nil clears it.
func (s *Service) SetCurrentProject(ctx context.Context, p *domain.Project) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if p != nil {
		cp := *p
		p = &cp
	}

	s.mu.Lock()
	prev := s.project
	s.project = p
	s.mu.Unlock()

	s.publish(ctx, events.ProjectChanged{Project: copyProject(p), Previous: prev})
	return nil
}

// CurrentProject returns a copy of the current project or nil.
func (s *Service) CurrentProject() *domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProject(s.project)
}

// SetCurrentUser switches the user. nil clears it.
func (s *Service) SetCurrentUser(ctx context.Context, u *domain.User) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if u != nil {
		cp := *u
		u = &cp
	}

	s.mu.Lock()
	prev := s.user
	s.user = u
	s.mu.Unlock()

	s.publish(ctx, events.UserChanged{User: copyUser(u), Previous: prev})
	return nil
}

// CurrentUser returns a copy of the current user or nil.
func (s *Service) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// Connect opens the real-time channel, reporting connecting and then
// connected or error.
func (s *Service) Connect(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.connector == nil {
		return s.fail(ctx, "connect", ErrNoConnector)
	}

	s.setConnection(ctx, domain.ConnectionConnecting, nil)
	if err := s.connector.Connect(ctx); err != nil {
		s.setConnection(ctx, domain.ConnectionError, err)
		return s.fail(ctx, "connect", err)
	}
	s.setConnection(ctx, domain.ConnectionConnected, nil)
	return nil
}

// Disconnect closes the real-time channel.
func (s *Service) Disconnect(ctx context.Context) error {
	if s.connector == nil {
		return nil
	}
	err := s.connector.Disconnect(ctx)
	s.setConnection(ctx, domain.ConnectionDisconnected, nil)
	if err != nil {
		return s.fail(ctx, "disconnect", err)
	}
	return nil
}

// ConnectionStatus returns the last known status of the channel.
func (s *Service) ConnectionStatus() domain.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connection
}

func (s *Service) setConnection(ctx context.Context, status domain.ConnectionStatus, err error) {
	s.mu.Lock()
	prev := s.connection
	s.connection = status
	s.mu.Unlock()

	if prev == status {
		return
	}
	p := events.ConnectionStatus{Status: status, Previous: prev}
	if err != nil {
		p.Err = err.Error()
	}
	s.log.Debug().Str("status", string(status)).Str("previous", string(prev)).Msg("connection status")
	s.publish(ctx, p)
}

// onConnectorStatus handles status changes the connector detects by itself.
func (s *Service) onConnectorStatus(status domain.ConnectionStatus, err error) {
	ctx := context.Background()
	s.setConnection(ctx, status, err)
	if err != nil {
		s.RecordError(ctx, fmt.Errorf("realtime channel: %w", err))
	}
}

func copyProject(p *domain.Project) *domain.Project {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
