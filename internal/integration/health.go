package integration

import (
	"time"

	"github.com/kazi-app/ups/internal/domain"
)

// Health is the domain half of the provider's health check.
type Health struct {
	HasProject       bool                    `json:"has_project"`
	HasUser          bool                    `json:"has_user"`
	IsConnected      bool                    `json:"is_connected"`
	HasErrors        bool                    `json:"has_errors"`
	ConnectionStatus domain.ConnectionStatus `json:"connection_status"`
	LastError        string                  `json:"last_error,omitempty"`
	LastErrorAt      *time.Time              `json:"last_error_at,omitempty"`
}

// Health reports the current domain health.
func (s *Service) Health() Health {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := Health{
		HasProject:       s.project != nil,
		HasUser:          s.user != nil,
		IsConnected:      s.connection == domain.ConnectionConnected,
		HasErrors:        s.lastErr != nil,
		ConnectionStatus: s.connection,
	}
	if s.lastErr != nil {
		h.LastError = s.lastErr.Error()
		at := s.lastErrAt
		h.LastErrorAt = &at
	}
	return h
}

// Snapshot is a consistent copy of the whole state.
type Snapshot struct {
	Project         *domain.Project         `json:"project,omitempty"`
	User            *domain.User            `json:"user,omitempty"`
	Comments        []domain.Comment        `json:"comments"`
	SelectedComment string                  `json:"selected_comment,omitempty"`
	Notifications   []domain.Notification   `json:"notifications"`
	UnreadCount     int                     `json:"unread_count"`
	Connection      domain.ConnectionStatus `json:"connection"`
	Filters         domain.Filters          `json:"filters"`
	Exports         []domain.ExportRecord   `json:"exports"`
	Error           string                  `json:"error,omitempty"`
}

// Snapshot returns the state under a single lock acquisition.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Project:         copyProject(s.project),
		User:            copyUser(s.user),
		Comments:        cloneComments(s.comments),
		SelectedComment: s.selected,
		Notifications:   append([]domain.Notification{}, s.notifications...),
		Connection:      s.connection,
		Filters:         s.filters.Clone(),
		Exports:         append([]domain.ExportRecord{}, s.exports...),
	}
	for _, n := range s.notifications {
		if !n.Read {
			snap.UnreadCount++
		}
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}
