package ups

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kazi-app/ups/internal/domain"
)

// ProjectResolver loads the project a session works on, creating it when
// projectID is empty or unknown.
type ProjectResolver interface {
	ResolveProject(ctx context.Context, projectID, ownerID string) (*domain.Project, error)
}

// UserResolver loads the session user.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// AnonymousUserID is used when no user id is configured.
const AnonymousUserID = "anonymous"

// LocalResolver creates projects and users from their ids alone. It is the
// default when no persistence layer is wired in.
type LocalResolver struct {
	Now func() time.Time
}

func (r LocalResolver) ResolveProject(_ context.Context, projectID, ownerID string) (*domain.Project, error) {
	now := r.now()
	p := &domain.Project{
		ID:        projectID,
		Name:      projectID,
		Status:    domain.ProjectActive,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.Name = "Untitled project"
		p.Status = domain.ProjectDraft
	}
	return p, nil
}

func (r LocalResolver) ResolveUser(_ context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return &domain.User{ID: AnonymousUserID, Name: "Guest", Role: domain.RoleViewer}, nil
	}
	return &domain.User{ID: userID, Name: userID, Role: domain.RoleOwner}, nil
}

func (r LocalResolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
