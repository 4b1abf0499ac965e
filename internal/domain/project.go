package domain

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectDraft    ProjectStatus = "draft"
	ProjectArchived ProjectStatus = "archived"
)

// Project is the project a workspace session is scoped to.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	OwnerID     string        `json:"owner_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// UserRole distinguishes the freelancer from their clients.
type UserRole string

const (
	RoleOwner        UserRole = "owner"
	RoleCollaborator UserRole = "collaborator"
	RoleClient       UserRole = "client"
	RoleViewer       UserRole = "viewer"
)

// User is the signed-in workspace user.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email,omitempty"`
	Avatar string   `json:"avatar,omitempty"`
	Role   UserRole `json:"role"`
}
