package domain

import (
	"slices"
	"strings"
	"time"
)

// CommentStatus is the review state of a comment.
type CommentStatus string

const (
	CommentOpen     CommentStatus = "open"
	CommentResolved CommentStatus = "resolved"
	CommentArchived CommentStatus = "archived"
)

// CommentType is the medium a comment was left in.
type CommentType string

const (
	CommentText    CommentType = "text"
	CommentVoice   CommentType = "voice"
	CommentDrawing CommentType = "drawing"
	CommentScreen  CommentType = "screen"
)

// Priority ranks comments and notifications.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Position anchors a comment on the reviewed asset. Timestamp is the media
// offset for audio and video assets.
type Position struct {
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Timestamp time.Duration `json:"timestamp,omitempty"`
}

// Comment is a piece of client or collaborator feedback.
type Comment struct {
	ID         string        `json:"id"`
	ProjectID  string        `json:"project_id,omitempty"`
	AuthorID   string        `json:"author_id,omitempty"`
	AuthorName string        `json:"author_name,omitempty"`
	Content    string        `json:"content"`
	Type       CommentType   `json:"type"`
	Status     CommentStatus `json:"status"`
	Priority   Priority      `json:"priority"`
	Position   *Position     `json:"position,omitempty"`
	AssignedTo string        `json:"assigned_to,omitempty"`
	Tags       []string      `json:"tags,omitempty"`
	ParentID   string        `json:"parent_id,omitempty"`
	ResolvedBy string        `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Clone returns a deep copy.
func (c Comment) Clone() Comment {
	c.Tags = slices.Clone(c.Tags)
	if c.Position != nil {
		p := *c.Position
		c.Position = &p
	}
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		c.ResolvedAt = &t
	}
	return c
}

// Filters narrows the comment feed. Empty fields match everything.
type Filters struct {
	Status     []CommentStatus `json:"status,omitempty"`
	Priority   []Priority      `json:"priority,omitempty"`
	Type       []CommentType   `json:"type,omitempty"`
	AuthorID   string          `json:"author_id,omitempty"`
	AssignedTo string          `json:"assigned_to,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Query      string          `json:"query,omitempty"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return len(f.Status) == 0 && len(f.Priority) == 0 && len(f.Type) == 0 &&
		f.AuthorID == "" && f.AssignedTo == "" && len(f.Tags) == 0 && f.Query == ""
}

// Clone returns a deep copy.
func (f Filters) Clone() Filters {
	f.Status = slices.Clone(f.Status)
	f.Priority = slices.Clone(f.Priority)
	f.Type = slices.Clone(f.Type)
	f.Tags = slices.Clone(f.Tags)
	return f
}

// Match reports whether c passes every set filter. Tags match when the
// comment carries all of them; Query is a case-insensitive substring match
// on content and author name.
func (f Filters) Match(c Comment) bool {
	if len(f.Status) > 0 && !slices.Contains(f.Status, c.Status) {
		return false
	}
	if len(f.Priority) > 0 && !slices.Contains(f.Priority, c.Priority) {
		return false
	}
	if len(f.Type) > 0 && !slices.Contains(f.Type, c.Type) {
		return false
	}
	if f.AuthorID != "" && f.AuthorID != c.AuthorID {
		return false
	}
	if f.AssignedTo != "" && f.AssignedTo != c.AssignedTo {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(c.Tags, tag) {
			return false
		}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(c.Content), q) &&
			!strings.Contains(strings.ToLower(c.AuthorName), q) {
			return false
		}
	}
	return true
}
