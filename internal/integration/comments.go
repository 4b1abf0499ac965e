package integration

import (
	"context"
	"slices"
	"strings"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
)

// CommentInput is the data needed to create a comment. Author and project
// come from the current user and project.
type CommentInput struct {
	Content    string
	Type       domain.CommentType
	Priority   domain.Priority
	Position   *domain.Position
	Tags       []string
	ParentID   string
	AssignedTo string
}

// CommentPatch lists the fields to change. Nil fields are left alone.
type CommentPatch struct {
	Content  *string
	Priority *domain.Priority
	Status   *domain.CommentStatus
	Position *domain.Position
	Tags     []string
}

// AddComment appends a comment to the feed and publishes comment.created.
func (s *Service) AddComment(ctx context.Context, in CommentInput) (domain.Comment, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Comment{}, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return domain.Comment{}, s.fail(ctx, "add comment", ErrEmptyComment)
	}

	now := s.clock()
	c := domain.Comment{
		ID:         s.nextID(),
		Content:    content,
		Type:       in.Type,
		Status:     domain.CommentOpen,
		Priority:   in.Priority,
		Position:   in.Position,
		Tags:       slices.Clone(in.Tags),
		ParentID:   in.ParentID,
		AssignedTo: in.AssignedTo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if c.Type == "" {
		c.Type = domain.CommentText
	}
	if c.Priority == "" {
		c.Priority = domain.PriorityMedium
	}

	s.mu.Lock()
	if s.project != nil {
		c.ProjectID = s.project.ID
	}
	if s.user != nil {
		c.AuthorID = s.user.ID
		c.AuthorName = s.user.Name
	}
	s.comments = append(s.comments, c)
	s.mu.Unlock()

	s.publish(ctx, events.CommentCreated{Comment: c.Clone()})
	return c.Clone(), nil
}

// UpdateComment applies patch and publishes comment.updated.
func (s *Service) UpdateComment(ctx context.Context, id string, patch CommentPatch) (domain.Comment, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Comment{}, err
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return domain.Comment{}, s.fail(ctx, "update comment "+id, ErrEmptyComment)
	}

	s.mu.Lock()
	i := s.commentIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Comment{}, s.fail(ctx, "update comment "+id, ErrCommentNotFound)
	}
	prev := s.comments[i].Clone()
	c := &s.comments[i]
	if patch.Content != nil {
		c.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Priority != nil {
		c.Priority = *patch.Priority
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Position != nil {
		p := *patch.Position
		c.Position = &p
	}
	if patch.Tags != nil {
		c.Tags = slices.Clone(patch.Tags)
	}
	c.UpdatedAt = s.clock()
	updated := c.Clone()
	s.mu.Unlock()

	s.publish(ctx, events.CommentUpdated{Comment: updated, Previous: prev})
	return updated, nil
}

// DeleteComment removes a comment and publishes comment.deleted. Deleting
// the selected comment clears the selection.
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.mu.Lock()
	i := s.commentIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return s.fail(ctx, "delete comment "+id, ErrCommentNotFound)
	}
	removed := s.comments[i]
	s.comments = slices.Delete(s.comments, i, i+1)
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	s.publish(ctx, events.CommentDeleted{Comment: removed})
	return nil
}

// ResolveComment marks a comment resolved. An empty by defaults to the
// current user.
func (s *Service) ResolveComment(ctx context.Context, id, by string) (domain.Comment, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Comment{}, err
	}

	s.mu.Lock()
	i := s.commentIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Comment{}, s.fail(ctx, "resolve comment "+id, ErrCommentNotFound)
	}
	if by == "" && s.user != nil {
		by = s.user.ID
	}
	now := s.clock()
	c := &s.comments[i]
	c.Status = domain.CommentResolved
	c.ResolvedBy = by
	c.ResolvedAt = &now
	c.UpdatedAt = now
	resolved := c.Clone()
	s.mu.Unlock()

	s.publish(ctx, events.CommentResolved{Comment: resolved, ResolvedBy: by})
	return resolved, nil
}

// AssignComment sets the assignee. An empty assignee unassigns.
func (s *Service) AssignComment(ctx context.Context, id, assignee string) (domain.Comment, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Comment{}, err
	}

	s.mu.Lock()
	i := s.commentIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Comment{}, s.fail(ctx, "assign comment "+id, ErrCommentNotFound)
	}
	c := &s.comments[i]
	prev := c.AssignedTo
	c.AssignedTo = assignee
	c.UpdatedAt = s.clock()
	assigned := c.Clone()
	s.mu.Unlock()

	s.publish(ctx, events.CommentAssigned{Comment: assigned, Assignee: assignee, PreviousAssignee: prev})
	return assigned, nil
}

// SelectComment moves the UI focus to a comment. An empty id clears the
// selection.
func (s *Service) SelectComment(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	s.mu.Lock()
	if id != "" && s.commentIndex(id) < 0 {
		s.mu.Unlock()
		return s.fail(ctx, "select comment "+id, ErrCommentNotFound)
	}
	s.selected = id
	s.mu.Unlock()

	s.publish(ctx, events.CommentSelected{CommentID: id})
	return nil
}

// SelectedComment returns the selected comment id or "".
func (s *Service) SelectedComment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Comment returns one comment.
func (s *Service) Comment(id string) (domain.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.commentIndex(id)
	if i < 0 {
		return domain.Comment{}, false
	}
	return s.comments[i].Clone(), true
}

// Comments returns the feed in insertion order.
func (s *Service) Comments() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneComments(s.comments)
}

func (s *Service) commentIndex(id string) int {
	return slices.IndexFunc(s.comments, func(c domain.Comment) bool { return c.ID == id })
}

func cloneComments(in []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
