package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/events"
)

func TestService_AddComment(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	_ = s.SetCurrentProject(ctx, &domain.Project{ID: "p1"})
	_ = s.SetCurrentUser(ctx, &domain.User{ID: "u1", Name: "Ada"})

	c, err := s.AddComment(ctx, CommentInput{Content: "  note  ", Tags: []string{"copy"}})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if c.ID == "" {
		t.Error("ID should be generated")
	}
	if c.Content != "note" {
		t.Errorf("Content = %q", c.Content)
	}
	if c.Type != domain.CommentText || c.Priority != domain.PriorityMedium || c.Status != domain.CommentOpen {
		t.Errorf("defaults = %q %q %q", c.Type, c.Priority, c.Status)
	}
	if c.ProjectID != "p1" || c.AuthorID != "u1" || c.AuthorName != "Ada" {
		t.Errorf("ownership = %q %q %q", c.ProjectID, c.AuthorID, c.AuthorName)
	}
	if !c.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v", c.CreatedAt)
	}

	created := log.ofType(events.TypeCommentCreated)
	if len(created) != 1 {
		t.Fatalf("comment.created events = %d", len(created))
	}
	if got := created[0].Payload.(events.CommentCreated).Comment; got.ID != c.ID {
		t.Errorf("event comment = %q, want %q", got.ID, c.ID)
	}
}

func TestService_AddComment_Empty(t *testing.T) {
	s, log := newTestService(t)

	_, err := s.AddComment(context.Background(), CommentInput{Content: "   "})
	if !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("err = %v, want ErrEmptyComment", err)
	}
	if !errors.Is(s.LastError(), ErrEmptyComment) {
		t.Errorf("LastError = %v", s.LastError())
	}
	if len(log.ofType(events.TypeSystemError)) != 1 {
		t.Error("failure should be published as system.error")
	}
	if len(log.ofType(events.TypeCommentCreated)) != 0 {
		t.Error("no comment.created for a rejected comment")
	}
}

func TestService_CommentOrder(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.AddComment(ctx, CommentInput{Content: text}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Comments()
	want := []string{"one", "two", "three"}
	for i, c := range got {
		if c.Content != want[i] {
			t.Errorf("Comments()[%d] = %q, want %q", i, c.Content, want[i])
		}
	}
}

func TestService_UpdateComment(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	c, _ := s.AddComment(ctx, CommentInput{Content: "draft"})
	content := "final"
	prio := domain.PriorityUrgent

	updated, err := s.UpdateComment(ctx, c.ID, CommentPatch{Content: &content, Priority: &prio, Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	if updated.Content != "final" || updated.Priority != domain.PriorityUrgent || len(updated.Tags) != 1 {
		t.Errorf("updated = %+v", updated)
	}

	evts := log.ofType(events.TypeCommentUpdated)
	if len(evts) != 1 {
		t.Fatalf("comment.updated events = %d", len(evts))
	}
	p := evts[0].Payload.(events.CommentUpdated)
	if p.Previous.Content != "draft" || p.Comment.Content != "final" {
		t.Errorf("payload = %+v", p)
	}

	empty := " "
	if _, err := s.UpdateComment(ctx, c.ID, CommentPatch{Content: &empty}); !errors.Is(err, ErrEmptyComment) {
		t.Errorf("empty content err = %v", err)
	}
	if _, err := s.UpdateComment(ctx, "missing", CommentPatch{}); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestService_DeleteComment(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	a, _ := s.AddComment(ctx, CommentInput{Content: "a"})
	b, _ := s.AddComment(ctx, CommentInput{Content: "b"})
	_ = s.SelectComment(ctx, a.ID)

	if err := s.DeleteComment(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if s.SelectedComment() != "" {
		t.Error("deleting the selected comment should clear the selection")
	}
	if got := s.Comments(); len(got) != 1 || got[0].ID != b.ID {
		t.Errorf("Comments = %+v", got)
	}
	if len(log.ofType(events.TypeCommentDeleted)) != 1 {
		t.Error("comment.deleted not published")
	}
	if err := s.DeleteComment(ctx, a.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestService_ResolveComment(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	_ = s.SetCurrentUser(ctx, &domain.User{ID: "u1"})
	c, _ := s.AddComment(ctx, CommentInput{Content: "fix kerning"})

	tests := []struct {
		name   string
		by     string
		wantBy string
	}{
		{"explicit", "u2", "u2"},
		{"current user", "", "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ResolveComment(ctx, c.ID, tt.by)
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != domain.CommentResolved || got.ResolvedBy != tt.wantBy || got.ResolvedAt == nil {
				t.Errorf("resolved = %+v", got)
			}
		})
	}

	evts := log.ofType(events.TypeCommentResolved)
	if len(evts) != 2 {
		t.Fatalf("comment.resolved events = %d", len(evts))
	}
	if evts[0].Payload.(events.CommentResolved).ResolvedBy != "u2" {
		t.Errorf("payload = %+v", evts[0].Payload)
	}
}

func TestService_AssignComment(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	c, _ := s.AddComment(ctx, CommentInput{Content: "review", AssignedTo: "u1"})
	got, err := s.AssignComment(ctx, c.ID, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if got.AssignedTo != "u2" {
		t.Errorf("AssignedTo = %q", got.AssignedTo)
	}

	p := log.ofType(events.TypeCommentAssigned)[0].Payload.(events.CommentAssigned)
	if p.Assignee != "u2" || p.PreviousAssignee != "u1" {
		t.Errorf("payload = %+v", p)
	}
	if _, err := s.AssignComment(ctx, "nope", "u2"); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestService_SelectComment(t *testing.T) {
	s, log := newTestService(t)
	ctx := context.Background()

	c, _ := s.AddComment(ctx, CommentInput{Content: "x"})

	if err := s.SelectComment(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if s.SelectedComment() != c.ID {
		t.Errorf("SelectedComment = %q", s.SelectedComment())
	}
	if err := s.SelectComment(ctx, "unknown"); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("unknown err = %v", err)
	}
	if s.SelectedComment() != c.ID {
		t.Error("failed select should keep the previous selection")
	}
	if err := s.SelectComment(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if s.SelectedComment() != "" {
		t.Error("empty id should clear the selection")
	}
	if n := len(log.ofType(events.TypeCommentSelected)); n != 2 {
		t.Errorf("comment.selected events = %d, want 2", n)
	}
}

func TestService_CommentsAreCopies(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	c, _ := s.AddComment(ctx, CommentInput{Content: "x", Tags: []string{"t"}})
	list := s.Comments()
	list[0].Tags[0] = "changed"
	list[0].Content = "changed"

	got, ok := s.Comment(c.ID)
	if !ok || got.Content != "x" || got.Tags[0] != "t" {
		t.Errorf("stored comment mutated: %+v", got)
	}
}

func TestService_EventsObserveMutation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	var seen int
	sub, err := s.bus.Subscribe(events.TypeCommentCreated, handlerFunc(func() {
		seen = len(s.Comments())
	}))
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	_, _ = s.AddComment(ctx, CommentInput{Content: "x"})
	if seen != 1 {
		t.Errorf("handler saw %d comments, want 1", seen)
	}
}
