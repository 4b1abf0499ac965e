package events

import (
	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/event/topic"
)

// CommentCreated is published after a comment is appended to the feed.
type CommentCreated struct {
	Comment domain.Comment
}

func (CommentCreated) EventType() topic.Topic { return TypeCommentCreated }

// CommentUpdated carries the comment after the patch was applied.
type CommentUpdated struct {
	Comment  domain.Comment
	Previous domain.Comment
}

func (CommentUpdated) EventType() topic.Topic { return TypeCommentUpdated }

// CommentDeleted carries the removed comment.
type CommentDeleted struct {
	Comment domain.Comment
}

func (CommentDeleted) EventType() topic.Topic { return TypeCommentDeleted }

// CommentResolved is published when a comment moves to resolved.
type CommentResolved struct {
	Comment    domain.Comment
	ResolvedBy string
}

func (CommentResolved) EventType() topic.Topic { return TypeCommentResolved }

// CommentAssigned is published when the assignee changes.
type CommentAssigned struct {
	Comment          domain.Comment
	Assignee         string
	PreviousAssignee string
}

func (CommentAssigned) EventType() topic.Topic { return TypeCommentAssigned }

// CommentSelected is published when the UI focus moves to a comment.
// CommentID is empty when the selection is cleared.
type CommentSelected struct {
	CommentID string
}

func (CommentSelected) EventType() topic.Topic { return TypeCommentSelected }
