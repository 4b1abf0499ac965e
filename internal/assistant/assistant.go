// Package assistant backs the provider's AI slice.
//
// An Assistant turns a comment into a suggested reply. The provider only
// calls it when AI is enabled in the configuration and the ai feature is
// on; otherwise it uses Disabled.
package assistant

import (
	"context"
	"errors"
	"strings"
)

// Errors returned by assistants.
var (
	ErrDisabled      = errors.New("ai assistant is disabled")
	ErrMissingAPIKey = errors.New("ai assistant api key is required")
	ErrEmptyPrompt   = errors.New("nothing to suggest for an empty comment")
	ErrNoChoices     = errors.New("ai assistant returned no choices")
)

// Request asks for a suggestion about one comment.
type Request struct {
	CommentID string
	Comment   string

	// Instruction overrides the default "suggest a reply" task.
	Instruction string

	// Context is extra project context, such as the project name.
	Context string
}

// Suggestion is the assistant's answer.
type Suggestion struct {
	CommentID        string `json:"comment_id,omitempty"`
	Text             string `json:"text"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

// Assistant produces suggestions.
type Assistant interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
	Model() string
}

// Disabled refuses every request.
type Disabled struct{}

func (Disabled) Suggest(context.Context, Request) (Suggestion, error) {
	return Suggestion{}, ErrDisabled
}

func (Disabled) Model() string { return "" }

const systemPrompt = "You help freelancers respond to client feedback. " +
	"Answer with a short, friendly reply the freelancer can send as is."

const defaultInstruction = "Suggest a reply to this comment."

func userPrompt(req Request) string {
	var b strings.Builder
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = defaultInstruction
	}
	b.WriteString(instruction)
	if c := strings.TrimSpace(req.Context); c != "" {
		b.WriteString("\n\nContext: ")
		b.WriteString(c)
	}
	b.WriteString("\n\nComment:\n")
	b.WriteString(strings.TrimSpace(req.Comment))
	return b.String()
}
