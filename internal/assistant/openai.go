package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Config configures the OpenAI assistant.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float64
	MaxRetries  *int
}

// OpenAI suggests replies with the chat completions API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int
	temp      *float64
	log       zerolog.Logger
}

// NewOpenAI returns an assistant for cfg.
func NewOpenAI(cfg Config, log zerolog.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, option.WithMaxRetries(*cfg.MaxRetries))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}

	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		temp:      cfg.Temperature,
		log:       log,
	}, nil
}

func (a *OpenAI) Model() string {
	return a.model
}

func (a *OpenAI) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	if strings.TrimSpace(req.Comment) == "" {
		return Suggestion{}, ErrEmptyPrompt
	}

	params := openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(req)),
		},
		MaxCompletionTokens: openai.Int(int64(a.maxTokens)),
	}
	if a.temp != nil {
		params.Temperature = openai.Float(*a.temp)
	}

	start := time.Now()
	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Suggestion{}, fmt.Errorf("openai suggest: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Suggestion{}, ErrNoChoices
	}

	a.log.Debug().
		Str("model", a.model).
		Dur("duration", time.Since(start)).
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("suggestion completed")

	return Suggestion{
		CommentID:        req.CommentID,
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:            a.model,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
