package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keepsake-dev/keepsake/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Merger implements ai.Merger using OpenAI-compatible chat APIs.
type Merger struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// mergeResponse is an internal type used for JSON unmarshaling.
type mergeResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// newMerger is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newMerger(config *ai.Config) (*Merger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Merger{
		client:  client,
		timeout: config.MergeTimeout,
		logger:  slog.Default().With("component", "openai-merger"),
	}, nil
}

// NewMerger creates a new merger using the provided configuration.
//
// Returns ai.Merger interface to enforce abstraction.
func NewMerger(config *ai.Config) (ai.Merger, error) {
	return newMerger(config)
}

// Merge consolidates the given texts into a single titled document.
func (m *Merger) Merge(ctx context.Context, texts []string) (ai.Merged, error) {
	if len(texts) == 0 {
		return ai.Merged{}, ai.ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	combined := strings.Join(texts, "\n---\n")

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(mergePromptTemplate),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(combined),
			},
		},
	}

	response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		m.logger.Warn("merge call failed", "texts", len(texts), "err", err)
		return ai.Merged{}, fmt.Errorf("%w: %w", ai.ErrTransient, err)
	}

	if len(response.Choices) < 1 {
		return ai.Merged{}, fmt.Errorf("%w: empty response", ai.ErrSchema)
	}

	responseText := stripCodeFences(response.Choices[0].Content)
	responseText = repairJSON(responseText)

	var parsed mergeResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		m.logger.Warn("error parsing merge response", "response", responseText, "err", err)
		return ai.Merged{}, fmt.Errorf("%w: %w", ai.ErrSchema, err)
	}

	if strings.TrimSpace(parsed.Body) == "" {
		return ai.Merged{}, fmt.Errorf("%w: missing body", ai.ErrSchema)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = "Consolidated Note"
	}

	return ai.Merged{
		Title: title,
		Body:  strings.TrimSpace(parsed.Body),
	}, nil
}
