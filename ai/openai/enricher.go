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

// maxEnrichInput caps the text sent to the model so long documents stay
// within the context window.
const maxEnrichInput = 12_000

// Enricher implements ai.Enricher using OpenAI-compatible chat APIs.
type Enricher struct {
	client  llms.Model
	timeout time.Duration
	logger  *slog.Logger
}

// enrichResponse is an internal type used for JSON unmarshaling.
type enrichResponse struct {
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
}

// newEnricher is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEnricher(config *ai.Config) (*Enricher, error) {
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

	return &Enricher{
		client:  client,
		timeout: config.EnrichTimeout,
		logger:  slog.Default().With("component", "openai-enricher"),
	}, nil
}

// NewEnricher creates a new enricher using the provided configuration.
//
// Returns ai.Enricher interface to enforce abstraction.
func NewEnricher(config *ai.Config) (ai.Enricher, error) {
	return newEnricher(config)
}

// Enrich generates a title, tags, and summary for the given text.
func (e *Enricher) Enrich(ctx context.Context, text string) (ai.Enrichment, error) {
	if strings.TrimSpace(text) == "" {
		return ai.Enrichment{}, ai.ErrEmptyInput
	}

	if len(text) > maxEnrichInput {
		text = text[:maxEnrichInput] + "\n[... truncated ...]"
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(enrichPromptTemplate),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		e.logger.Warn("enrichment call failed", "err", err)
		return ai.Enrichment{}, fmt.Errorf("%w: %w", ai.ErrTransient, err)
	}

	if len(response.Choices) < 1 {
		return ai.Enrichment{}, fmt.Errorf("%w: empty response", ai.ErrSchema)
	}

	responseText := stripCodeFences(response.Choices[0].Content)
	responseText = repairJSON(responseText)

	var parsed enrichResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		e.logger.Warn("error parsing enrichment response", "response", responseText, "err", err)
		return ai.Enrichment{}, fmt.Errorf("%w: %w", ai.ErrSchema, err)
	}

	if strings.TrimSpace(parsed.Title) == "" {
		return ai.Enrichment{}, fmt.Errorf("%w: missing title", ai.ErrSchema)
	}

	tags := make([]string, 0, len(parsed.Tags))
	for _, tag := range parsed.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	return ai.Enrichment{
		Title:   strings.TrimSpace(parsed.Title),
		Tags:    tags,
		Summary: strings.TrimSpace(parsed.Summary),
	}, nil
}
