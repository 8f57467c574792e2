// Copyright 2026 Keepsake Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


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

// IntentClassifier implements ai.IntentClassifier using OpenAI-compatible chat APIs.
type IntentClassifier struct {
	client  llms.Model
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// intentFilters is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type intentFilters struct {
	CreatedAfter *string  `json:"created_after"`
	Kind         *string  `json:"kind"`
	Tags         []string `json:"tags"`
}

// intentResponse is the wrapper structure for the LLM's JSON response.
type intentResponse struct {
	Filters         intentFilters `json:"filters"`
	SemanticQuery   string        `json:"semantic_query"`
	LexicalSynonyms []string      `json:"lexical_synonyms"`
	Intent          string        `json:"intent"`
}

// newIntentClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newIntentClassifier(config *ai.Config) (*IntentClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &IntentClassifier{
		client:  client,
		timeout: config.ClassifyTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewIntentClassifier creates a new intent classifier using the provided configuration.
//
// Returns ai.IntentClassifier interface to enforce abstraction.
func NewIntentClassifier(config *ai.Config) (ai.IntentClassifier, error) {
	return newIntentClassifier(config)
}

// ClassifyIntent parses a natural-language query into a structured intent.
// The call is bounded by the configured classification timeout; timeouts
// and network failures return ai.ErrTransient, invalid output returns
// ai.ErrSchema. Callers apply ai.FallbackIntent on any error.
func (c *IntentClassifier) ClassifyIntent(ctx context.Context, query string) (ai.Intent, error) {
	if strings.TrimSpace(query) == "" {
		return ai.Intent{}, ai.ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildIntentPrompt(c.now())),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(query),
			},
		},
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		c.logger.Warn("intent classification call failed", "err", err)
		return ai.Intent{}, fmt.Errorf("%w: %w", ai.ErrTransient, err)
	}

	if len(response.Choices) < 1 {
		c.logger.Debug("no choices returned from model")
		return ai.Intent{}, fmt.Errorf("%w: empty response", ai.ErrSchema)
	}

	responseText := stripCodeFences(response.Choices[0].Content)
	responseText = repairJSON(responseText)

	var parsed intentResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		c.logger.Warn("error parsing classifier response", "response", responseText, "err", err)
		return ai.Intent{}, fmt.Errorf("%w: %w", ai.ErrSchema, err)
	}

	intent, err := c.toIntent(query, parsed)
	if err != nil {
		return ai.Intent{}, err
	}

	c.logger.Debug("classified intent",
		"kind", intent.Kind,
		"semanticQuery", intent.SemanticQuery,
		"expansions", len(intent.Expansions))

	return intent, nil
}

// toIntent converts the raw LLM response into a validated ai.Intent.
func (c *IntentClassifier) toIntent(query string, parsed intentResponse) (ai.Intent, error) {
	intent := ai.Intent{
		Kind:          ai.IntentKind(parsed.Intent),
		SemanticQuery: strings.TrimSpace(parsed.SemanticQuery),
	}

	// Truncate instead of rejecting when the model over-delivers synonyms.
	expansions := parsed.LexicalSynonyms
	if len(expansions) > ai.MaxExpansions {
		expansions = expansions[:ai.MaxExpansions]
	}
	for _, term := range expansions {
		if term = strings.TrimSpace(term); term != "" {
			intent.Expansions = append(intent.Expansions, term)
		}
	}

	if parsed.Filters.Kind != nil {
		intent.Filters.Kind = strings.ToLower(strings.TrimSpace(*parsed.Filters.Kind))
	}
	intent.Filters.Tags = parsed.Filters.Tags

	if parsed.Filters.CreatedAfter != nil && *parsed.Filters.CreatedAfter != "" {
		after, err := time.Parse(time.DateOnly, *parsed.Filters.CreatedAfter)
		if err != nil {
			return ai.Intent{}, fmt.Errorf("%w: bad created_after %q: %w", ai.ErrSchema, *parsed.Filters.CreatedAfter, err)
		}
		intent.Filters.CreatedAfter = after
	}

	// Safeguard: if the model strips the query too aggressively on a
	// semantic search, keep the original.
	if intent.Kind == ai.IntentSemanticSearch && len([]rune(intent.SemanticQuery)) < 2 {
		intent.SemanticQuery = query
	}

	if err := intent.Validate(); err != nil {
		return ai.Intent{}, err
	}
	return intent, nil
}

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
