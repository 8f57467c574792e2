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
	"log/slog"

	"github.com/keepsake-dev/keepsake/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages the embedder, classifier, enricher, and merger instances.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	classifier *IntentClassifier
	enricher   *Enricher
	merger     *Merger
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	classifier, err := newIntentClassifier(config)
	if err != nil {
		return nil, err
	}

	enricher, err := newEnricher(config)
	if err != nil {
		return nil, err
	}

	merger, err := newMerger(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		embedder:   embedder,
		classifier: classifier,
		enricher:   enricher,
		merger:     merger,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// IntentClassifier returns the query intent classification service.
func (p *Provider) IntentClassifier() ai.IntentClassifier {
	return p.classifier
}

// Enricher returns the item enrichment service.
func (p *Provider) Enricher() ai.Enricher {
	return p.enricher
}

// Merger returns the fragment consolidation service.
func (p *Provider) Merger() ai.Merger {
	return p.merger
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
