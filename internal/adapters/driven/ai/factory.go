// Package ai provides factory functions for creating embedding adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paperdex/internal/adapters/driven/embedding/jina"
	"github.com/custodia-labs/paperdex/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/paperdex/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Embedders holds the embedding adapters for both modalities.
type Embedders struct {
	Text  driven.TextEmbedder
	Image driven.ImageEmbedder

	// Warnings are non-fatal issues, such as an image provider without a key.
	Warnings []string
}

// Close releases all resources held by the embedders.
func (e *Embedders) Close() {
	if e.Text != nil {
		e.Text.Close()
	}
	if e.Image != nil {
		e.Image.Close()
	}
}

// CreateEmbedders builds both embedders from settings. A modality whose
// provider is not configured is left nil and reported in Warnings, so the
// other modality stays usable.
func CreateEmbedders(settings *domain.AppSettings) (*Embedders, error) {
	result := &Embedders{}

	text, err := CreateTextEmbedder(&settings.TextEmbedding)
	switch {
	case err != nil:
		return nil, err
	case text == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"text embedding provider %q is not configured; paper commands are unavailable",
			settings.TextEmbedding.Provider))
	default:
		result.Text = text
	}

	image, err := CreateImageEmbedder(&settings.ImageEmbedding)
	switch {
	case err != nil:
		result.Close()
		return nil, err
	case image == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"image embedding provider %q is not configured (set JINA_API_KEY); image commands are unavailable",
			settings.ImageEmbedding.Provider))
	default:
		result.Image = image
	}

	return result, nil
}

// CreateTextEmbedder creates the text embedder selected by settings.
// Returns nil if the provider is not configured.
func CreateTextEmbedder(settings *domain.EmbeddingSettings) (driven.TextEmbedder, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollama.NewTextEmbedder(ollama.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		embedder, err := openai.NewTextEmbedder(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return embedder, nil

	case domain.AIProviderJina:
		embedder, err := createJina(settings)
		if err != nil {
			return nil, err
		}
		return embedder, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateImageEmbedder creates the image embedder selected by settings.
// Returns nil if the provider is not configured.
func CreateImageEmbedder(settings *domain.EmbeddingSettings) (driven.ImageEmbedder, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	if !settings.Provider.SupportsImages() {
		return nil, fmt.Errorf("%s does not support image embeddings, use %s",
			settings.Provider, domain.AIProviderJina)
	}
	embedder, err := createJina(settings)
	if err != nil {
		return nil, err
	}
	return embedder, nil
}

func createJina(settings *domain.EmbeddingSettings) (*jina.Embedder, error) {
	return jina.NewEmbedder(jina.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}

// pinger is the connectivity check shared by both embedder kinds.
type pinger interface {
	Ping(ctx context.Context) error
}

// ValidateEmbedders pings every configured embedder and returns one error
// per unreachable modality, keyed by "text" or "image".
func ValidateEmbedders(ctx context.Context, e *Embedders) map[string]error {
	failures := make(map[string]error)
	check := func(name string, p pinger) {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			failures[name] = fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
	}
	if e.Text != nil {
		check("text", e.Text)
	}
	if e.Image != nil {
		check("image", e.Image)
	}
	return failures
}
