// Package jina provides a joint image and text embedding adapter using the
// Jina AI CLIP API.
package jina

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/paperdex/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// Ensure the embedder implements both interfaces.
var (
	_ driven.ImageEmbedder = (*Embedder)(nil)
	_ driven.TextEmbedder  = (*Embedder)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.jina.ai/v1"
	DefaultModel   = "jina-clip-v2"
	DefaultTimeout = 60 * time.Second

	// maxBatch is the number of inputs sent per request. Images are large,
	// so requests stay small.
	maxBatch = 16
)

// Config holds configuration for the Jina embedding service.
type Config struct {
	// APIKey is the Jina API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.jina.ai/v1).
	BaseURL string

	// Model is the CLIP model to use (default: jina-clip-v2).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions truncates vectors (jina-clip-v2 supports Matryoshka sizes).
	Dimensions int

	// RateLimit throttles requests (default: ratelimit.DefaultConfig).
	RateLimit ratelimit.Config
}

// Embedder maps images and text into one CLIP vector space.
type Embedder struct {
	client     *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	truncate   bool
}

// input is one item of a request; exactly one field is set.
type input struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type embeddingRequest struct {
	Model      string  `json:"model"`
	Input      []input `json:"input"`
	Dimensions int     `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// NewEmbedder creates a new Jina CLIP embedder.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: jina: API key is required", domain.ErrEmbeddingUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dimensions := cfg.Dimensions
	truncate := dimensions > 0
	if dimensions == 0 {
		var ok bool
		dimensions, ok = domain.EmbeddingDimensions()[cfg.Model]
		if !ok {
			dimensions = 1024
		}
	}

	return &Embedder{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    ratelimit.New(cfg.RateLimit),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		truncate:   truncate,
	}, nil
}

// EncodeImages embeds decoded images. Each image is sent as base64 PNG.
func (e *Embedder) EncodeImages(ctx context.Context, images []*domain.Image, normalize bool) ([][]float32, error) {
	inputs := make([]input, len(images))
	for i, img := range images {
		if img == nil || len(img.PNG) == 0 {
			return nil, fmt.Errorf("%w: image %d has no pixel data", domain.ErrInvalidInput, i)
		}
		inputs[i] = input{Image: base64.StdEncoding.EncodeToString(img.PNG)}
	}
	return e.encode(ctx, inputs, normalize)
}

// EncodeText embeds texts into the image space.
func (e *Embedder) EncodeText(ctx context.Context, texts []string, normalize bool) ([][]float32, error) {
	inputs := make([]input, len(texts))
	for i, t := range texts {
		inputs[i] = input{Text: t}
	}
	return e.encode(ctx, inputs, normalize)
}

// Encode embeds texts, letting the CLIP model also serve as a text embedder.
func (e *Embedder) Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error) {
	return e.EncodeText(ctx, texts, normalize)
}

func (e *Embedder) encode(ctx context.Context, inputs []input, normalize bool) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += maxBatch {
		end := min(start+maxBatch, len(inputs))
		batch, err := e.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	if normalize {
		embeddings = vectormath.NormalizeAll(embeddings)
	}
	return embeddings, nil
}

func (e *Embedder) embedBatch(ctx context.Context, inputs []input) ([][]float32, error) {
	reqBody := embeddingRequest{Model: e.model, Input: inputs}
	if e.truncate {
		reqBody.Dimensions = e.dimensions
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("jina: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: jina: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		e.limiter.Backoff(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp embeddingResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("jina error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("jina error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	embeddings := make([][]float32, len(inputs))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(inputs) {
			return nil, fmt.Errorf("jina: response index %d out of range", data.Index)
		}
		embedding := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			embedding[i] = float32(v)
		}
		embeddings[data.Index] = embedding
	}
	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("jina: no embedding returned for input %d", i)
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the name of the embedding model being used.
func (e *Embedder) ModelName() string {
	return e.model
}

// Ping embeds a short text to validate the API key.
func (e *Embedder) Ping(ctx context.Context) error {
	_, err := e.embedBatch(ctx, []input{{Text: "ping"}})
	return err
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}
