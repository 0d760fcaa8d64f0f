package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/embeddings":
			var req embedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "boom" {
				http.Error(w, "model crashed", http.StatusInternalServerError)
				return
			}
			vec := []float64{3, 4}
			if req.Prompt == "second" {
				vec = []float64{0, 2}
			}
			_ = json.NewEncoder(w).Encode(embedResponse{Embedding: vec})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewTextEmbedder_Defaults(t *testing.T) {
	e := NewTextEmbedder(Config{})

	assert.Equal(t, DefaultModel, e.ModelName())
	assert.Equal(t, DefaultDimensions, e.Dimensions())
	assert.Equal(t, DefaultBaseURL, e.baseURL)

	e = NewTextEmbedder(Config{Model: "mxbai-embed-large"})
	assert.Equal(t, 1024, e.Dimensions())
}

func TestEncode(t *testing.T) {
	srv := newTestServer(t)
	e := NewTextEmbedder(Config{BaseURL: srv.URL})

	raw, err := e.Encode(context.Background(), []string{"first", "second"}, false)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{3, 4}, {0, 2}}, raw)

	unit, err := e.Encode(context.Background(), []string{"first", "second"}, true)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, unit[0], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1}, unit[1], 1e-6)
}

func TestEncode_ServerError(t *testing.T) {
	srv := newTestServer(t)
	e := NewTextEmbedder(Config{BaseURL: srv.URL})

	_, err := e.Encode(context.Background(), []string{"ok", "boom"}, true)

	assert.ErrorContains(t, err, "embed text 1")
	assert.ErrorContains(t, err, "status 500")
}

func TestEncode_Unreachable(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()
	e := NewTextEmbedder(Config{BaseURL: url})

	_, err := e.Encode(context.Background(), []string{"x"}, true)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	assert.ErrorIs(t, e.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	e := NewTextEmbedder(Config{BaseURL: srv.URL})

	assert.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, e.Close())
}
