package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// --- Mock implementations ---

// keywordVector maps text onto a small fixed space: one axis per keyword
// group plus a constant axis so no vector is zero.
func keywordVector(text string, groups [][]string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(groups)+1)
	for i, words := range groups {
		for _, w := range words {
			vec[i] += float32(strings.Count(lower, w))
		}
	}
	vec[len(groups)] = 0.1
	return vec
}

var paperGroups = [][]string{
	{"nlp", "language"},
	{"vision", "image"},
}

var imageGroups = [][]string{
	{"cat"},
	{"dog"},
	{"bird"},
}

// mockTextEmbedder implements driven.TextEmbedder for testing.
type mockTextEmbedder struct {
	mu     sync.Mutex
	err    error
	calls  int
	inputs [][]string
}

func (m *mockTextEmbedder) Encode(_ context.Context, texts []string, normalize bool) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.inputs = append(m.inputs, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t, paperGroups)
	}
	if normalize {
		out = vectormath.NormalizeAll(out)
	}
	return out, nil
}

func (m *mockTextEmbedder) Dimensions() int { return len(paperGroups) + 1 }
func (m *mockTextEmbedder) ModelName() string { return "mock-text" }
func (m *mockTextEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockTextEmbedder) Close() error { return nil }

// mockImageEmbedder implements driven.ImageEmbedder for testing. Images are
// embedded from the keywords in their file name.
type mockImageEmbedder struct {
	err error
}

func (m *mockImageEmbedder) EncodeImages(_ context.Context, images []*domain.Image, normalize bool) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	texts := make([]string, len(images))
	for i, img := range images {
		texts[i] = filepath.Base(img.Path)
	}
	return m.encode(texts, normalize), nil
}

func (m *mockImageEmbedder) EncodeText(_ context.Context, texts []string, normalize bool) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.encode(texts, normalize), nil
}

func (m *mockImageEmbedder) encode(texts []string, normalize bool) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t, imageGroups)
	}
	if normalize {
		out = vectormath.NormalizeAll(out)
	}
	return out
}

func (m *mockImageEmbedder) ModelName() string { return "mock-clip" }
func (m *mockImageEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockImageEmbedder) Close() error { return nil }

// mockExtractor implements driven.PageExtractor for testing. The file body
// is read as text with form feeds separating pages.
type mockExtractor struct {
	err   error
	panic bool
}

func (m *mockExtractor) ExtractPages(_ context.Context, path string, maxPages int) ([]string, error) {
	if m.panic {
		panic("extractor exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pages := strings.Split(string(data), "\f")
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}

// mockLoader implements driven.ImageLoader for testing. A file whose body
// starts with "corrupt" fails to decode.
type mockLoader struct{}

func (m *mockLoader) Load(_ context.Context, path string) (*domain.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(string(data), "corrupt") {
		return nil, errors.New("image: unknown format")
	}
	return &domain.Image{
		Path:   path,
		Format: strings.TrimPrefix(filepath.Ext(path), "."),
		Width:  4,
		Height: 3,
		PNG:    data,
	}, nil
}

// mockArchiver implements driven.Archiver for testing. It records copies
// without touching the filesystem.
type mockArchiver struct {
	mu     sync.Mutex
	err    error
	copies map[string]string
}

func (m *mockArchiver) Copy(_ context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.copies == nil {
		m.copies = make(map[string]string)
	}
	m.copies[dst] = src
	return nil
}

func (m *mockArchiver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.copies)
}

// mockLister implements driven.FileLister for testing over one directory level.
type mockLister struct{}

func (m *mockLister) List(root string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && HasExtension(e.Name(), exts) {
			files = append(files, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// --- Helpers ---

func newTestCollection(t *testing.T, name string) *memory.Collection {
	t.Helper()
	col, err := memory.NewVectorStore().Collection(context.Background(), name)
	require.NoError(t, err)
	return col.(*memory.Collection)
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func countEntries(t *testing.T, col *memory.Collection) int {
	t.Helper()
	n, err := col.Count(context.Background())
	require.NoError(t, err)
	return n
}
