package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// It follows the same contract as the sqlite store and is used by tests and
// --ephemeral runs.
type VectorStore struct {
	mu          sync.Mutex
	collections map[string]*Collection
	closed      bool
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it if needed.
func (s *VectorStore) Collection(_ context.Context, name string) (driven.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name, store: s, ids: make(map[string]int)}
		s.collections[name] = c
	}
	return c, nil
}

// Close marks the store closed; later calls fail.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *VectorStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Collection is one in-memory collection. Entries keep insertion order.
type Collection struct {
	name  string
	store *VectorStore

	mu      sync.RWMutex
	entries []domain.IndexEntry
	ids     map[string]int

	// FailAdd, when set, is consulted before every Add; a non-nil error
	// aborts that call. Tests use it to simulate store failures.
	FailAdd func(call int, entries []domain.IndexEntry) error
	adds    int
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Add writes entries atomically: either all are stored or none.
func (c *Collection) Add(_ context.Context, entries []domain.IndexEntry) error {
	if c.store.isClosed() {
		return domain.ErrVectorStoreUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	call := c.adds
	c.adds++
	if c.FailAdd != nil {
		if err := c.FailAdd(call, entries); err != nil {
			return err
		}
	}

	dim := c.dimensions()
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if _, exists := c.ids[e.ID]; exists || seen[e.ID] {
			return fmt.Errorf("%w: entry %s", domain.ErrAlreadyExists, e.ID)
		}
		seen[e.ID] = true
		if len(e.Embedding) == 0 {
			return fmt.Errorf("%w: entry %s has no embedding", domain.ErrInvalidInput, e.ID)
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: entry %s has %d dimensions, collection has %d",
				domain.ErrDimensionMismatch, e.ID, len(e.Embedding), dim)
		}
	}

	for _, e := range entries {
		e.Embedding = append([]float32(nil), e.Embedding...)
		c.ids[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return nil
}

// dimensions returns the vector length of stored entries (caller holds lock).
func (c *Collection) dimensions() int {
	if len(c.entries) == 0 {
		return 0
	}
	return len(c.entries[0].Embedding)
}

// Get returns entries matching filter, without embeddings.
func (c *Collection) Get(_ context.Context, filter domain.MetadataFilter) ([]domain.IndexEntry, error) {
	if c.store.isClosed() {
		return nil, domain.ErrVectorStoreUnavailable
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.IndexEntry
	for _, e := range c.entries {
		if filter.Matches(e.Metadata) {
			e.Embedding = nil
			out = append(out, e)
		}
	}
	return out, nil
}

// Query returns up to n entries ordered by increasing cosine distance.
func (c *Collection) Query(_ context.Context, vector []float32, n int) ([]domain.Neighbor, error) {
	if c.store.isClosed() {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive", domain.ErrInvalidInput)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if dim := c.dimensions(); dim != 0 && dim != len(vector) {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), dim)
	}

	neighbors := make([]domain.Neighbor, 0, len(c.entries))
	for _, e := range c.entries {
		d, err := vectormath.CosineDistance(vector, e.Embedding)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, domain.Neighbor{Entry: e, Distance: d})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > n {
		neighbors = neighbors[:n]
	}
	return neighbors, nil
}

// Delete removes entries matching filter.
func (c *Collection) Delete(_ context.Context, filter domain.MetadataFilter) (int, error) {
	if c.store.isClosed() {
		return 0, domain.ErrVectorStoreUnavailable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if filter.Matches(e.Metadata) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept

	c.ids = make(map[string]int, len(c.entries))
	for i, e := range c.entries {
		c.ids[e.ID] = i
	}
	return removed, nil
}

// Count returns the number of entries.
func (c *Collection) Count(_ context.Context) (int, error) {
	if c.store.isClosed() {
		return 0, domain.ErrVectorStoreUnavailable
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}
