package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/vectormath"
)

// TopicMatch is the label chosen for a document and its cosine similarity.
type TopicMatch struct {
	Label string
	Score float64
}

// TopicClassifier assigns a document vector to the nearest topic label.
type TopicClassifier struct {
	embedder driven.TextEmbedder
}

// NewTopicClassifier creates a classifier that encodes labels with embedder.
func NewTopicClassifier(embedder driven.TextEmbedder) *TopicClassifier {
	return &TopicClassifier{embedder: embedder}
}

// Classify encodes every label and returns the one whose vector has the
// highest dot product with docVec. docVec must be unit length. Ties go to
// the label listed first; duplicate labels are scored independently.
func (c *TopicClassifier) Classify(ctx context.Context, docVec []float32, labels []string) (TopicMatch, error) {
	if len(labels) == 0 {
		return TopicMatch{}, domain.ErrNoTopics
	}

	vecs, err := c.embedder.Encode(ctx, labels, true)
	if err != nil {
		return TopicMatch{}, fmt.Errorf("encode topics: %w", err)
	}
	if len(vecs) != len(labels) {
		return TopicMatch{}, fmt.Errorf("encode topics: got %d vectors for %d labels", len(vecs), len(labels))
	}

	best := -1
	bestScore := 0.0
	for i, v := range vecs {
		score, err := vectormath.Dot(v, docVec)
		if err != nil {
			return TopicMatch{}, fmt.Errorf("score topic %q: %w", labels[i], err)
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}

	return TopicMatch{Label: labels[best], Score: bestScore}, nil
}
