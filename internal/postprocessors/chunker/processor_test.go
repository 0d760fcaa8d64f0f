package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
		if p.minEffective != DefaultMinEffectiveLength {
			t.Errorf("expected minEffective %d, got %d", DefaultMinEffectiveLength, p.minEffective)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1), WithMinEffectiveLength(-5))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if p.minEffective != DefaultMinEffectiveLength {
			t.Errorf("expected default minEffective, got %d", p.minEffective)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got %q", New().Name())
	}
}

func TestProcessor_Step(t *testing.T) {
	assert.Equal(t, 250, New(WithChunkSize(300), WithOverlap(50)).Step())
	assert.Equal(t, 1, New(WithChunkSize(2), WithOverlap(1)).Step())
}

func TestSplit_TwoPagesSpanning(t *testing.T) {
	pages := []string{strings.Repeat("A", 500), strings.Repeat("B", 500)}
	p := New(WithChunkSize(300), WithOverlap(50))

	chunks := p.Split(pages)

	require.Len(t, chunks, 4)
	assert.Equal(t, 1, chunks[0].PageStart)
	assert.Equal(t, 1, chunks[0].PageEnd)
	assert.Equal(t, 2, chunks[len(chunks)-1].PageEnd)

	spans := false
	for _, c := range chunks {
		if c.PageStart == 1 && c.PageEnd == 2 {
			spans = true
		}
	}
	assert.True(t, spans, "expected a chunk spanning pages 1-2")

	wantOffsets := []int{0, 250, 500, 750}
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, wantOffsets[i], c.Offset)
	}
}

func TestSplit_Invariants(t *testing.T) {
	pages := []string{
		"Introduction\n" + strings.Repeat("neural networks learn representations. ", 40),
		"   \n  ",
		strings.Repeat("results table ", 80),
		"7",
		strings.Repeat("conclusion and future work ", 30),
	}
	p := New(WithChunkSize(200), WithOverlap(40))

	chunks := p.Split(pages)

	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.Text)
		assert.Equal(t, strings.TrimSpace(c.Text), c.Text)
		assert.GreaterOrEqual(t, effectiveLength(c.Text), DefaultMinEffectiveLength)
		assert.LessOrEqual(t, c.PageStart, c.PageEnd)
		assert.GreaterOrEqual(t, c.PageStart, 1)
		assert.LessOrEqual(t, c.PageEnd, len(pages))
		if i > 0 {
			assert.GreaterOrEqual(t, c.PageStart, chunks[i-1].PageStart)
			assert.GreaterOrEqual(t, c.Offset, chunks[i-1].Offset)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := []string{strings.Repeat("lorem ipsum dolor ", 100), strings.Repeat("sit amet ", 100)}
	p := New(WithChunkSize(150), WithOverlap(30))

	assert.Equal(t, p.Split(pages), p.Split(pages))
}

func TestSplit_Empty(t *testing.T) {
	p := New()

	assert.Empty(t, p.Split(nil))
	assert.Empty(t, p.Split([]string{}))
	assert.Empty(t, p.Split([]string{"", "  ", "\n\t"}))
	assert.Empty(t, p.Split([]string{"\x00\x00"}))
}

func TestSplit_ShortNoiseDiscarded(t *testing.T) {
	p := New()

	assert.Empty(t, p.Split([]string{"Page 1", "Page 2"}))

	chunks := p.Split([]string{strings.Repeat("x", 30)})
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Repeat("x", 30), chunks[0].Text)
}

func TestSplit_EffectiveLengthIgnoresSpacesAndNewlines(t *testing.T) {
	p := New(WithMinEffectiveLength(10))

	assert.Empty(t, p.Split([]string{"a b c d e\nf g h i"}))
	assert.Len(t, p.Split([]string{"a b c d e\nf g h i j"}), 1)
}

func TestSplit_NULReplaced(t *testing.T) {
	p := New(WithMinEffectiveLength(1))

	chunks := p.Split([]string{"abc\x00def"})

	require.Len(t, chunks, 1)
	assert.Equal(t, "abc def", chunks[0].Text)
}

func TestSplit_PageBreakBelongsToPrecedingPage(t *testing.T) {
	p := New(WithChunkSize(4), WithOverlap(0), WithMinEffectiveLength(1))

	chunks := p.Split([]string{"abc", "def"})

	require.Len(t, chunks, 2)
	assert.Equal(t, "abc", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].PageStart)
	assert.Equal(t, 1, chunks[0].PageEnd)
	assert.Equal(t, "def", chunks[1].Text)
	assert.Equal(t, 2, chunks[1].PageStart)
	assert.Equal(t, 2, chunks[1].PageEnd)
}

func TestSplit_MultibyteCountsCharacters(t *testing.T) {
	p := New(WithChunkSize(5), WithOverlap(0), WithMinEffectiveLength(1))

	chunks := p.Split([]string{"éééééé"})

	require.Len(t, chunks, 2)
	assert.Equal(t, "ééééé", chunks[0].Text)
	assert.Equal(t, "é", chunks[1].Text)
	assert.Equal(t, 5, chunks[1].Offset)
}
