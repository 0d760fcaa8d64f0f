package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperdex/internal/core/domain"
)

func sampleItems() []Item {
	return []Item{
		{File: "/a/NLP/attention.pdf", Topic: "NLP", Pages: "1-2", Score: 0.95, Preview: "self attention"},
		{File: "/a/Vision/resnet.pdf", Topic: "Vision", Pages: "3-3", Score: 0.85},
		{File: "/a/NLP/bert.pdf", Topic: "NLP", Pages: "5-6", Score: 0.75},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_SetItems(t *testing.T) {
	list := NewResultList(nil)
	list.SetItems(sampleItems())
	list.SetSelected(2)

	list.SetItems(sampleItems()[:2])

	assert.Equal(t, 2, list.Count())
	assert.False(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
	assert.Len(t, list.Items(), 2)
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetItems(sampleItems())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())

	list.MoveDown()
	list.MoveDown()
	list.MoveDown()
	assert.Equal(t, 2, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 1, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, list.Selected())
	assert.Equal(t, "/a/Vision/resnet.pdf", list.SelectedItem().File)
}

func TestResultList_SetSelected_OutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetItems(sampleItems())

	list.SetSelected(5)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_SelectedItem_Empty(t *testing.T) {
	assert.Nil(t, NewResultList(nil).SelectedItem())
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	assert.Contains(t, list.View(), "No results")

	list.SetDimensions(100, 30)
	list.SetItems(sampleItems())
	view := list.View()

	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "attention.pdf")
	assert.Contains(t, view, "p.1-2")
	assert.Contains(t, view, "0.9500")
	assert.Contains(t, view, "NLP")
	assert.Contains(t, view, "self attention")
}

func TestResultList_View_ScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(80, 7) // room for one result
	list.SetItems(sampleItems())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "bert.pdf")
	assert.NotContains(t, view, "attention.pdf")
}

func TestPaperItems(t *testing.T) {
	result := &domain.PaperSearchResult{
		TopChunks: []domain.ChunkHit{
			{File: "/a.pdf", Pages: "2-2", Snippet: "second"},
			{File: "/a.pdf", Pages: "1-1", Snippet: "first"},
			{File: "/b.pdf", Pages: "4-5", Snippet: "other"},
		},
		TopFiles: []domain.FileHit{
			{File: "/a.pdf", Topic: "NLP", BestScore: 0.9, BestPages: "1-1"},
			{File: "/b.pdf", Topic: "Vision", BestScore: 0.5, BestPages: "4-5"},
		},
	}

	items := PaperItems(result)

	require.Len(t, items, 2)
	assert.Equal(t, Item{File: "/a.pdf", Topic: "NLP", Pages: "1-1", Score: 0.9, Preview: "first"}, items[0])
	assert.Equal(t, "other", items[1].Preview)
	assert.Nil(t, PaperItems(nil))
}

func TestImageItems(t *testing.T) {
	result := &domain.ImageSearchResult{
		Hits: []domain.ImageHit{{File: "/img/cat.jpg", Score: 0.7}},
	}

	items := ImageItems(result)

	require.Len(t, items, 1)
	assert.Equal(t, "/img/cat.jpg", items[0].File)
	assert.Empty(t, items[0].Topic)
	assert.Nil(t, ImageItems(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
