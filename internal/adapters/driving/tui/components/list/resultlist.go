// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// Item is one row of the result list.
type Item struct {
	// File is the full path of the paper or image.
	File string

	// Topic is the paper's topic; empty for images.
	Topic string

	// Pages is the best page range, for papers.
	Pages string

	// Score is the similarity to the query.
	Score float64

	// Preview is an optional second line.
	Preview string
}

// PaperItems converts file-level paper hits to list items. The preview
// is the best snippet found among chunks for that file.
func PaperItems(r *domain.PaperSearchResult) []Item {
	if r == nil {
		return nil
	}
	items := make([]Item, 0, len(r.TopFiles))
	for _, f := range r.TopFiles {
		item := Item{File: f.File, Topic: f.Topic, Pages: f.BestPages, Score: f.BestScore}
		for _, c := range r.TopChunks {
			if c.File == f.File && c.Pages == f.BestPages {
				item.Preview = c.Snippet
				break
			}
		}
		items = append(items, item)
	}
	return items
}

// ImageItems converts image hits to list items.
func ImageItems(r *domain.ImageSearchResult) []Item {
	if r == nil {
		return nil
	}
	items := make([]Item, 0, len(r.Hits))
	for _, h := range r.Hits {
		items = append(items, Item{File: h.File, Score: h.Score, Preview: h.File})
	}
	return items
}

// ResultList displays search results in a navigable list.
type ResultList struct {
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.items)+2)

	header := r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.items)))
	lines = append(lines, header, "")

	// Each result takes two lines plus a little slack
	visibleCount := (r.height - 4) / 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.items))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderItem(i, &r.items[i]))
	}

	return strings.Join(lines, "\n")
}

// renderItem formats a single result with its preview line.
func (r *ResultList) renderItem(index int, item *Item) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := filepath.Base(item.File)
	if item.Pages != "" {
		title += "  p." + item.Pages
	}
	maxTitleLen := max(r.width-20, 10)
	title = truncate(title, maxTitleLen)

	score := fmt.Sprintf("%.4f", item.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitleLen, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitleLen, title)) +
			r.styles.Muted.Render(score)
	}

	var topicLine string
	if item.Topic != "" {
		topicLine = "\n" + r.styles.Topic.Render("    "+item.Topic)
	}

	maxPreviewLen := max(r.width-6, 20)
	previewLine := r.styles.Muted.Render("    " + truncate(item.Preview, maxPreviewLen))

	return titleLine + topicLine + "\n" + previewLine
}

// truncate shortens s to n characters, ending in "..." when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetItems updates the result list.
func (r *ResultList) SetItems(items []Item) {
	r.items = items
	r.selected = 0
}

// Items returns the current items.
func (r *ResultList) Items() []Item {
	return r.items
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
	}
}

// SelectedItem returns the currently selected item, or nil if none.
func (r *ResultList) SelectedItem() *Item {
	if len(r.items) == 0 || r.selected < 0 || r.selected >= len(r.items) {
		return nil
	}
	return &r.items[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.items)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.items)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.items) == 0
}
