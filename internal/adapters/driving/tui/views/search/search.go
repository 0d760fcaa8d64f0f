// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driving"
)

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	papers driving.PaperService
	images driving.ImageService
	ctx    context.Context

	modality    messages.Modality
	paperResult *domain.PaperSearchResult

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
	showChunks bool
}

// NewView creates a new search view. Either service may be nil; the view
// starts on papers unless only images are available.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	papers driving.PaperService,
	images driving.ImageService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		papers:     papers,
		images:     images,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true, // Start in input mode
	}

	modality := messages.ModalityPapers
	if papers == nil && images != nil {
		modality = messages.ModalityImages
	}
	v.setModality(modality)

	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	// Forward to input component
	var inputCmd tea.Cmd
	v.input, inputCmd = v.input.Update(msg)
	if inputCmd != nil {
		cmds = append(cmds, inputCmd)
	}

	return v, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Tab switches collections in either mode
	if msg.Type == tea.KeyTab {
		return v, v.toggleModality()
	}

	if msg.Type == tea.KeyEsc {
		switch {
		case v.showChunks:
			v.showChunks = false
		case !v.focusInput:
			v.focusQuery()
		}
		return v, nil
	}

	// Enter in input mode submits search
	if msg.Type == tea.KeyEnter && v.focusInput {
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		v.statusbar.SetState(status.StateSearching)
		v.focusInput = false // Move to results mode after search
		v.input.Blur()
		return v, v.performSearch(query)
	}

	// Input mode: all keys go to input
	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Results mode: Enter shows the chunks behind the selected paper
	if msg.Type == tea.KeyEnter {
		if v.modality == messages.ModalityPapers && v.list.SelectedItem() != nil {
			v.showChunks = !v.showChunks
		}
		return v, nil
	}

	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		v.list.MoveUp()
		return v, nil
	case tea.KeyDown:
		v.list.MoveDown()
		return v, nil
	}

	switch msg.String() {
	case "k":
		v.list.MoveUp()
	case "j":
		v.list.MoveDown()
	case "n", "/":
		v.focusQuery()
		v.input.SetValue("")
	case "?":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case "q":
		return v, func() tea.Msg {
			return messages.Quit{}
		}
	}

	return v, nil
}

// toggleModality switches to the other collection when it has a service.
func (v *View) toggleModality() tea.Cmd {
	next := v.modality.Next()
	if !v.hasService(next) {
		v.statusbar.SetMessage(fmt.Sprintf("%s search is not configured", next))
		return nil
	}

	v.setModality(next)
	v.clearResults()
	v.focusQuery()

	return func() tea.Msg {
		return messages.ModalityChanged{Modality: next}
	}
}

func (v *View) setModality(m messages.Modality) {
	v.modality = m
	v.statusbar.SetModality(m)
	if m == messages.ModalityImages {
		v.input.SetPlaceholder(input.PlaceholderImages)
	} else {
		v.input.SetPlaceholder(input.PlaceholderPapers)
	}
}

func (v *View) hasService(m messages.Modality) bool {
	if m == messages.ModalityImages {
		return v.images != nil
	}
	return v.papers != nil
}

// performSearch runs the query against the active collection.
func (v *View) performSearch(query string) tea.Cmd {
	modality := v.modality
	papers, images := v.papers, v.images
	ctx := v.ctx

	return func() tea.Msg {
		switch modality {
		case messages.ModalityImages:
			if images == nil {
				return messages.ErrorOccurred{Err: ErrNoSearchService}
			}
			result, err := images.SearchImages(ctx, query, 0)
			return messages.SearchCompleted{Modality: modality, Images: result, Err: err}
		default:
			if papers == nil {
				return messages.ErrorOccurred{Err: ErrNoSearchService}
			}
			result, err := papers.SearchPapers(ctx, query, domain.PaperSearchOptions{})
			return messages.SearchCompleted{Modality: modality, Papers: result, Err: err}
		}
	}
}

// handleSearchCompleted processes search results. Results for a collection
// other than the active one arrive after a toggle and are dropped.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Modality != v.modality {
		return
	}
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	var items []list.Item
	switch {
	case msg.Papers != nil:
		if msg.Papers.Status == domain.StatusFailed {
			v.setError(fmt.Errorf("%w: %s", ErrSearchFailed, msg.Papers.Reason))
			return
		}
		v.paperResult = msg.Papers
		items = list.PaperItems(msg.Papers)
	case msg.Images != nil:
		if msg.Images.Status == domain.StatusFailed {
			v.setError(fmt.Errorf("%w: %s", ErrSearchFailed, msg.Images.Reason))
			return
		}
		items = list.ImageItems(msg.Images)
	}

	v.err = nil
	v.showChunks = false
	v.list.SetItems(items)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(items))

	// Switch to results mode after successful search
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) focusQuery() {
	v.focusInput = true
	v.showChunks = false
	v.input.Focus()
}

func (v *View) clearResults() {
	v.paperResult = nil
	v.showChunks = false
	v.list.SetItems(nil)
	v.err = nil
	v.statusbar.Clear()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)

	header := v.styles.Title.Render("paperdex") + "  " + v.renderTabs()
	sections = append(sections, header, "")

	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.showChunks {
		sections = append(sections, "", v.renderChunks())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTabs renders the collection selector.
func (v *View) renderTabs() string {
	tabs := make([]string, 0, 2)
	for _, m := range []messages.Modality{messages.ModalityPapers, messages.ModalityImages} {
		if m == v.modality {
			tabs = append(tabs, v.styles.ActiveTab.Render(m.String()))
		} else {
			tabs = append(tabs, v.styles.Tab.Render(m.String()))
		}
	}
	return strings.Join(tabs, " ")
}

// renderChunks lists the matching chunks of the selected paper.
func (v *View) renderChunks() string {
	chunks := v.SelectedChunks()
	item := v.list.SelectedItem()
	if item == nil {
		return ""
	}

	lines := make([]string, 0, len(chunks)*2+1)
	lines = append(lines, v.styles.Subtitle.Render(filepath.Base(item.File)))
	if len(chunks) == 0 {
		lines = append(lines, v.styles.Muted.Render("No chunks in this result set"))
	}
	for _, c := range chunks {
		lines = append(lines,
			v.styles.Normal.Render(fmt.Sprintf("p.%s  %.4f", c.Pages, c.Score)),
			v.styles.Muted.Render("  "+c.Snippet),
		)
	}

	return v.styles.Border.Padding(0, 1).Width(max(v.width-4, 20)).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Modality returns the active collection.
func (v *View) Modality() messages.Modality {
	return v.modality
}

// Items returns the rows currently listed.
func (v *View) Items() []list.Item {
	return v.list.Items()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedItem returns the currently selected row.
func (v *View) SelectedItem() *list.Item {
	return v.list.SelectedItem()
}

// SelectedChunks returns the chunk hits of the last paper search that
// belong to the selected file, best first.
func (v *View) SelectedChunks() []domain.ChunkHit {
	item := v.list.SelectedItem()
	if item == nil || v.paperResult == nil {
		return nil
	}
	var hits []domain.ChunkHit
	for _, c := range v.paperResult.TopChunks {
		if c.File == item.File {
			hits = append(hits, c)
		}
	}
	return hits
}

// ChunksVisible reports whether the chunk panel is open.
func (v *View) ChunksVisible() bool {
	return v.showChunks
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusQuery()
	v.input.SetValue("")
	v.clearResults()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
