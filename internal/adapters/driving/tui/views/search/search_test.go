package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// mockPaperService implements driving.PaperService for testing.
type mockPaperService struct {
	searchFunc func(ctx context.Context, query string, opts domain.PaperSearchOptions) (*domain.PaperSearchResult, error)
	lastQuery  string
}

func (m *mockPaperService) AddPaper(context.Context, string, domain.AddPaperOptions) (*domain.IngestResult, error) {
	return nil, nil
}

func (m *mockPaperService) BatchOrganize(context.Context, string, []string) (*domain.BatchResult, error) {
	return nil, nil
}

func (m *mockPaperService) SearchPapers(
	ctx context.Context,
	query string,
	opts domain.PaperSearchOptions,
) (*domain.PaperSearchResult, error) {
	m.lastQuery = query
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, opts)
	}
	return testPaperResult(), nil
}

func (m *mockPaperService) Count(context.Context) (int, error) {
	return 0, nil
}

// mockImageService implements driving.ImageService for testing.
type mockImageService struct {
	searchFunc func(ctx context.Context, query string, topK int) (*domain.ImageSearchResult, error)
}

func (m *mockImageService) AddImage(context.Context, string) (*domain.IngestResult, error) {
	return nil, nil
}

func (m *mockImageService) IndexImages(context.Context, string) (*domain.BatchResult, error) {
	return nil, nil
}

func (m *mockImageService) SearchImages(ctx context.Context, query string, topK int) (*domain.ImageSearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, topK)
	}
	return &domain.ImageSearchResult{
		Status: domain.StatusOK,
		Query:  query,
		Hits:   []domain.ImageHit{{File: "/img/cat.jpg", Score: 0.31}},
	}, nil
}

func (m *mockImageService) Count(context.Context) (int, error) {
	return 0, nil
}

func testPaperResult() *domain.PaperSearchResult {
	return &domain.PaperSearchResult{
		Status: domain.StatusOK,
		Query:  "attention",
		TopChunks: []domain.ChunkHit{
			{File: "/papers/NLP/attention.pdf", Topic: "NLP", Pages: "1-2", Score: 0.91, Snippet: "self attention"},
			{File: "/papers/Vision/vit.pdf", Topic: "Vision", Pages: "3-3", Score: 0.80, Snippet: "patches"},
			{File: "/papers/NLP/attention.pdf", Topic: "NLP", Pages: "4-4", Score: 0.70, Snippet: "multi head"},
		},
		TopFiles: []domain.FileHit{
			{File: "/papers/NLP/attention.pdf", Topic: "NLP", BestScore: 0.91, BestPages: "1-2"},
			{File: "/papers/Vision/vit.pdf", Topic: "Vision", BestScore: 0.80, BestPages: "3-3"},
		},
	}
}

func readyView(papers *mockPaperService, images *mockImageService) *View {
	var view *View
	switch {
	case papers != nil && images != nil:
		view = NewView(nil, nil, papers, images)
	case papers != nil:
		view = NewView(nil, nil, papers, nil)
	case images != nil:
		view = NewView(nil, nil, nil, images)
	default:
		view = NewView(nil, nil, nil, nil)
	}
	view.SetDimensions(100, 40)
	return view
}

// submit types query, presses enter and feeds the resulting message back.
func submit(t *testing.T, view *View, query string) *View {
	t.Helper()
	view.SetQuery(query)
	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	view, _ = view.Update(cmd())
	return view
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), &mockPaperService{}, nil)

	require.NotNil(t, view)
	assert.False(t, view.Ready())
	assert.Equal(t, "", view.Query())
	assert.True(t, view.InputFocused())
	assert.Equal(t, messages.ModalityPapers, view.Modality())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
}

func TestNewView_ImagesOnly(t *testing.T) {
	view := NewView(nil, nil, nil, &mockImageService{})

	assert.Equal(t, messages.ModalityImages, view.Modality())
	assert.Equal(t, input.PlaceholderImages, view.input.Placeholder())
}

func TestView_WithContext(t *testing.T) {
	view := NewView(nil, nil, nil, nil)
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := view.WithContext(ctx)

	assert.Equal(t, view, result)
	assert.Equal(t, ctx, view.ctx)
}

func TestView_Init(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	// Blink command from input
	assert.NotNil(t, view.Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	view, cmd := view.Update(tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.Nil(t, cmd)
	assert.True(t, view.Ready())
	assert.Equal(t, 120, view.Width())
	assert.Equal(t, 50, view.Height())
}

func TestView_View_NotReady(t *testing.T) {
	view := NewView(nil, nil, nil, nil)

	assert.Equal(t, "Initialising...", view.View())
}

func TestView_Search_Papers(t *testing.T) {
	papers := &mockPaperService{}
	view := readyView(papers, nil)

	view = submit(t, view, "  attention  ")

	assert.Equal(t, "attention", papers.lastQuery)
	assert.False(t, view.InputFocused())
	require.Len(t, view.Items(), 2)
	assert.Equal(t, "/papers/NLP/attention.pdf", view.Items()[0].File)
	assert.Equal(t, "self attention", view.Items()[0].Preview)
	assert.NoError(t, view.Err())

	rendered := view.View()
	assert.Contains(t, rendered, "attention.pdf")
	assert.Contains(t, rendered, "2 results")
}

func TestView_Search_EmptyQuery(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)
	view.SetQuery("   ")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, view.InputFocused())
}

func TestView_Search_ServiceError(t *testing.T) {
	papers := &mockPaperService{
		searchFunc: func(context.Context, string, domain.PaperSearchOptions) (*domain.PaperSearchResult, error) {
			return nil, errors.New("boom")
		},
	}
	view := readyView(papers, nil)

	view = submit(t, view, "q")

	require.Error(t, view.Err())
	assert.Contains(t, view.View(), "boom")
}

func TestView_Search_FailedStatus(t *testing.T) {
	papers := &mockPaperService{
		searchFunc: func(context.Context, string, domain.PaperSearchOptions) (*domain.PaperSearchResult, error) {
			return &domain.PaperSearchResult{Status: domain.StatusFailed, Reason: "encode query: offline"}, nil
		},
	}
	view := readyView(papers, nil)

	view = submit(t, view, "q")

	require.ErrorIs(t, view.Err(), ErrSearchFailed)
	assert.Contains(t, view.Err().Error(), "offline")
	assert.Empty(t, view.Items())
}

func TestView_Search_NoService(t *testing.T) {
	view := readyView(nil, nil)
	view.SetQuery("q")

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()

	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoSearchService)

	view, _ = view.Update(msg)
	assert.ErrorIs(t, view.Err(), ErrNoSearchService)
}

func TestView_Search_Images(t *testing.T) {
	var gotTopK = -1
	images := &mockImageService{
		searchFunc: func(_ context.Context, query string, topK int) (*domain.ImageSearchResult, error) {
			gotTopK = topK
			return &domain.ImageSearchResult{
				Status: domain.StatusOK,
				Query:  query,
				Hits:   []domain.ImageHit{{File: "/img/dog.png", Score: 0.4}},
			}, nil
		},
	}
	view := readyView(nil, images)

	view = submit(t, view, "a dog")

	assert.Equal(t, 0, gotTopK)
	require.Len(t, view.Items(), 1)
	assert.Equal(t, "/img/dog.png", view.Items()[0].File)
}

func TestView_ToggleModality(t *testing.T) {
	view := readyView(&mockPaperService{}, &mockImageService{})
	view = submit(t, view, "attention")
	require.NotEmpty(t, view.Items())

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyTab})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ModalityChanged{Modality: messages.ModalityImages}, cmd())
	assert.Equal(t, messages.ModalityImages, view.Modality())
	assert.Empty(t, view.Items())
	assert.True(t, view.InputFocused())
	assert.Equal(t, input.PlaceholderImages, view.input.Placeholder())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, messages.ModalityPapers, view.Modality())
}

func TestView_ToggleModality_Unavailable(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Nil(t, cmd)
	assert.Equal(t, messages.ModalityPapers, view.Modality())
	assert.Contains(t, view.statusbar.Message(), "images search is not configured")
}

func TestView_StaleResultsDropped(t *testing.T) {
	view := readyView(&mockPaperService{}, &mockImageService{})
	view.SetQuery("attention")
	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyTab})
	view, _ = view.Update(msg)

	assert.Empty(t, view.Items())
	assert.Equal(t, messages.ModalityImages, view.Modality())
}

func TestView_Chunks(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)
	view = submit(t, view, "attention")

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, view.ChunksVisible())
	chunks := view.SelectedChunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, "1-2", chunks[0].Pages)
	assert.Equal(t, "4-4", chunks[1].Pages)
	assert.Contains(t, view.View(), "multi head")

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Len(t, view.SelectedChunks(), 1)
	assert.Equal(t, "patches", view.SelectedChunks()[0].Snippet)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, view.ChunksVisible())
	assert.False(t, view.InputFocused())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, view.InputFocused())
}

func TestView_Chunks_NotForImages(t *testing.T) {
	view := readyView(nil, &mockImageService{})
	view = submit(t, view, "cat")

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, view.ChunksVisible())
	assert.Nil(t, view.SelectedChunks())
}

func TestView_ResultsNavigation(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)
	view = submit(t, view, "attention")

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, view.SelectedIndex())
	assert.Equal(t, "/papers/Vision/vit.pdf", view.SelectedItem().File)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, view.SelectedIndex())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.SelectedIndex())
}

func TestView_ResultsKeys(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)
	view = submit(t, view, "attention")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())

	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.True(t, view.InputFocused())
	assert.Equal(t, "", view.Query())
}

func TestView_InputModeTyping(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, "q", view.Query())
	assert.True(t, view.InputFocused())
}

func TestView_ClearErrorAndReset(t *testing.T) {
	view := readyView(&mockPaperService{}, nil)
	view, _ = view.Update(messages.ErrorOccurred{Err: errors.New("bad")})
	require.Error(t, view.Err())

	view.ClearError()
	assert.NoError(t, view.Err())

	view = submit(t, view, "attention")
	view.Reset()

	assert.True(t, view.InputFocused())
	assert.Empty(t, view.Items())
	assert.Equal(t, "", view.Query())
	assert.Nil(t, view.SelectedChunks())
}

func TestView_View_Tabs(t *testing.T) {
	view := readyView(&mockPaperService{}, &mockImageService{})

	rendered := view.View()

	assert.Contains(t, rendered, "paperdex")
	assert.Contains(t, rendered, "papers")
	assert.Contains(t, rendered, "images")
}
