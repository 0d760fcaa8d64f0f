package mcp

import (
	"context"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// mockPaperService is a mock implementation of driving.PaperService.
type mockPaperService struct {
	search    *domain.PaperSearchResult
	ingest    *domain.IngestResult
	count     int
	err       error
	lastQuery string
	lastOpts  domain.PaperSearchOptions
	lastAdd   domain.AddPaperOptions
}

func (m *mockPaperService) AddPaper(
	_ context.Context, _ string, opts domain.AddPaperOptions,
) (*domain.IngestResult, error) {
	m.lastAdd = opts
	return m.ingest, m.err
}

func (m *mockPaperService) BatchOrganize(_ context.Context, _ string, _ []string) (*domain.BatchResult, error) {
	return domain.NewBatchResult("run"), m.err
}

func (m *mockPaperService) SearchPapers(
	_ context.Context, query string, opts domain.PaperSearchOptions,
) (*domain.PaperSearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.search, m.err
}

func (m *mockPaperService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

// mockImageService is a mock implementation of driving.ImageService.
type mockImageService struct {
	search   *domain.ImageSearchResult
	ingest   *domain.IngestResult
	count    int
	err      error
	lastTopK int
}

func (m *mockImageService) AddImage(_ context.Context, _ string) (*domain.IngestResult, error) {
	return m.ingest, m.err
}

func (m *mockImageService) IndexImages(_ context.Context, _ string) (*domain.BatchResult, error) {
	return domain.NewBatchResult("run"), m.err
}

func (m *mockImageService) SearchImages(_ context.Context, _ string, topK int) (*domain.ImageSearchResult, error) {
	m.lastTopK = topK
	return m.search, m.err
}

func (m *mockImageService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(_, _ string) error { return m.err }

func (m *mockSettingsService) Keys() []string { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func settingsFor(papersDir string) *mockSettingsService {
	s := domain.DefaultAppSettings()
	s.Workspace.PapersDir = papersDir
	return &mockSettingsService{settings: s}
}
