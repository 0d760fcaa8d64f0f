package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyWorkspaceDir    = "workspace.dir"
	keyPapersDir       = "workspace.papers_dir"
	keyImagesDir       = "workspace.images_dir"
	keyStoreDir        = "workspace.store_dir"
	keyPaperCollection = "collections.papers"
	keyImageCollection = "collections.images"
	keyMaxPages        = "ingest.max_pages"
	keyChunkChars      = "ingest.chunk_chars"
	keyChunkOverlap    = "ingest.chunk_overlap"
	keyMinChunkChars   = "ingest.min_chunk_chars"
	keyBatchSize       = "ingest.batch_size"
	keyFallbackTopic   = "ingest.fallback_topic"
	keyTopK            = "search.topk"
	keySnippetChars    = "search.snippet_chars"
	keyTextProvider    = "embedding.text.provider"
	keyTextModel       = "embedding.text.model"
	keyTextBaseURL     = "embedding.text.base_url"
	keyTextAPIKey      = "embedding.text.api_key"
	keyTextDimensions  = "embedding.text.dimensions"
	keyImageProvider   = "embedding.image.provider"
	keyImageModel      = "embedding.image.model"
	keyImageBaseURL    = "embedding.image.base_url"
	keyImageAPIKey     = "embedding.image.api_key"
	keyImageDimensions = "embedding.image.dimensions"
)

// Environment variables consulted when the config file leaves a value unset.
const (
	envOpenAIAPIKey      = "OPENAI_API_KEY"
	envJinaAPIKey        = "JINA_API_KEY"
	envWorkspaceOverride = "PAPERDEX_WORKSPACE"
)

// intKeys are the settings stored as integers.
var intKeys = map[string]bool{
	keyMaxPages:        true,
	keyChunkChars:      true,
	keyChunkOverlap:    true,
	keyMinChunkChars:   true,
	keyBatchSize:       true,
	keyTopK:            true,
	keySnippetChars:    true,
	keyTextDimensions:  true,
	keyImageDimensions: true,
}

// stringKeys are the settings stored as strings.
var stringKeys = map[string]bool{
	keyWorkspaceDir:    true,
	keyPapersDir:       true,
	keyImagesDir:       true,
	keyStoreDir:        true,
	keyPaperCollection: true,
	keyImageCollection: true,
	keyFallbackTopic:   true,
	keyTextProvider:    true,
	keyTextModel:       true,
	keyTextBaseURL:     true,
	keyTextAPIKey:      true,
	keyImageProvider:   true,
	keyImageModel:      true,
	keyImageBaseURL:    true,
	keyImageAPIKey:     true,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Unset keys take their
// defaults; directories below the workspace follow a changed workspace
// unless set explicitly.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	workspaceDir := s.getString(keyWorkspaceDir, defaults.Workspace.Dir)
	if env := s.getenv(envWorkspaceOverride); env != "" {
		workspaceDir = env
	}
	workspace := domain.WorkspaceFor(workspaceDir)

	settings := &domain.AppSettings{
		Workspace: domain.WorkspaceSettings{
			Dir:       workspaceDir,
			PapersDir: s.getString(keyPapersDir, workspace.PapersDir),
			ImagesDir: s.getString(keyImagesDir, workspace.ImagesDir),
			StoreDir:  s.getString(keyStoreDir, workspace.StoreDir),
		},
		Collections: domain.CollectionSettings{
			Papers: s.getString(keyPaperCollection, defaults.Collections.Papers),
			Images: s.getString(keyImageCollection, defaults.Collections.Images),
		},
		Ingest: domain.IngestSettings{
			MaxPages:      s.getInt(keyMaxPages, defaults.Ingest.MaxPages),
			ChunkChars:    s.getInt(keyChunkChars, defaults.Ingest.ChunkChars),
			ChunkOverlap:  s.getInt(keyChunkOverlap, defaults.Ingest.ChunkOverlap),
			MinChunkChars: s.getInt(keyMinChunkChars, defaults.Ingest.MinChunkChars),
			BatchSize:     s.getInt(keyBatchSize, defaults.Ingest.BatchSize),
			FallbackTopic: s.getString(keyFallbackTopic, defaults.Ingest.FallbackTopic),
		},
		Search: domain.SearchSettings{
			TopK:         s.getInt(keyTopK, defaults.Search.TopK),
			SnippetChars: s.getInt(keySnippetChars, defaults.Search.SnippetChars),
		},
		TextEmbedding: s.getEmbedding(
			defaults.TextEmbedding, keyTextProvider, keyTextModel, keyTextBaseURL, keyTextAPIKey, keyTextDimensions),
		ImageEmbedding: s.getEmbedding(
			defaults.ImageEmbedding, keyImageProvider, keyImageModel, keyImageBaseURL, keyImageAPIKey, keyImageDimensions),
	}

	if settings.Ingest.ChunkOverlap >= settings.Ingest.ChunkChars {
		return nil, fmt.Errorf("%w: %s (%d) must be smaller than %s (%d)", domain.ErrInvalidInput,
			keyChunkOverlap, settings.Ingest.ChunkOverlap, keyChunkChars, settings.Ingest.ChunkChars)
	}
	return settings, nil
}

// Set validates and persists one setting.
func (s *SettingsService) Set(key, value string) error {
	switch {
	case intKeys[key]:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return s.configStore.Set(key, n)
	case stringKeys[key]:
		if key == keyTextProvider || key == keyImageProvider {
			if err := validateProvider(key, domain.AIProvider(value)); err != nil {
				return err
			}
		}
		if key == keyWorkspaceDir || key == keyPapersDir || key == keyImagesDir || key == keyStoreDir {
			value = filepath.Clean(value)
		}
		return s.configStore.Set(key, value)
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
}

// Keys returns every settable key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(intKeys)+len(stringKeys))
	for k := range intKeys {
		keys = append(keys, k)
	}
	for k := range stringKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateProvider(key string, p domain.AIProvider) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: unknown provider %q for %s", domain.ErrInvalidInput, p, key)
	}
	if key == keyImageProvider && !p.SupportsImages() {
		return fmt.Errorf("%w: provider %q cannot embed images", domain.ErrInvalidInput, p)
	}
	return nil
}

func (s *SettingsService) getEmbedding(
	def domain.EmbeddingSettings, providerKey, modelKey, baseURLKey, apiKeyKey, dimsKey string,
) domain.EmbeddingSettings {
	provider := domain.AIProvider(s.getString(providerKey, def.Provider.String()))

	model := s.configStore.GetString(modelKey)
	baseURL := s.configStore.GetString(baseURLKey)
	if provider == def.Provider {
		model = orDefault(model, def.Model)
		baseURL = orDefault(baseURL, def.BaseURL)
	} else {
		model = orDefault(model, domain.DefaultEmbeddingModels()[provider])
	}

	apiKey := s.configStore.GetString(apiKeyKey)
	if apiKey == "" {
		switch provider {
		case domain.AIProviderOpenAI:
			apiKey = s.getenv(envOpenAIAPIKey)
		case domain.AIProviderJina:
			apiKey = s.getenv(envJinaAPIKey)
		}
	}

	return domain.EmbeddingSettings{
		Provider:   provider,
		Model:      model,
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Dimensions: s.configStore.GetInt(dimsKey),
	}
}

func (s *SettingsService) getString(key, def string) string {
	return orDefault(s.configStore.GetString(key), def)
}

func (s *SettingsService) getInt(key string, def int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return def
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
