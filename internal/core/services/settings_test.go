package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperdex/internal/core/domain"
)

func newTestSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.getenv = func(k string) string { return env[k] }
	return svc, store
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc, _ := newTestSettingsService(nil)

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, svc.GetDefaults(), *settings)
	assert.Equal(t, 1200, settings.Ingest.ChunkChars)
	assert.Equal(t, 200, settings.Ingest.ChunkOverlap)
	assert.Equal(t, 8, settings.Ingest.BatchSize)
	assert.Equal(t, domain.AIProviderJina, settings.ImageEmbedding.Provider)
}

func TestSettingsService_WorkspaceDerivesDirectories(t *testing.T) {
	svc, _ := newTestSettingsService(nil)
	require.NoError(t, svc.Set("workspace.dir", "/srv/library/"))
	require.NoError(t, svc.Set("workspace.images_dir", "/photos"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, "/srv/library", settings.Workspace.Dir)
	assert.Equal(t, filepath.Join("/srv/library", "papers"), settings.Workspace.PapersDir)
	assert.Equal(t, filepath.Join("/srv/library", "vectordb"), settings.Workspace.StoreDir)
	assert.Equal(t, "/photos", settings.Workspace.ImagesDir)
}

func TestSettingsService_WorkspaceEnvOverride(t *testing.T) {
	svc, _ := newTestSettingsService(map[string]string{"PAPERDEX_WORKSPACE": "/tmp/ws"})
	require.NoError(t, svc.Set("workspace.dir", "/srv/library"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/ws", settings.Workspace.Dir)
	assert.Equal(t, filepath.Join("/tmp/ws", "papers"), settings.Workspace.PapersDir)
}

func TestSettingsService_SetInt(t *testing.T) {
	svc, store := newTestSettingsService(nil)

	require.NoError(t, svc.Set("search.topk", "12"))
	require.NoError(t, svc.Set("ingest.chunk_overlap", "0"))

	assert.Equal(t, 12, store.GetInt("search.topk"))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 12, settings.Search.TopK)
	assert.Equal(t, 0, settings.Ingest.ChunkOverlap)

	assert.ErrorIs(t, svc.Set("search.topk", "many"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set("search.topk", "-1"), domain.ErrInvalidInput)
}

func TestSettingsService_OverlapMustBeSmallerThanChunk(t *testing.T) {
	svc, _ := newTestSettingsService(nil)
	require.NoError(t, svc.Set("ingest.chunk_chars", "100"))
	require.NoError(t, svc.Set("ingest.chunk_overlap", "100"))

	_, err := svc.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetUnknownKey(t *testing.T) {
	svc, _ := newTestSettingsService(nil)

	err := svc.Set("ingest.colour", "blue")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Providers(t *testing.T) {
	svc, _ := newTestSettingsService(map[string]string{
		"OPENAI_API_KEY": "sk-env",
		"JINA_API_KEY":   "jina-env",
	})

	require.NoError(t, svc.Set("embedding.text.provider", "openai"))
	assert.ErrorIs(t, svc.Set("embedding.text.provider", "word2vec"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set("embedding.image.provider", "ollama"), domain.ErrInvalidInput)

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.TextEmbedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.TextEmbedding.Model)
	assert.Equal(t, "sk-env", settings.TextEmbedding.APIKey)
	assert.True(t, settings.TextEmbedding.IsConfigured())
	assert.Equal(t, "jina-env", settings.ImageEmbedding.APIKey)
}

func TestSettingsService_ConfiguredAPIKeyWins(t *testing.T) {
	svc, _ := newTestSettingsService(map[string]string{"JINA_API_KEY": "jina-env"})
	require.NoError(t, svc.Set("embedding.image.api_key", "jina-file"))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, "jina-file", settings.ImageEmbedding.APIKey)
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newTestSettingsService(nil)

	keys := svc.Keys()

	assert.Len(t, keys, len(intKeys)+len(stringKeys))
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "ingest.chunk_chars")
	assert.Contains(t, keys, "embedding.image.provider")
}
