package domain

import "path/filepath"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance (text only).
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API (text only).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderJina is the Jina AI CLIP API (text and images).
	AIProviderJina AIProvider = "jina"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderJina:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderJina
}

// SupportsImages returns true if the provider embeds images and text into one space.
func (p AIProvider) SupportsImages() bool {
	return p == AIProviderJina
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderJina:
		return "Jina CLIP (cloud)"
	default:
		return unknownDescription
	}
}

// WorkspaceSettings locates the archive on disk.
type WorkspaceSettings struct {
	// Dir is the workspace root.
	Dir string

	// PapersDir is the root of the topic-organised paper archive.
	PapersDir string

	// ImagesDir is the default image library folder.
	ImagesDir string

	// StoreDir holds the vector store database.
	StoreDir string
}

// CollectionSettings names the per-modality vector collections.
type CollectionSettings struct {
	Papers string
	Images string
}

// IngestSettings controls extraction, chunking and indexing.
type IngestSettings struct {
	MaxPages      int
	ChunkChars    int
	ChunkOverlap  int
	MinChunkChars int
	BatchSize     int
	FallbackTopic string
}

// SearchSettings controls query defaults.
type SearchSettings struct {
	TopK         int
	SnippetChars int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Dimensions optionally truncates vectors (providers that support it).
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	Workspace      WorkspaceSettings
	Collections    CollectionSettings
	Ingest         IngestSettings
	Search         SearchSettings
	TextEmbedding  EmbeddingSettings
	ImageEmbedding EmbeddingSettings
}

// Default values.
const (
	DefaultWorkspaceDir    = "./data"
	DefaultPapersDirName   = "papers"
	DefaultImagesDirName   = "images"
	DefaultStoreDirName    = "vectordb"
	DefaultMaxPages        = 30
	DefaultChunkChars      = 1200
	DefaultChunkOverlap    = 200
	DefaultMinChunkChars   = 30
	DefaultBatchSize       = 8
	DefaultFallbackTopic   = "Unsorted"
	DefaultTopK            = 5
	DefaultSnippetChars    = 300
	DefaultPaperCollection = "papers"
	DefaultImageCollection = "images"
)

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Workspace: WorkspaceFor(DefaultWorkspaceDir),
		Collections: CollectionSettings{
			Papers: DefaultPaperCollection,
			Images: DefaultImageCollection,
		},
		Ingest: IngestSettings{
			MaxPages:      DefaultMaxPages,
			ChunkChars:    DefaultChunkChars,
			ChunkOverlap:  DefaultChunkOverlap,
			MinChunkChars: DefaultMinChunkChars,
			BatchSize:     DefaultBatchSize,
			FallbackTopic: DefaultFallbackTopic,
		},
		Search: SearchSettings{
			TopK:         DefaultTopK,
			SnippetChars: DefaultSnippetChars,
		},
		TextEmbedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			BaseURL:  "http://localhost:11434",
		},
		ImageEmbedding: EmbeddingSettings{
			Provider: AIProviderJina,
			Model:    DefaultEmbeddingModels()[AIProviderJina],
			BaseURL:  "https://api.jina.ai/v1",
		},
	}
}

// WorkspaceFor derives the archive layout below a workspace root.
func WorkspaceFor(dir string) WorkspaceSettings {
	return WorkspaceSettings{
		Dir:       dir,
		PapersDir: filepath.Join(dir, DefaultPapersDirName),
		ImagesDir: filepath.Join(dir, DefaultImagesDirName),
		StoreDir:  filepath.Join(dir, DefaultStoreDirName),
	}
}

// AllEmbeddingProviders returns providers that support text embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderJina,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderJina:   "jina-clip-v2",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Jina CLIP models
		"jina-clip-v1": 768,
		"jina-clip-v2": 1024,
	}
}
