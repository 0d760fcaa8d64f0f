// Command paperdex is a local archive for PDF papers and images with
// natural-language search.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/paperdex/internal/adapters/driven/ai"
	archivefs "github.com/custodia-labs/paperdex/internal/adapters/driven/archive/filesystem"
	"github.com/custodia-labs/paperdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperdex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/paperdex/internal/adapters/driving/cli"
	"github.com/custodia-labs/paperdex/internal/connectors/filesystem"
	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/core/services"
	"github.com/custodia-labs/paperdex/internal/logger"
	"github.com/custodia-labs/paperdex/internal/normalisers/pdf"
	"github.com/custodia-labs/paperdex/internal/normalisers/raster"
	"github.com/custodia-labs/paperdex/internal/postprocessors/chunker"
)

func main() {
	// A missing .env is fine; keys may come from the environment or config.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		if !errors.Is(err, cli.ErrFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// bootstrap wires adapters into the core services from the saved settings.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := openStore(settings, opts.Ephemeral)
	if err != nil {
		return nil, err
	}

	embedders, err := ai.CreateEmbedders(settings)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create embedders: %w", err)
	}

	result := &cli.Services{
		Settings: settingsService,
		Warnings: embedders.Warnings,
		Check: func(ctx context.Context) map[string]error {
			return ai.ValidateEmbedders(ctx, embedders)
		},
		Close: func() error {
			embedders.Close()
			return store.Close()
		},
	}

	lister := filesystem.NewLister()

	if embedders.Text != nil {
		papers, err := buildPaperService(ctx, store, embedders.Text, lister, settings)
		if err != nil {
			_ = result.Close()
			return nil, err
		}
		result.Papers = papers
	}

	if embedders.Image != nil {
		images, err := buildImageService(ctx, store, embedders.Image, lister, settings)
		if err != nil {
			_ = result.Close()
			return nil, err
		}
		result.Images = images
	}

	logger.Debug("Bootstrap: papers=%t images=%t store=%s",
		result.Papers != nil, result.Images != nil, settings.Workspace.StoreDir)

	return result, nil
}

// openStore opens the sqlite store, or an in-memory one for ephemeral runs.
func openStore(settings *domain.AppSettings, ephemeral bool) (driven.VectorStore, error) {
	if ephemeral {
		return memory.NewVectorStore(), nil
	}
	store, err := sqlite.NewStore(settings.Workspace.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
	}
	return store, nil
}

func buildPaperService(
	ctx context.Context,
	store driven.VectorStore,
	embedder driven.TextEmbedder,
	lister driven.FileLister,
	settings *domain.AppSettings,
) (*services.PaperService, error) {
	collection, err := store.Collection(ctx, settings.Collections.Papers)
	if err != nil {
		return nil, fmt.Errorf("open paper collection: %w", err)
	}

	return services.NewPaperService(services.PaperPorts{
		Index:     services.NewVectorIndex(collection, services.WithBatchSize(settings.Ingest.BatchSize)),
		Embedder:  embedder,
		Extractor: pdf.New(),
		Chunker: chunker.New(
			chunker.WithChunkSize(settings.Ingest.ChunkChars),
			chunker.WithOverlap(settings.Ingest.ChunkOverlap),
			chunker.WithMinEffectiveLength(settings.Ingest.MinChunkChars),
		),
		Classifier: services.NewTopicClassifier(embedder),
		Archivist:  services.NewArchivist(settings.Workspace.PapersDir, archivefs.NewCopier()),
		Lister:     lister,
	}, services.PaperConfigFrom(settings))
}

func buildImageService(
	ctx context.Context,
	store driven.VectorStore,
	embedder driven.ImageEmbedder,
	lister driven.FileLister,
	settings *domain.AppSettings,
) (*services.ImageService, error) {
	collection, err := store.Collection(ctx, settings.Collections.Images)
	if err != nil {
		return nil, fmt.Errorf("open image collection: %w", err)
	}

	return services.NewImageService(services.ImagePorts{
		Index:    services.NewVectorIndex(collection, services.WithBatchSize(settings.Ingest.BatchSize)),
		Embedder: embedder,
		Loader:   raster.NewLoader(),
		Lister:   lister,
	}, settings.Search.TopK)
}
