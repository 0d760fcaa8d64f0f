package cli

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperdex/internal/connectors/filesystem"
	"github.com/custodia-labs/paperdex/internal/core/domain"
	coreservices "github.com/custodia-labs/paperdex/internal/core/services"
	"github.com/custodia-labs/paperdex/internal/logger"
)

var (
	watchTopics   []string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Ingest new files as they appear in a folder",
	Long: `Watches a folder and its subfolders. New or rewritten PDFs are added as
papers and new images are indexed, one file at a time. Each outcome is
printed as it completes. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchTopics, "topics", "t", nil, "candidate topics for new papers, comma separated")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before a file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if paperService == nil && imageService == nil {
		return errNotConfigured("paper and image")
	}

	var exts []string
	if paperService != nil {
		exts = append(exts, coreservices.PaperExtensions...)
	}
	if imageService != nil {
		exts = append(exts, coreservices.ImageExtensions...)
	}

	archive := papersDir()
	topics := cleanTopics(watchTopics)

	w := filesystem.NewWatcher(args[0], exts, filesystem.WithDebounce(watchDebounce))
	defer w.Close()

	events, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", args[0])

	for ev := range events {
		if archive != "" && within(ev.Path, archive) {
			continue
		}
		result := ingestPath(cmd.Context(), ev.Path, topics)
		if err := render(cmd, result, func(w io.Writer) { writeIngestResult(w, result) }); err != nil {
			return err
		}
	}
	return nil
}

// ingestPath adds one file with the service matching its extension.
func ingestPath(ctx context.Context, path string, topics []string) *domain.IngestResult {
	var (
		result *domain.IngestResult
		err    error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		result, err = paperService.AddPaper(ctx, path, domain.AddPaperOptions{Topics: topics})
		if err != nil {
			failed := domain.Failed(path, domain.ModalityPaper, err.Error())
			result = &failed
		}
	} else {
		result, err = imageService.AddImage(ctx, path)
		if err != nil {
			failed := domain.Failed(path, domain.ModalityImage, err.Error())
			result = &failed
		}
	}
	if err != nil {
		logger.Warn("watch: %s: %v", path, err)
	}
	return result
}

// papersDir returns the absolute archive root, or "" when unknown.
func papersDir() string {
	if settingsService == nil {
		return ""
	}
	settings, err := settingsService.Get()
	if err != nil {
		return ""
	}
	dir, err := filepath.Abs(settings.Workspace.PapersDir)
	if err != nil {
		return ""
	}
	return dir
}

// within reports whether path is dir or below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
