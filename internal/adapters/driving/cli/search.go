package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

var (
	searchPaperTopK      int
	searchPaperFilesOnly bool
	searchImageTopK      int
)

var searchPaperCmd = &cobra.Command{
	Use:   "search-paper [query]",
	Short: "Search indexed papers",
	Long: `Embeds the query and returns the closest paper chunks together with
the files they came from. Files are ranked by their best matching chunk.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchPaper,
}

var searchImageCmd = &cobra.Command{
	Use:   "search-image [query]",
	Short: "Search indexed images by description",
	Long:  `Embeds a text description into the image space and returns the closest images.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearchImage,
}

func init() {
	searchPaperCmd.Flags().IntVarP(&searchPaperTopK, "topk", "k", 0, "number of chunks to retrieve (default search.topk)")
	searchPaperCmd.Flags().BoolVar(&searchPaperFilesOnly, "files-only", false, "only list matching files")
	searchImageCmd.Flags().IntVarP(&searchImageTopK, "topk", "k", 0, "number of images to return (default search.topk)")
	rootCmd.AddCommand(searchPaperCmd)
	rootCmd.AddCommand(searchImageCmd)
}

func runSearchPaper(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errNotConfigured("paper")
	}
	if searchPaperTopK < 0 {
		return fmt.Errorf("%w: --topk must be positive", domain.ErrInvalidInput)
	}

	opts := domain.PaperSearchOptions{
		TopK:      searchPaperTopK,
		FilesOnly: searchPaperFilesOnly,
	}
	result, err := paperService.SearchPapers(cmd.Context(), strings.Join(args, " "), opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if err := render(cmd, result, func(w io.Writer) { writePaperSearch(w, result) }); err != nil {
		return err
	}
	if result.Status == domain.StatusFailed {
		return ErrFailed
	}
	return nil
}

func runSearchImage(cmd *cobra.Command, args []string) error {
	if imageService == nil {
		return errNotConfigured("image")
	}
	if searchImageTopK < 0 {
		return fmt.Errorf("%w: --topk must be positive", domain.ErrInvalidInput)
	}

	result, err := imageService.SearchImages(cmd.Context(), strings.Join(args, " "), searchImageTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if err := render(cmd, result, func(w io.Writer) { writeImageSearch(w, result) }); err != nil {
		return err
	}
	if result.Status == domain.StatusFailed {
		return ErrFailed
	}
	return nil
}
