package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many entries each collection holds",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// collectionStats counts index entries per collection. A count of -1
// means the collection's service is not configured.
type collectionStats struct {
	PaperChunks int `json:"paper_chunks" yaml:"paper_chunks"`
	Images      int `json:"images" yaml:"images"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if paperService == nil && imageService == nil {
		return errNotConfigured("paper and image")
	}

	stats := collectionStats{PaperChunks: -1, Images: -1}
	if paperService != nil {
		n, err := paperService.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count papers: %w", err)
		}
		stats.PaperChunks = n
	}
	if imageService != nil {
		n, err := imageService.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count images: %w", err)
		}
		stats.Images = n
	}

	return render(cmd, stats, func(w io.Writer) {
		fmt.Fprintf(w, "Paper chunks: %s\n", countText(stats.PaperChunks))
		fmt.Fprintf(w, "Images:       %s\n", countText(stats.Images))
	})
}

func countText(n int) string {
	if n < 0 {
		return "(not configured)"
	}
	return fmt.Sprintf("%d", n)
}
