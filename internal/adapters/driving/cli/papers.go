package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

var (
	addPaperTopics []string
	addPaperNoMove bool
	batchTopics    []string
)

var addPaperCmd = &cobra.Command{
	Use:   "add-paper [path]",
	Short: "Add a PDF to the archive",
	Long: `Extracts the text of a PDF, files it under the closest topic in the
papers folder and indexes its chunks for search.

Content that is already indexed is skipped, whatever the file is called.

Examples:
  paperdex add-paper attention.pdf --topics NLP,Vision,Robotics
  paperdex add-paper notes.pdf --no-move`,
	Args: cobra.ExactArgs(1),
	RunE: runAddPaper,
}

var batchOrganizeCmd = &cobra.Command{
	Use:   "batch-organize [folder]",
	Short: "Add every PDF below a folder",
	Long: `Adds every PDF below a folder, one file at a time. A file that fails
is reported and the batch carries on.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchOrganize,
}

func init() {
	addPaperCmd.Flags().StringSliceVarP(&addPaperTopics, "topics", "t", nil, "candidate topics, comma separated")
	addPaperCmd.Flags().BoolVar(&addPaperNoMove, "no-move", false, "index the file where it is instead of archiving a copy")
	batchOrganizeCmd.Flags().StringSliceVarP(&batchTopics, "topics", "t", nil, "candidate topics, comma separated")
	_ = batchOrganizeCmd.MarkFlagRequired("topics")
	rootCmd.AddCommand(addPaperCmd)
	rootCmd.AddCommand(batchOrganizeCmd)
}

func runAddPaper(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errNotConfigured("paper")
	}

	opts := domain.AddPaperOptions{
		Topics: cleanTopics(addPaperTopics),
		NoMove: addPaperNoMove,
	}
	result, err := paperService.AddPaper(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	if err := render(cmd, result, func(w io.Writer) { writeIngestResult(w, result) }); err != nil {
		return err
	}
	if result.Status == domain.StatusFailed {
		return ErrFailed
	}
	return nil
}

func runBatchOrganize(cmd *cobra.Command, args []string) error {
	if paperService == nil {
		return errNotConfigured("paper")
	}

	result, err := paperService.BatchOrganize(cmd.Context(), args[0], cleanTopics(batchTopics))
	if err != nil {
		return err
	}

	if err := render(cmd, result, func(w io.Writer) { writeBatchResult(w, result) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		return ErrFailed
	}
	return nil
}

// cleanTopics trims topics and drops empty ones.
func cleanTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
