package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

// Output formats.
const (
	formatAuto = "auto"
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(f string) error {
	switch f {
	case formatAuto, formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown output format %q (use auto, text, json or yaml)", domain.ErrInvalidInput, f)
	}
}

// resolveFormat turns auto into text on a terminal and JSON otherwise.
func resolveFormat(w io.Writer) string {
	if outputFormat != formatAuto {
		return outputFormat
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return formatText
	}
	return formatJSON
}

// render writes v as JSON or YAML, or calls text for the text format.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch resolveFormat(w) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func writeIngestResult(w io.Writer, r *domain.IngestResult) {
	if r.Status != domain.StatusOK {
		fmt.Fprintf(w, "%-8s %s: %s\n", r.Status, r.File, r.Reason)
		return
	}
	fmt.Fprintf(w, "%-8s %s\n", r.Status, r.File)
	if r.Topic != "" {
		if r.TopicScore != nil {
			fmt.Fprintf(w, "  topic:       %s (%.4f)\n", r.Topic, *r.TopicScore)
		} else {
			fmt.Fprintf(w, "  topic:       %s\n", r.Topic)
		}
	}
	if r.ArchivedTo != "" && r.ArchivedTo != r.File {
		fmt.Fprintf(w, "  archived to: %s\n", r.ArchivedTo)
	}
	if r.ChunksIndexed > 0 {
		fmt.Fprintf(w, "  chunks:      %d\n", r.ChunksIndexed)
	}
	if r.Fingerprint != "" {
		fmt.Fprintf(w, "  fingerprint: %s\n", r.Fingerprint)
	}
}

func writeBatchResult(w io.Writer, b *domain.BatchResult) {
	for i := range b.Details {
		writeIngestResult(w, &b.Details[i])
	}
	if len(b.Details) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "total %d, ok %d, skipped %d, failed %d\n", b.Total, b.OK, b.Skipped, b.Failed)
}

func writePaperSearch(w io.Writer, r *domain.PaperSearchResult) {
	if r.Status == domain.StatusFailed {
		fmt.Fprintf(w, "Search failed: %s\n", r.Reason)
		return
	}
	if len(r.TopFiles) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintln(w, "Files:")
	for i, f := range r.TopFiles {
		fmt.Fprintf(w, "  [%d] %s (%.4f)\n", i+1, f.File, f.BestScore)
		fmt.Fprintf(w, "      topic %s, pages %s\n", f.Topic, f.BestPages)
	}

	if len(r.TopChunks) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Chunks:")
	for i, c := range r.TopChunks {
		fmt.Fprintf(w, "  [%d] %s p.%s (%.4f)\n", i+1, c.File, c.Pages, c.Score)
		if c.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", c.Snippet)
		}
	}
}

func writeImageSearch(w io.Writer, r *domain.ImageSearchResult) {
	if r.Status == domain.StatusFailed {
		fmt.Fprintf(w, "Search failed: %s\n", r.Reason)
		return
	}
	if len(r.Hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	for i, h := range r.Hits {
		fmt.Fprintf(w, "  [%d] %s (%.4f)\n", i+1, h.File, h.Score)
	}
}
