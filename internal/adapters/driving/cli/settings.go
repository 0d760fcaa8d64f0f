package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change workspace, ingestion, search and embedding settings.

Settings are stored in config.toml inside the configuration directory.
API keys may also come from OPENAI_API_KEY and JINA_API_KEY.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting by its dotted key, for example:

  paperdex config set ingest.chunk_chars 800
  paperdex config set embedding.text.provider openai

Run 'paperdex config keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the embedding providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configEmbeddingCmd = &cobra.Command{
	Use:       "embedding [text|image]",
	Short:     "Configure an embedding provider interactively",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{modalityText, modalityImage},
	RunE:      runConfigEmbedding,
}

const (
	modalityText  = "text"
	modalityImage = "image"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	view := settingsView(settings)
	return render(cmd, view, func(w io.Writer) { writeSettings(w, settings) })
}

// settingsView is the serialisable form of the settings, keys masked.
func settingsView(s *domain.AppSettings) map[string]any {
	embedding := func(e domain.EmbeddingSettings) map[string]any {
		m := map[string]any{
			"provider":   e.Provider.String(),
			"model":      e.Model,
			"base_url":   e.BaseURL,
			"configured": e.IsConfigured(),
		}
		if e.APIKey != "" {
			m["api_key"] = maskAPIKey(e.APIKey)
		}
		if e.Dimensions > 0 {
			m["dimensions"] = e.Dimensions
		}
		return m
	}
	return map[string]any{
		"workspace": map[string]any{
			"dir":        s.Workspace.Dir,
			"papers_dir": s.Workspace.PapersDir,
			"images_dir": s.Workspace.ImagesDir,
			"store_dir":  s.Workspace.StoreDir,
		},
		"collections": map[string]any{
			"papers": s.Collections.Papers,
			"images": s.Collections.Images,
		},
		"ingest": map[string]any{
			"max_pages":       s.Ingest.MaxPages,
			"chunk_chars":     s.Ingest.ChunkChars,
			"chunk_overlap":   s.Ingest.ChunkOverlap,
			"min_chunk_chars": s.Ingest.MinChunkChars,
			"batch_size":      s.Ingest.BatchSize,
			"fallback_topic":  s.Ingest.FallbackTopic,
		},
		"search": map[string]any{
			"topk":          s.Search.TopK,
			"snippet_chars": s.Search.SnippetChars,
		},
		"embedding": map[string]any{
			modalityText:  embedding(s.TextEmbedding),
			modalityImage: embedding(s.ImageEmbedding),
		},
	}
}

func writeSettings(w io.Writer, s *domain.AppSettings) {
	fmt.Fprintln(w, "Current Settings")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[Workspace]")
	fmt.Fprintf(w, "  Papers: %s\n", s.Workspace.PapersDir)
	fmt.Fprintf(w, "  Images: %s\n", s.Workspace.ImagesDir)
	fmt.Fprintf(w, "  Index:  %s\n", s.Workspace.StoreDir)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[Ingest]")
	fmt.Fprintf(w, "  Max pages: %d\n", s.Ingest.MaxPages)
	fmt.Fprintf(w, "  Chunk size: %d (overlap %d, minimum %d)\n",
		s.Ingest.ChunkChars, s.Ingest.ChunkOverlap, s.Ingest.MinChunkChars)
	fmt.Fprintf(w, "  Batch size: %d\n", s.Ingest.BatchSize)
	fmt.Fprintf(w, "  Fallback topic: %s\n", s.Ingest.FallbackTopic)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[Search]")
	fmt.Fprintf(w, "  Top K: %d\n", s.Search.TopK)
	fmt.Fprintf(w, "  Snippet: %d characters\n", s.Search.SnippetChars)
	fmt.Fprintln(w)

	writeEmbedding(w, "Text Embedding", s.TextEmbedding)
	writeEmbedding(w, "Image Embedding", s.ImageEmbedding)
}

func writeEmbedding(w io.Writer, title string, e domain.EmbeddingSettings) {
	fmt.Fprintf(w, "[%s]\n", title)
	fmt.Fprintf(w, "  Provider: %s\n", e.Provider.Description())
	fmt.Fprintf(w, "  Model: %s\n", e.Model)
	fmt.Fprintf(w, "  Base URL: %s\n", e.BaseURL)
	if e.Provider.RequiresAPIKey() {
		if e.APIKey != "" {
			fmt.Fprintf(w, "  API Key: %s\n", maskAPIKey(e.APIKey))
		} else {
			fmt.Fprintf(w, "  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !e.IsConfigured() {
		status = "not configured"
	}
	fmt.Fprintf(w, "  Status: %s\n", status)
	fmt.Fprintln(w)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, ".api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	keys := settingsService.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Println(k)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Check == nil {
		return errors.New("provider check not configured")
	}

	results := services.Check(cmd.Context())
	for _, w := range services.Warnings {
		cmd.Printf("warning: %s\n", w)
	}
	if len(results) == 0 {
		return errors.New("no embedding provider configured")
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := false
	for _, name := range names {
		if err := results[name]; err != nil {
			cmd.Printf("%-6s FAILED: %v\n", name, err)
			failed = true
			continue
		}
		cmd.Printf("%-6s OK\n", name)
	}
	if failed {
		return ErrFailed
	}
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	modality := args[0]
	providers := domain.AllEmbeddingProviders()
	switch modality {
	case modalityText:
	case modalityImage:
		providers = imageProviders(providers)
	default:
		return fmt.Errorf("%w: modality must be %q or %q", domain.ErrInvalidInput, modalityText, modalityImage)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader, modality, providers)
}

func imageProviders(all []domain.AIProvider) []domain.AIProvider {
	var out []domain.AIProvider
	for _, p := range all {
		if p.SupportsImages() {
			out = append(out, p)
		}
	}
	return out
}

func configureEmbeddingProvider(
	cmd *cobra.Command, reader *bufio.Reader, modality string, providers []domain.AIProvider,
) error {
	cmd.Printf("Select %s Embedding Provider\n", modality)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}

	prefix := "embedding." + modality + "."
	values := [][2]string{
		{prefix + "provider", selectedProvider.String()},
		{prefix + "model", model},
	}
	if apiKey != "" {
		values = append(values, [2]string{prefix + "api_key", apiKey})
	}
	for _, kv := range values {
		if err := settingsService.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to configure embedding provider: %w", err)
		}
	}

	cmd.Printf("%s embedding provider configured: %s (%s)\n", modality, selectedProvider.Description(), model)
	cmd.Println("Run 'paperdex config check' to validate it.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal, else a line from reader.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
