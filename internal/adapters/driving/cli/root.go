// Package cli implements the paperdex command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperdex/internal/core/ports/driving"
	"github.com/custodia-labs/paperdex/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Global flag values.
var (
	verbose      bool
	outputFormat string
	configDir    string
	ephemeral    bool
)

// Services are the core services the commands drive. A nil service
// means its embedding provider is not configured.
type Services struct {
	Papers   driving.PaperService
	Images   driving.ImageService
	Settings driving.SettingsService

	// Check pings every configured embedding provider, keyed by modality.
	Check func(ctx context.Context) map[string]error

	// Warnings describe services that could not be built.
	Warnings []string

	// Close releases the vector store and embedders.
	Close func() error
}

// Options carries the global flags a Bootstrap needs.
type Options struct {
	ConfigDir string
	Ephemeral bool
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap Bootstrap
	services  *Services
)

var (
	paperService    driving.PaperService
	imageService    driving.ImageService
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "paperdex",
	Short: "Local multimodal archive for papers and images",
	Long: `paperdex organises PDF papers into topic folders and indexes papers
and images for natural-language search. Everything stays on this machine
apart from calls to the configured embedding providers.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatAuto, "output format: auto, text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.paperdex)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the index in memory for this run only")
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
	if s == nil {
		paperService, imageService, settingsService = nil, nil, nil
		return
	}
	paperService = s.Papers
	imageService = s.Images
	settingsService = s.Settings
}

// ErrFailed is returned when a command completed but at least one item
// failed. The outcome has already been printed.
var ErrFailed = errors.New("one or more items failed")

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if err := validateFormat(outputFormat); err != nil {
		return err
	}
	if bootstrap == nil || services != nil || skipsBootstrap(cmd) {
		return nil
	}

	s, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	for _, w := range s.Warnings {
		logger.Warn("%s", w)
	}
	SetServices(s)
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if services != nil && services.Close != nil && bootstrap != nil {
		if err := services.Close(); err != nil {
			logger.Error("close: %v", err)
		}
		SetServices(nil)
	}
	logger.Sync()
}

// skipsBootstrap reports whether cmd runs without services.
func skipsBootstrap(cmd *cobra.Command) bool {
	return cmd == versionCmd || cmd.Name() == "help" || cmd.Name() == "completion"
}

// errNotConfigured is returned when a command's service was not built.
func errNotConfigured(name string) error {
	if services != nil && len(services.Warnings) > 0 {
		return fmt.Errorf("%s service not configured (%s)", name, strings.Join(services.Warnings, "; "))
	}
	return fmt.Errorf("%s service not configured", name)
}
