package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperdex/internal/core/domain"
)

var addImageCmd = &cobra.Command{
	Use:   "add-image [path]",
	Short: "Index one image",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddImage,
}

var indexImagesCmd = &cobra.Command{
	Use:   "index-images [folder]",
	Short: "Index every image below a folder",
	Long: `Indexes every JPEG, PNG, WebP and BMP image below a folder, in place.
Without a folder the configured images folder is used. Images that are
already indexed are skipped and unreadable ones are reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexImages,
}

func init() {
	rootCmd.AddCommand(addImageCmd)
	rootCmd.AddCommand(indexImagesCmd)
}

func runAddImage(cmd *cobra.Command, args []string) error {
	if imageService == nil {
		return errNotConfigured("image")
	}

	result, err := imageService.AddImage(cmd.Context(), args[0])
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

func runIndexImages(cmd *cobra.Command, args []string) error {
	if imageService == nil {
		return errNotConfigured("image")
	}

	folder, err := imagesFolder(args)
	if err != nil {
		return err
	}

	result, err := imageService.IndexImages(cmd.Context(), folder)
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

// imagesFolder returns the folder argument, or the configured images folder.
func imagesFolder(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if settingsService == nil {
		return domain.DefaultAppSettings().Workspace.ImagesDir, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", err
	}
	return settings.Workspace.ImagesDir, nil
}
