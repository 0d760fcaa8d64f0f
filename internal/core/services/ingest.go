package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperdex/internal/core/domain"
	"github.com/custodia-labs/paperdex/internal/logger"
)

// PaperExtensions are the file extensions ingested as papers.
var PaperExtensions = []string{".pdf"}

// ImageExtensions are the file extensions ingested as images.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp"}

// HasExtension reports whether path ends in one of exts, ignoring case.
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// checkFile resolves path to an absolute path and verifies that it names an
// existing regular file with one of exts.
func checkFile(path string, exts []string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", domain.ErrNotFound, abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}
	if !HasExtension(abs, exts) {
		return "", fmt.Errorf("%w: %s (want %s)", domain.ErrUnsupportedFileType, abs, strings.Join(exts, ", "))
	}
	return abs, nil
}

// checkFolder resolves folder to an absolute path and verifies it is a directory.
func checkFolder(folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, folder, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: folder %s", domain.ErrNotFound, abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return abs, nil
}

// runBatch ingests files one at a time and tallies the outcomes. A panic
// while processing one file is recorded as that file's failure.
func runBatch(
	ctx context.Context,
	modality domain.Modality,
	files []string,
	ingest func(ctx context.Context, path string) domain.IngestResult,
) (*domain.BatchResult, error) {
	batch := domain.NewBatchResult(uuid.NewString())
	logger.Info("Batch %s: %d %s file(s)", batch.RunID, len(files), modality)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		res := safeIngest(ctx, modality, path, ingest)
		batch.Record(res)
		logger.Debugw("batch item",
			"run", batch.RunID, "n", i+1, "file", path, "status", res.Status, "reason", res.Reason)
	}

	logger.Info("Batch %s: total=%d ok=%d skipped=%d failed=%d",
		batch.RunID, batch.Total, batch.OK, batch.Skipped, batch.Failed)
	return batch, nil
}

func safeIngest(
	ctx context.Context,
	modality domain.Modality,
	path string,
	ingest func(ctx context.Context, path string) domain.IngestResult,
) (res domain.IngestResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected failure ingesting %s: %v", path, r)
			res = domain.Failed(path, modality, fmt.Sprintf("unexpected error: %v", r))
		}
	}()
	return ingest(ctx, path)
}

// skipped builds the outcome for content that is already indexed.
func skipped(file string, modality domain.Modality, fp string) domain.IngestResult {
	return domain.IngestResult{
		Status:      domain.StatusSkipped,
		Reason:      domain.ReasonAlreadyIndexed,
		File:        file,
		Modality:    modality,
		Fingerprint: fp,
	}
}

// failed builds a failed outcome carrying the wrapped error of a stage.
func failed(file string, modality domain.Modality, fp, stage string, err error) domain.IngestResult {
	logger.Warn("%s %s failed at %s: %v", modality, file, stage, err)
	res := domain.Failed(file, modality, fmt.Sprintf("%s: %v", stage, err))
	res.Fingerprint = fp
	return res
}
