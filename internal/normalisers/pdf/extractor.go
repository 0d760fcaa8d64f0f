// Package pdf extracts per-page text from PDF files.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when the PDF cannot be parsed natively
// and pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")

// pdftotextBin is the poppler command used as a fallback.
const pdftotextBin = "pdftotext"

// CommandRunner executes external commands. Tests substitute a mock.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor reads page text with a pure-Go parser and falls back to
// pdftotext for files the parser cannot open or that yield no text.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates an extractor that runs the real pdftotext.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner, lookPath: exec.LookPath}
}

// CheckAvailable reports whether pdftotext is in PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdftotextBin); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext is part of poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}

// ExtractPages returns the text of the first maxPages pages; element i is
// page i+1. A page whose text cannot be decoded is returned as "". The
// error is reserved for files that cannot be opened at all.
func (e *Extractor) ExtractPages(ctx context.Context, path string, maxPages int) ([]string, error) {
	pages, err := readPages(ctx, path, maxPages)
	if err == nil && hasText(pages) {
		return pages, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if _, lookErr := e.lookPath(pdftotextBin); lookErr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w (%w)", err, ErrPDFToolNotFound)
		}
		// Parsed fine but carries no text layer.
		return pages, nil
	}

	logger.Debug("Falling back to pdftotext for %s", path)
	fallback, toolErr := e.runPDFToText(ctx, path, maxPages)
	if toolErr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w; %w", err, toolErr)
		}
		return pages, nil
	}
	return fallback, nil
}

// readPages parses path with the native reader. Panics inside the parser
// are turned into errors; a page that fails to decode becomes "".
func readPages(ctx context.Context, path string, maxPages int) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	pages = make([]string, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages[i-1] = pageText(r.Page(i))
	}
	return pages, nil
}

// pageText decodes one page, returning "" on any failure.
func pageText(p pdf.Page) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	if p.V.IsNull() {
		return ""
	}
	// Font resource names are per page, so fonts are resolved per page too.
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// runPDFToText extracts pages with pdftotext, which separates pages with
// form feeds.
func (e *Extractor) runPDFToText(ctx context.Context, path string, maxPages int) ([]string, error) {
	args := []string{"-enc", "UTF-8"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, path, "-")

	out, err := e.runner.Run(ctx, pdftotextBin, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	pages := strings.Split(string(out), "\f")
	// Output ends with a form feed after the last page.
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
