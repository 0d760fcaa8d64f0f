// Package filesystem provides the local-disk archive adapter.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
)

// Ensure Copier implements the interface.
var _ driven.Archiver = (*Copier)(nil)

// Copier copies files into the archive, keeping permissions and modification time.
type Copier struct{}

// NewCopier creates a new copier.
func NewCopier() *Copier {
	return &Copier{}
}

// Copy copies src to dst, creating parent directories. An existing dst is
// overwritten. The copy is written to a temporary file first and renamed,
// so dst never holds a partial file.
func (c *Copier) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set times: %w", err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	return nil
}
