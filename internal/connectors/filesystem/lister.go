// Package filesystem lists and watches local folders for ingestible files.
package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/logger"
)

// Ensure Lister implements the interface.
var _ driven.FileLister = (*Lister)(nil)

// Lister walks a folder tree and returns files with matching extensions.
// Hidden files and directories are included. Subdirectories that cannot be
// read are logged and skipped.
type Lister struct {
	// dirFS opens the tree rooted at an absolute path.
	dirFS func(root string) fs.FS
}

// NewLister creates a new lister over the local filesystem.
func NewLister() *Lister {
	return &Lister{dirFS: os.DirFS}
}

// List returns every regular file below root whose extension, compared
// case-insensitively, is in exts. Paths are absolute and sorted lexically.
// Only an unreadable root is an error.
func (l *Lister) List(root string, exts []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = fs.WalkDir(l.dirFS(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}
			logger.Warn("Skipping unreadable %s: %v", filepath.Join(root, filepath.FromSlash(path)), err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && matchesExt(path, exts) {
			files = append(files, filepath.Join(root, filepath.FromSlash(path)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// matchesExt reports whether path ends in one of exts, ignoring case.
func matchesExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
