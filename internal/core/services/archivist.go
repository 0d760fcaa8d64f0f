package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/paperdex/internal/core/ports/driven"
	"github.com/custodia-labs/paperdex/internal/fingerprint"
)

// maxFilenameLength caps sanitised path components, in characters.
const maxFilenameLength = 180

// archiveHashPrefix is how many fingerprint characters suffix an archived name.
const archiveHashPrefix = 8

// Archivist places ingested papers into a topic-organised folder tree.
type Archivist struct {
	root     string
	archiver driven.Archiver
}

// NewArchivist creates an archivist rooted at root.
func NewArchivist(root string, archiver driven.Archiver) *Archivist {
	return &Archivist{root: root, archiver: archiver}
}

// Root returns the archive root directory.
func (a *Archivist) Root() string {
	return a.root
}

// Destination returns root/<topic>/<stem>__<fingerprint[:8]><ext>.
// The fingerprint suffix keeps same-named papers with different content apart.
func (a *Archivist) Destination(topic, src, fp string) string {
	ext := filepath.Ext(src)
	stem := strings.TrimSuffix(filepath.Base(src), ext)
	name := SafeFilename(stem) + "__" + fingerprint.Short(fp, archiveHashPrefix) + strings.ToLower(ext)
	return filepath.Join(a.root, SafeFilename(topic), name)
}

// Archive copies src to its destination and returns the destination path.
// A file already at its destination is left untouched.
func (a *Archivist) Archive(ctx context.Context, topic, src, fp string) (string, error) {
	dst := a.Destination(topic, src, fp)

	same, err := samePath(src, dst)
	if err != nil {
		return "", err
	}
	if same {
		return dst, nil
	}

	if err := a.archiver.Copy(ctx, src, dst); err != nil {
		return "", fmt.Errorf("archive %s: %w", filepath.Base(src), err)
	}
	return dst, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// SafeFilename replaces characters that are invalid in file names on common
// filesystems with underscores, trims surrounding whitespace and caps the
// result at 180 characters. Names that would not select a child entry
// ("", "." and "..") become "_".
func SafeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	runes := []rune(name)
	if len(runes) > maxFilenameLength {
		name = string(runes[:maxFilenameLength])
	}
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
