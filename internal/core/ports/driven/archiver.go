package driven

import "context"

// Archiver copies ingested files into the archive.
type Archiver interface {
	// Copy copies src to dst, creating parent directories and preserving
	// file mode and modification time. An existing dst is overwritten.
	Copy(ctx context.Context, src, dst string) error
}
