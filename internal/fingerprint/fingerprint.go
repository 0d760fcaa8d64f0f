// Package fingerprint computes content fingerprints used as deduplication keys.
//
// A fingerprint is the lowercase hex SHA-1 of a file's bytes. It depends only
// on content, never on the path or modification time, so the same file copied
// or renamed keeps its fingerprint.
package fingerprint

import (
	"crypto/sha1" //nolint:gosec // content identity, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// BlockSize is the read buffer size; files are hashed in blocks of this size.
const BlockSize = 1 << 20

// Length is the number of hex characters in a fingerprint.
const Length = sha1.Size * 2

// File returns the fingerprint of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	return Reader(f)
}

// Reader returns the fingerprint of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha1.New() //nolint:gosec // see import
	buf := make([]byte, BlockSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Short returns the first n characters of a fingerprint, used in archive names.
func Short(fp string, n int) string {
	if len(fp) <= n {
		return fp
	}
	return fp[:n]
}
