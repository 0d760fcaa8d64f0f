package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	args   []string
}

func (m *mockRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	m.args = args
	return m.output, m.err
}

func found(string) (string, error) { return "/usr/bin/pdftotext", nil }
func missing(string) (string, error) { return "", errors.New("not found") }

// writePDF writes a minimal PDF with one text line per page.
func writePDF(t *testing.T, pages ...string) string {
	t.Helper()
	var objects []string
	n := len(pages)
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func TestExtractPages_Native(t *testing.T) {
	path := writePDF(t, "Attention is all you need", "Scaled dot product", "Results")
	runner := &mockRunner{}
	e := NewWithRunner(runner)
	e.lookPath = found

	pages, err := e.ExtractPages(context.Background(), path, 30)

	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Contains(t, pages[0], "Attention is all you need")
	assert.Contains(t, pages[1], "Scaled dot product")
	assert.Contains(t, pages[2], "Results")
	assert.Nil(t, runner.args, "pdftotext must not run when native parsing succeeds")
}

func TestExtractPages_MaxPages(t *testing.T) {
	path := writePDF(t, "one", "two", "three")
	e := NewWithRunner(&mockRunner{})
	e.lookPath = missing

	pages, err := e.ExtractPages(context.Background(), path, 2)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[1], "two")
}

func TestExtractPages_FallbackForUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 truncated"), 0600))
	runner := &mockRunner{output: []byte("first page\fsecond page\f")}
	e := NewWithRunner(runner)
	e.lookPath = found

	pages, err := e.ExtractPages(context.Background(), path, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"first page", "second page"}, pages)
	assert.Equal(t, []string{"-enc", "UTF-8", "-l", "5", path, "-"}, runner.args)
}

func TestExtractPages_UnreadableWithoutTool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0600))
	e := NewWithRunner(&mockRunner{})
	e.lookPath = missing

	_, err := e.ExtractPages(context.Background(), path, 5)

	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestExtractPages_ToolFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0600))
	e := NewWithRunner(&mockRunner{err: errors.New("exit status 1")})
	e.lookPath = found

	_, err := e.ExtractPages(context.Background(), path, 5)

	assert.ErrorContains(t, err, "pdftotext failed")
}

func TestExtractPages_MissingFile(t *testing.T) {
	e := NewWithRunner(&mockRunner{})
	e.lookPath = missing

	_, err := e.ExtractPages(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), 5)

	assert.Error(t, err)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
