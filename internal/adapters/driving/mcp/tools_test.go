package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extrakt/internal/core/services"
	"github.com/custodia-labs/extrakt/internal/extractors"
	"github.com/custodia-labs/extrakt/internal/mimetype"
	"github.com/custodia-labs/extrakt/internal/plugins"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	reg := plugins.New()
	detector := mimetype.NewDetector()
	svc := services.NewExtraction(reg, extractors.Defaults(), detector, nil)

	server, err := NewServer(&Ports{
		Extraction: svc,
		Detector:   detector,
		Plugins:    reg,
	})
	require.NoError(t, err)
	return server
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestServer_handleExtractFile(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("extracts a plain text file", func(t *testing.T) {
		path := writeTemp(t, "note.txt", "hello from mcp")

		input := ExtractFileInput{Path: path}
		_, output, err := server.handleExtractFile(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "hello from mcp", output.Content)
		assert.Equal(t, "text/plain", output.MIMEType)
	})

	t.Run("accepts inline JSON config", func(t *testing.T) {
		path := writeTemp(t, "note.txt", "one two three four five six seven eight")

		input := ExtractFileInput{
			Path:   path,
			Config: `{"chunking": {"max_chars": 16, "max_overlap": 0}}`,
		}
		_, output, err := server.handleExtractFile(ctx, nil, input)

		require.NoError(t, err)
		assert.Greater(t, output.ChunkCount, 1)
	})

	t.Run("rejects malformed config", func(t *testing.T) {
		input := ExtractFileInput{Path: "irrelevant.txt", Config: `{"chunking": 7}`}
		_, _, err := server.handleExtractFile(ctx, nil, input)
		require.Error(t, err)
	})

	t.Run("missing file returns error", func(t *testing.T) {
		input := ExtractFileInput{Path: filepath.Join(t.TempDir(), "ghost.txt")}
		_, _, err := server.handleExtractFile(ctx, nil, input)
		require.Error(t, err)
	})
}

func TestServer_handleBatchExtract(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("results stay in input order", func(t *testing.T) {
		a := writeTemp(t, "a.txt", "alpha")
		b := writeTemp(t, "b.txt", "bravo")

		input := BatchExtractInput{Paths: []string{a, b}}
		_, output, err := server.handleBatchExtract(ctx, nil, input)

		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, a, output.Results[0].Path)
		assert.Equal(t, "alpha", output.Results[0].Content)
		assert.Equal(t, b, output.Results[1].Path)
		assert.Equal(t, "bravo", output.Results[1].Content)
	})

	t.Run("item failure fills its slot without failing the batch", func(t *testing.T) {
		good := writeTemp(t, "good.txt", "fine")
		bad := filepath.Join(t.TempDir(), "absent.txt")

		input := BatchExtractInput{Paths: []string{good, bad}}
		_, output, err := server.handleBatchExtract(ctx, nil, input)

		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, "fine", output.Results[0].Content)
		assert.Empty(t, output.Results[0].Error)
		assert.NotEmpty(t, output.Results[1].Error)
	})
}

func TestServer_handleDetectMIME(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("detects by content and extension", func(t *testing.T) {
		path := writeTemp(t, "page.html", "<!DOCTYPE html><html><body>hi</body></html>")

		input := DetectMIMEInput{Path: path}
		_, output, err := server.handleDetectMIME(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "text/html", output.MIMEType)
		assert.Contains(t, output.Extensions, ".html")
	})

	t.Run("missing file returns error", func(t *testing.T) {
		input := DetectMIMEInput{Path: filepath.Join(t.TempDir(), "nope.bin")}
		_, _, err := server.handleDetectMIME(ctx, nil, input)
		require.Error(t, err)
	})
}

func TestServer_handleListPlugins(t *testing.T) {
	server := newTestServer(t)

	_, output, err := server.handleListPlugins(context.Background(), nil, struct{}{})

	require.NoError(t, err)
	assert.Empty(t, output.OCRBackends)
	assert.Empty(t, output.Validators)
}

func TestNewServer(t *testing.T) {
	t.Run("nil extraction service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Detector: mimetype.NewDetector()})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingExtractionService)
	})

	t.Run("nil detector returns error", func(t *testing.T) {
		svc := services.NewExtraction(plugins.New(), extractors.Defaults(), mimetype.NewDetector(), nil)
		server, err := NewServer(&Ports{Extraction: svc})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDetector)
	})
}
