package extrakt

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain points the shared engine's result cache at a scratch
// directory so runs start cold and leave nothing behind.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "extrakt-cache-*")
	if err != nil {
		panic(err)
	}
	os.Setenv("XDG_CACHE_HOME", dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// tiny valid 1x1 PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func TestExtractFileAndLastError(t *testing.T) {
	path := writeTemp(t, "doc.txt", "facade content")

	result, err := ExtractFile(context.Background(), path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "facade content", result.Content)
	assert.Nil(t, LastError())

	_, err = ExtractFile(context.Background(), filepath.Join(t.TempDir(), "ghost.txt"), "", nil)
	require.Error(t, err)
	require.NotNil(t, LastError())

	// A successful call wipes the recorded failure.
	_, err = ExtractFile(context.Background(), path, "", nil)
	require.NoError(t, err)
	assert.Nil(t, LastError())
}

func TestSessionsIsolateErrors(t *testing.T) {
	a := NewSession()
	b := NewSession()
	defer a.Close()
	defer b.Close()

	good := writeTemp(t, "good.txt", "fine")

	_, err := a.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), "", nil)
	require.Error(t, err)
	_, err = b.ExtractFile(context.Background(), good, "", nil)
	require.NoError(t, err)

	assert.NotNil(t, a.LastError())
	assert.Nil(t, b.LastError())
}

func TestAsyncMatchesBlocking(t *testing.T) {
	path := writeTemp(t, "doc.txt", "same either way")

	blocking, err := ExtractFile(context.Background(), path, "", nil)
	require.NoError(t, err)

	select {
	case outcome := <-ExtractFileAsync(context.Background(), path, "", nil):
		require.NoError(t, outcome.Err)
		assert.Equal(t, blocking.Content, outcome.Result.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("async outcome never arrived")
	}
}

func TestBatchExtractFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	missing := filepath.Join(dir, "missing.txt")
	third := filepath.Join(dir, "third.txt")
	require.NoError(t, os.WriteFile(first, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(third, []byte("three"), 0o644))

	batch, err := BatchExtractFiles(context.Background(), []string{first, missing, third}, nil)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)

	assert.Equal(t, "one", batch.Results[0].Content)
	require.NotNil(t, batch.Results[1].Error)
	assert.Equal(t, "three", batch.Results[2].Content)
}

func TestRegisterOCRBackendEndToEnd(t *testing.T) {
	err := RegisterOCRBackend("echo-ocr", func(_ context.Context, _ []byte, language string) (*ExtractionResult, error) {
		return &ExtractionResult{Content: language}, nil
	})
	require.NoError(t, err)
	defer UnregisterOCRBackend("echo-ocr")

	assert.Contains(t, ListOCRBackends(), "echo-ocr")

	cfg := DefaultConfig()
	cfg.UseCache = false
	cfg.ForceOCR = true
	cfg.OCR = &OCRConfig{Backend: "echo-ocr", Language: "eng"}

	result, err := ExtractBytes(context.Background(), pngPixel, "image/png", cfg)
	require.NoError(t, err)
	assert.Equal(t, "eng", result.Content)
}

func TestRegisterDocumentExtractorBeatsBuiltin(t *testing.T) {
	err := RegisterDocumentExtractor("shouter", []string{"text/plain"}, func(_ context.Context, data []byte, _ string, _ *ExtractionConfig) (*ExtractionResult, error) {
		return &ExtractionResult{Content: "SHOUTED: " + string(data)}, nil
	})
	require.NoError(t, err)
	defer UnregisterDocumentExtractor("shouter")

	cfg := DefaultConfig()
	cfg.UseCache = false
	result, err := ExtractBytes(context.Background(), []byte("hello"), "text/plain", cfg)
	require.NoError(t, err)
	assert.Equal(t, "SHOUTED: hello", result.Content)
}

func TestResultCacheSkipsRepeatExtraction(t *testing.T) {
	var calls atomic.Int32
	err := RegisterDocumentExtractor("counting", []string{"application/x-counted"}, func(_ context.Context, data []byte, _ string, _ *ExtractionConfig) (*ExtractionResult, error) {
		calls.Add(1)
		return &ExtractionResult{Content: string(data)}, nil
	})
	require.NoError(t, err)
	defer UnregisterDocumentExtractor("counting")

	cfg := DefaultConfig()
	require.True(t, cfg.UseCache)

	for range 2 {
		result, err := ExtractBytes(context.Background(), []byte("cache me"), "application/x-counted", cfg)
		require.NoError(t, err)
		assert.Equal(t, "cache me", result.Content)
	}

	assert.Equal(t, int32(1), calls.Load(), "second call must be served from the cache")
}

func TestRegisterDuplicateNameRejected(t *testing.T) {
	require.NoError(t, RegisterValidator("dupe", 0, func(context.Context, *ExtractionResult, *ExtractionConfig) error {
		return nil
	}))
	defer UnregisterValidator("dupe")

	err := RegisterValidator("dupe", 5, func(context.Context, *ExtractionResult, *ExtractionConfig) error {
		return nil
	})
	require.Error(t, err)
}

func TestDetectMIMEType(t *testing.T) {
	path := writeTemp(t, "data.json", `{"key": "value"}`)

	mime, err := DetectMIMEType(path, true)
	require.NoError(t, err)
	assert.Equal(t, "application/json", mime)

	assert.Equal(t, "image/png", DetectMIMETypeBytes(pngPixel))
	assert.Contains(t, ExtensionsForMIME("image/png"), ".png")
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
}

func TestParseConfigJSON(t *testing.T) {
	cfg, err := ParseConfigJSON([]byte(`{"use_cache": false, "force_ocr": true, "ocr": {"backend": "echo-ocr"}}`))
	require.NoError(t, err)
	assert.False(t, cfg.UseCache)
	assert.True(t, cfg.ForceOCR)
	require.NotNil(t, cfg.OCR)
	assert.Equal(t, "echo-ocr", cfg.OCR.Backend)

	_, err = ParseConfigJSON([]byte(`{"unknown_field": 1}`))
	require.Error(t, err)
}
