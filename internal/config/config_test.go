package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Extraction.UseCache)
	assert.Empty(t, cfg.Plugins)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrakt.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache_dir = "/tmp/extrakt-cache"

[extraction]
use_cache = false
force_ocr = true

[extraction.ocr]
backend = "tesseract"
language = "deu"

[extraction.chunking]
max_chars = 500
max_overlap = 50

[[plugins]]
name = "ruby-frontmatter"
category = "post-processor"
command = "/usr/local/bin/frontmatter-plugin"
stage = "early"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/extrakt-cache", cfg.CacheDir)
	assert.False(t, cfg.Extraction.UseCache)
	assert.True(t, cfg.Extraction.ForceOCR)
	require.NotNil(t, cfg.Extraction.OCR)
	assert.Equal(t, "deu", cfg.Extraction.OCR.Language)
	require.NotNil(t, cfg.Extraction.Chunking)
	assert.Equal(t, 500, cfg.Extraction.Chunking.MaxChars)

	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, "ruby-frontmatter", cfg.Plugins[0].Name)
	assert.Equal(t, "post-processor", cfg.Plugins[0].Category)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDiscoverExplicitPathWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[extraction]\nforce_ocr = true\n"), 0o644))

	cfg, err := Discover(path)
	require.NoError(t, err)
	assert.True(t, cfg.Extraction.ForceOCR)
}

func TestDiscoverMissingExplicitPath(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestDiscoverFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Discover("")
	require.NoError(t, err)
	assert.True(t, cfg.Extraction.UseCache)
}

func TestParseJSON(t *testing.T) {
	cfg, err := ParseJSON([]byte(`{
		"use_cache": false,
		"force_ocr": true,
		"ocr": {"backend": "tesseract", "language": "eng"},
		"token_reduction": {"mode": "moderate"}
	}`))
	require.NoError(t, err)

	assert.False(t, cfg.UseCache)
	assert.True(t, cfg.ForceOCR)
	assert.Equal(t, "tesseract", cfg.OCRBackendName())
	assert.Equal(t, "moderate", cfg.TokenReduction.Mode)
}

func TestParseJSONRejectsUnknownKeys(t *testing.T) {
	_, err := ParseJSON([]byte(`{"use_cach": true}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseJSONRejectsWrongTypes(t *testing.T) {
	_, err := ParseJSON([]byte(`{"chunking": {"max_chars": "lots"}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ParseJSON([]byte(`{"token_reduction": {"mode": "extreme"}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseJSONMalformed(t *testing.T) {
	_, err := ParseJSON([]byte(`{"use_cache": `))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
