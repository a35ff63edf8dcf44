package cli

import (
	"bytes"
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

// setupTestServices wires real services backed by the builtin extractors
// and restores the previous state afterwards.
func setupTestServices() func() {
	prevExtraction := extractionService
	prevDetector := mimeDetector
	prevPlugins := pluginManager
	prevConfig := defaultConfig
	prevInit := initialize

	reg := plugins.New()
	detector := mimetype.NewDetector()

	setServices(&Services{
		Extraction: services.NewExtraction(reg, extractors.Defaults(), detector, nil),
		Detector:   detector,
		Plugins:    reg,
	})
	initialize = nil

	return func() {
		extractionService = prevExtraction
		mimeDetector = prevDetector
		pluginManager = prevPlugins
		defaultConfig = prevConfig
		initialize = prevInit
	}
}

func TestExtractCmd_Use(t *testing.T) {
	assert.Equal(t, "extract [paths...]", extractCmd.Use)
}

func TestExtractCmd_RequiresArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"extract"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestExtractCmd_SingleFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain content"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"extract", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "plain content")
}

func TestExtractCmd_BatchReportsPerFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("bravo"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"extract", a, b})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "alpha")
	assert.Contains(t, buf.String(), "bravo")
}

func TestExtractCmd_RejectsBadConfigJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"extract", "--config-json", `{"chunking": 7}`, "whatever.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
		extractConfigJSON = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestDetectCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<!DOCTYPE html><html></html>"), 0o644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"detect", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestPluginsListCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"plugins", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "OCR backends")
	assert.Contains(t, buf.String(), "Document extractors")
}

func TestVersionCmd_Executes(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "extrakt version")
}
