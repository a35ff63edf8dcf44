// Package app assembles the extraction engine: configuration, cache,
// plugin registry and services, ready for the CLI or the MCP server.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/extrakt/internal/cache/sqlite"
	"github.com/custodia-labs/extrakt/internal/config"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/core/services"
	"github.com/custodia-labs/extrakt/internal/extractors"
	"github.com/custodia-labs/extrakt/internal/logger"
	"github.com/custodia-labs/extrakt/internal/mimetype"
	"github.com/custodia-labs/extrakt/internal/ocr/tesseract"
	"github.com/custodia-labs/extrakt/internal/plugins"
	"github.com/custodia-labs/extrakt/internal/plugins/bridge"
)

// App holds the assembled engine.
type App struct {
	Config     *config.File
	Registry   *plugins.Registry
	Detector   *mimetype.Detector
	Extraction *services.Extraction

	cache *sqlite.Store
}

// New loads the configuration from configPath (empty means discover) and
// wires the engine. Optional pieces degrade gracefully: a missing
// tesseract binary skips OCR registration, a cache that cannot open
// disables caching.
func New(configPath string) (*App, error) {
	cfg, err := config.Discover(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &App{
		Config:   cfg,
		Registry: plugins.New(),
		Detector: mimetype.NewDetector(),
	}

	var cache driven.ResultCache
	if store, err := sqlite.NewStore(cacheDir(cfg)); err != nil {
		logger.Warn("result cache disabled: %v", err)
	} else {
		a.cache = store
		cache = store
	}

	if err := a.Registry.RegisterOCRBackend(tesseract.New(tesseract.NewRunner()), driven.ConcurrentSafe); err != nil {
		logger.Warn("tesseract unavailable: %v", err)
	}

	if err := a.registerManifests(cfg.Plugins); err != nil {
		a.Close()
		return nil, err
	}

	a.Extraction = services.NewExtraction(a.Registry, extractors.Defaults(), a.Detector, cache)
	return a, nil
}

// registerManifests builds and registers the command plugins declared in
// the config file. A command plugin owns a single child process, so every
// invocation is serialised.
func (a *App) registerManifests(manifests []bridge.Manifest) error {
	for _, m := range manifests {
		plugin, err := m.Build()
		if err != nil {
			return fmt.Errorf("plugin %q: %w", m.Name, err)
		}

		switch p := plugin.(type) {
		case driven.OCRBackend:
			err = a.Registry.RegisterOCRBackend(p, driven.ExclusiveAccess)
		case driven.PostProcessor:
			err = a.Registry.RegisterPostProcessor(p, driven.ExclusiveAccess)
		case driven.Validator:
			err = a.Registry.RegisterValidator(p, m.Priority, driven.ExclusiveAccess)
		case driven.DocumentExtractor:
			err = a.Registry.RegisterDocumentExtractor(p, driven.ExclusiveAccess)
		default:
			err = fmt.Errorf("manifest %q built unknown plugin type", m.Name)
		}
		if err != nil {
			return fmt.Errorf("registering plugin %q: %w", m.Name, err)
		}
	}
	return nil
}

// Close releases the cache and every registered plugin.
func (a *App) Close() {
	a.Registry.ClearOCRBackends()
	a.Registry.ClearPostProcessors()
	a.Registry.ClearValidators()
	a.Registry.ClearDocumentExtractors()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn("closing cache: %v", err)
		}
	}
}

func cacheDir(cfg *config.File) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "extrakt")
	}
	return ".extrakt-cache"
}
