// Package tesseract shells out to the tesseract binary for image OCR.
// The binary is probed at registration time; a missing install surfaces
// as a missing dependency, not a crash mid-pipeline.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/logger"
)

// Name is the registry name of this backend and the default OCR backend
// of the engine.
const Name = "tesseract"

// execRunner runs commands through os/exec.
type execRunner struct{}

// NewRunner returns a CommandRunner backed by os/exec.
func NewRunner() driven.CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Backend implements driven.OCRBackend on top of the tesseract CLI.
type Backend struct {
	runner driven.CommandRunner
	binary string

	mu        sync.Mutex
	version   string
	languages map[string]struct{}
}

var _ driven.OCRBackend = (*Backend)(nil)

// New creates a backend using the given runner. A nil runner falls back
// to os/exec.
func New(runner driven.CommandRunner) *Backend {
	if runner == nil {
		runner = NewRunner()
	}
	return &Backend{runner: runner, binary: "tesseract", version: "unknown"}
}

func (b *Backend) Name() string { return Name }

func (b *Backend) Version() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Init probes the binary and caches its version and installed languages.
func (b *Backend) Init() error {
	stdout, _, err := b.runner.Run(context.Background(), b.binary, "--version")
	if err != nil {
		return fmt.Errorf("tesseract binary not available: %w: %v", domain.ErrMissingDependency, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if line, _, _ := strings.Cut(string(stdout), "\n"); line != "" {
		b.version = strings.TrimSpace(strings.TrimPrefix(line, "tesseract "))
	}

	// --list-langs failing is not fatal, SupportsLanguage just stops
	// filtering.
	if langsOut, _, err := b.runner.Run(context.Background(), b.binary, "--list-langs"); err == nil {
		b.languages = parseLanguageList(string(langsOut))
	} else {
		logger.Debug("tesseract --list-langs failed: %v", err)
	}
	return nil
}

func (b *Backend) Close() error { return nil }

// SupportsLanguage checks the language against the installed traineddata
// list. Without a list every language is accepted and tesseract itself
// reports the failure.
func (b *Backend) SupportsLanguage(language string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.languages) == 0 {
		return true
	}
	_, ok := b.languages[language]
	return ok
}

// ProcessImage writes the image to a scratch file and runs tesseract
// over it, returning the recognised text.
func (b *Backend) ProcessImage(ctx context.Context, image []byte, language string) (*domain.ExtractionResult, error) {
	if len(image) == 0 {
		return nil, domain.NewExtractError(domain.KindOCR, "ocr", Name, "empty image payload")
	}
	if language == "" {
		language = "eng"
	}

	tmp, err := os.CreateTemp("", "extrakt-ocr-*.img")
	if err != nil {
		return nil, fmt.Errorf("creating scratch file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing scratch file: %w", err)
	}

	stdout, stderr, err := b.runner.Run(ctx, b.binary, tmp.Name(), "stdout", "-l", language)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return nil, domain.NewExtractError(domain.KindOCR, "ocr", Name, msg)
	}

	result := &domain.ExtractionResult{
		Content:  strings.TrimSpace(string(stdout)),
		MIMEType: "text/plain",
	}
	result.SetMetadata("ocr_backend", Name)
	result.SetMetadata("ocr_language", language)
	return result, nil
}

// parseLanguageList reads the output of --list-langs, which starts with
// a banner line before the language codes.
func parseLanguageList(out string) map[string]struct{} {
	langs := make(map[string]struct{})
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, " ") {
			continue
		}
		langs[line] = struct{}{}
	}
	if len(langs) == 0 {
		return nil
	}
	return langs
}
