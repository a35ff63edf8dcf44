// Package watch re-extracts documents when they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
	"github.com/custodia-labs/extrakt/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// re-extracted. Editors tend to fire several events per save.
const DefaultDebounce = 300 * time.Millisecond

// DefaultMinInterval caps how often flushes may run.
const DefaultMinInterval = time.Second

// Handler receives the outcome of each re-extraction.
type Handler func(path string, result *domain.ExtractionResult, err error)

// Watcher tails files and directories and re-runs extraction on change.
type Watcher struct {
	service  driving.ExtractionService
	cfg      *domain.ExtractionConfig
	handler  Handler
	debounce time.Duration
	limiter  *rate.Limiter
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMinInterval overrides the minimum time between flushes.
func WithMinInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// New creates a watcher delivering outcomes to handler.
func New(service driving.ExtractionService, cfg *domain.ExtractionConfig, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		service:  service,
		cfg:      cfg,
		handler:  handler,
		debounce: DefaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks until ctx is cancelled, re-extracting the given paths as
// they change. Directory paths watch every file directly inside them.
func (w *Watcher) Watch(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("nothing to watch: %w", domain.ErrInvalidInput)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Watching the parent directory catches atomic-rename saves, which
	// replace the inode a direct file watch is bound to.
	files := make(map[string]bool)
	userDirs := make(map[string]bool)
	watchDirs := make(map[string]bool)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		clean := filepath.Clean(p)
		if info.IsDir() {
			userDirs[clean] = true
			watchDirs[clean] = true
		} else {
			files[clean] = true
			watchDirs[filepath.Dir(clean)] = true
		}
	}
	for d := range watchDirs {
		if err := fsw.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}

	logger.Info("watching %d path(s)", len(paths))

	pending := make(map[string]bool)
	var flushAt <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(event.Name)
			if !interested(name, files, userDirs) {
				continue
			}
			pending[name] = true
			flushAt = time.After(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-flushAt:
			flushAt = nil
			if len(pending) == 0 {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return err
			}
			w.flush(ctx, pending)
			pending = make(map[string]bool)
		}
	}
}

// interested reports whether a changed path is one we track: an
// explicitly watched file, or any regular file inside an explicitly
// watched directory. Parent directories watched only on behalf of a
// file never promote their other children.
func interested(name string, files, userDirs map[string]bool) bool {
	if files[name] {
		return true
	}
	if !userDirs[filepath.Dir(name)] {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}

func (w *Watcher) flush(ctx context.Context, pending map[string]bool) {
	changed := make([]string, 0, len(pending))
	for p := range pending {
		changed = append(changed, p)
	}
	sort.Strings(changed)

	logger.Debug("re-extracting %d changed file(s)", len(changed))

	batch, err := w.service.BatchExtractFiles(ctx, changed, w.cfg)
	if err != nil {
		for _, p := range changed {
			w.handler(p, nil, err)
		}
		return
	}

	for i, result := range batch.Results {
		if result != nil && result.Error != nil {
			w.handler(changed[i], result, fmt.Errorf("%s", result.Error.String()))
			continue
		}
		w.handler(changed[i], result, nil)
	}
}
