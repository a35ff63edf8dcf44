// Package sqlite persists extraction results keyed by content digest so
// repeated extractions of unchanged inputs are served from disk.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/extrakt/internal/cache/sqlite/migrations"
	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
)

// Store is a SQLite-backed result cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.ResultCache = (*Store)(nil)

// NewStore creates a cache at the specified data directory.
// If dataDir is empty, defaults to ~/.extrakt/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".extrakt", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached result for key, or (nil, nil) on a miss.
// Hits bump the access timestamp.
func (s *Store) Get(ctx context.Context, key string) (*domain.ExtractionResult, error) {
	var raw string
	row := s.db.QueryRowContext(ctx, "SELECT result FROM extraction_cache WHERE cache_key = ?", key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// A corrupt row behaves like a miss and is removed.
		_, _ = s.db.ExecContext(ctx, "DELETE FROM extraction_cache WHERE cache_key = ?", key)
		return nil, nil
	}

	_, _ = s.db.ExecContext(ctx,
		"UPDATE extraction_cache SET accessed_at = CURRENT_TIMESTAMP WHERE cache_key = ?", key)

	return &result, nil
}

// Put stores a result under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, result *domain.ExtractionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extraction_cache (cache_key, result)
		VALUES (?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			result = excluded.result,
			accessed_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("storing result: %w", err)
	}
	return nil
}

// Clear removes every cached entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM extraction_cache"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
