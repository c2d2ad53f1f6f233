// Package buildcache memoizes compile outcomes in a sqlite database.
//
// The cache key is (source path, content hash): editing a file invalidates
// its entry naturally, and a moved file compiles fresh. Only the compile
// command consults the cache; check always runs the full pipeline.
package buildcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id          TEXT NOT NULL,
	path        TEXT NOT NULL,
	source_hash TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	diagnostics TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (path, source_hash)
);`

// Cache is a sqlite-backed memo of compilations.
type Cache struct {
	db *sql.DB
}

// Entry is one recorded compilation outcome.
type Entry struct {
	ID          string
	Path        string
	SourceHash  string
	CreatedAt   time.Time
	Success     bool
	Diagnostics string
}

// Open opens the cache database at path, creating the file and its parent
// directory as needed. A file that is not a valid database is an error;
// callers are expected to fall back to uncached compilation.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache %s: %w", path, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the recorded outcome for (path, sourceHash), or nil when
// none exists. An error means the cache itself misbehaved; treating that as
// a miss is always safe.
func (c *Cache) Lookup(path, sourceHash string) (*Entry, error) {
	row := c.db.QueryRow(
		`SELECT id, path, source_hash, created_at, success, diagnostics
		 FROM builds WHERE path = ? AND source_hash = ?`,
		path, sourceHash,
	)
	var e Entry
	var createdAt int64
	var success int
	err := row.Scan(&e.ID, &e.Path, &e.SourceHash, &createdAt, &success, &e.Diagnostics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	e.CreatedAt = time.Unix(createdAt, 0)
	e.Success = success != 0
	return &e, nil
}

// Store records a compilation outcome under a fresh build id, replacing any
// previous entry for the same (path, sourceHash).
func (c *Cache) Store(path, sourceHash string, success bool, diagnostics string) (string, error) {
	id := uuid.New().String()
	successInt := 0
	if success {
		successInt = 1
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO builds (id, path, source_hash, created_at, success, diagnostics)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, path, sourceHash, time.Now().Unix(), successInt, diagnostics,
	)
	if err != nil {
		return "", fmt.Errorf("cache store: %w", err)
	}
	return id, nil
}

// HashSource returns the content hash used as the cache key.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
