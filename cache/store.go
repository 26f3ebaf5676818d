// Package cache persists optimized expression graphs by content hash, so a
// caller can name and recall a shape without resubmitting its full graph.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Irvise/libfive/tree"
)

// ErrShapeNotFound indicates the requested content hash isn't in the store.
var ErrShapeNotFound = errors.New("cache: shape not found")

// Store is a SQLite-backed content-addressed cache of serialized shapes.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) a shape cache at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS shapes (
		hash TEXT PRIMARY KEY,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the cache at $LIBFIVE_CACHE_DB, or ~/.libfive/shapes.db
// if unset.
func OpenDefault() (*Store, error) {
	dbPath := os.Getenv("LIBFIVE_CACHE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cache: resolving home dir: %w", err)
		}
		dbPath = filepath.Join(home, ".libfive", "shapes.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("cache: creating cache dir: %w", err)
		}
	}
	return Open(dbPath)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ShapeHash canonicalizes h (flatten, unique, collect_affine, in that order —
// see tree.Optimized) and returns the SHA-256 hash of its serialized form, so
// structurally-equivalent graphs collide regardless of how they were built.
func ShapeHash(h tree.Handle) string {
	optimized := tree.Optimized(h)
	defer optimized.Drop()
	sum := sha256.Sum256(tree.Serialize(optimized))
	return hex.EncodeToString(sum[:])
}

// Put stores h under its shape hash and returns the hash.
func (s *Store) Put(h tree.Handle) (string, error) {
	hash := ShapeHash(h)
	data := tree.Serialize(h)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO shapes (hash, data) VALUES (?, ?)",
		hash, data,
	)
	if err != nil {
		return "", fmt.Errorf("cache: saving shape %s: %w", hash, err)
	}
	return hash, nil
}

// Get retrieves and deserializes the shape stored under hash.
func (s *Store) Get(hash string) (tree.Handle, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM shapes WHERE hash = ?", hash).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tree.Handle{}, ErrShapeNotFound
		}
		return tree.Handle{}, fmt.Errorf("cache: querying shape %s: %w", hash, err)
	}

	h, err := tree.Deserialize(data)
	if err != nil {
		return tree.Handle{}, fmt.Errorf("cache: decoding shape %s: %w", hash, err)
	}
	return h, nil
}

// Delete removes the shape stored under hash.
func (s *Store) Delete(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM shapes WHERE hash = ?", hash)
	if err != nil {
		return fmt.Errorf("cache: deleting shape %s: %w", hash, err)
	}
	return nil
}

// List returns the content hashes of every shape currently stored.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query("SELECT hash FROM shapes")
	if err != nil {
		return nil, fmt.Errorf("cache: listing shapes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("cache: scanning hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}
