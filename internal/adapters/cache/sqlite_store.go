package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

// SQLiteStore keeps folder cache entries in a local SQLite database, one
// row per folder. It holds the same records as the file store for setups
// that prefer a single cache file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if needed initializes) the cache database.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS folder_cache (
			folder TEXT PRIMARY KEY,
			addresses TEXT NOT NULL,
			message_count INTEGER NOT NULL,
			next_uid INTEGER NOT NULL,
			uid_validity INTEGER NOT NULL,
			cached_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get returns the cached entry for a folder. Unreadable rows are misses.
func (s *SQLiteStore) Get(folder string) (*core.FolderCacheEntry, bool) {
	var (
		addressesJSON string
		fp            core.Fingerprint
		cachedAt      string
	)
	err := s.db.QueryRow(`
		SELECT addresses, message_count, next_uid, uid_validity, cached_at
		FROM folder_cache
		WHERE folder = ?
	`, folder).Scan(&addressesJSON, &fp.MessageCount, &fp.NextUID, &fp.UIDValidity, &cachedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn("cache query failed, treating as miss",
				zap.String("folder", folder), zap.Error(err))
		}
		return nil, false
	}

	var addresses []string
	if err := json.Unmarshal([]byte(addressesJSON), &addresses); err != nil {
		s.logger.Warn("corrupt cache row, treating as miss",
			zap.String("folder", folder), zap.Error(err))
		return nil, false
	}
	when, err := time.Parse(time.RFC3339, cachedAt)
	if err != nil {
		when = time.Time{}
	}

	return &core.FolderCacheEntry{
		Folder:      folder,
		Addresses:   addresses,
		Fingerprint: fp,
		CachedAt:    when,
	}, true
}

// Put replaces the folder's row wholesale.
func (s *SQLiteStore) Put(entry *core.FolderCacheEntry) error {
	addressesJSON, err := json.Marshal(entry.Addresses)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO folder_cache
			(folder, addresses, message_count, next_uid, uid_validity, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Folder, string(addressesJSON),
		entry.Fingerprint.MessageCount, entry.Fingerprint.NextUID, entry.Fingerprint.UIDValidity,
		entry.CachedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// RefreshFingerprint rewrites only the stored fingerprint. A missing row
// is a no-op.
func (s *SQLiteStore) RefreshFingerprint(folder string, fp core.Fingerprint) error {
	_, err := s.db.Exec(`
		UPDATE folder_cache
		SET message_count = ?, next_uid = ?, uid_validity = ?
		WHERE folder = ?
	`, fp.MessageCount, fp.NextUID, fp.UIDValidity, folder)
	if err != nil {
		return fmt.Errorf("refresh fingerprint: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
