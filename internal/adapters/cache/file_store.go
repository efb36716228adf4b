// Package cache provides the folder address cache backends: one JSON file
// per folder (the default), a local SQLite database, and an in-memory
// store for tests.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

// FileStore keeps one JSON record per folder under a cache directory.
// Unreadable or unparsable files are treated as misses, never as errors.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore creates a FileStore, creating the cache directory if
// needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Get returns the cached entry for a folder, if present and readable.
func (s *FileStore) Get(folder string) (*core.FolderCacheEntry, bool) {
	data, err := os.ReadFile(s.path(folder))
	if err != nil {
		return nil, false
	}
	var entry core.FolderCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("corrupt cache file, treating as miss",
			zap.String("folder", folder), zap.Error(err))
		return nil, false
	}
	if entry.Folder != folder {
		return nil, false
	}
	return &entry, true
}

// Put replaces the folder's entry wholesale. The write is a single rename
// so a terminated run never leaves a half-written file behind.
func (s *FileStore) Put(entry *core.FolderCacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	path := s.path(entry.Folder)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// RefreshFingerprint rewrites only the stored fingerprint of an existing
// entry. A missing entry is a no-op.
func (s *FileStore) RefreshFingerprint(folder string, fp core.Fingerprint) error {
	entry, ok := s.Get(folder)
	if !ok {
		return nil
	}
	entry.Fingerprint = fp
	return s.Put(entry)
}

// path derives a stable file name from the folder name. Folder names may
// contain separators or other characters unsafe in file names, so the
// name is hashed.
func (s *FileStore) path(folder string) string {
	sum := sha1.Sum([]byte(folder))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}
