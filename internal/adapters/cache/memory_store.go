package cache

import (
	"github.com/mikey/mailsort/internal/core"
)

// MemoryStore is an in-memory FolderCacheStore, used in tests and for
// runs that should not touch disk.
type MemoryStore struct {
	entries map[string]*core.FolderCacheEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*core.FolderCacheEntry)}
}

// Get returns the entry for a folder.
func (s *MemoryStore) Get(folder string) (*core.FolderCacheEntry, bool) {
	entry, ok := s.entries[folder]
	if !ok {
		return nil, false
	}
	cp := *entry
	cp.Addresses = append([]string(nil), entry.Addresses...)
	return &cp, true
}

// Put replaces the entry for entry.Folder.
func (s *MemoryStore) Put(entry *core.FolderCacheEntry) error {
	cp := *entry
	cp.Addresses = append([]string(nil), entry.Addresses...)
	s.entries[entry.Folder] = &cp
	return nil
}

// RefreshFingerprint rewrites only the stored fingerprint.
func (s *MemoryStore) RefreshFingerprint(folder string, fp core.Fingerprint) error {
	if entry, ok := s.entries[folder]; ok {
		entry.Fingerprint = fp
	}
	return nil
}
