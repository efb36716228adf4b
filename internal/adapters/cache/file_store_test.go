package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

func testEntry() *core.FolderCacheEntry {
	return &core.FolderCacheEntry{
		Folder:      "INBOX/Shopping",
		Addresses:   []string{"deals@shop.com", "orders@shop.com"},
		Fingerprint: core.Fingerprint{MessageCount: 42, NextUID: 101, UIDValidity: 7},
		CachedAt:    time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	entry := testEntry()
	require.NoError(t, store.Put(entry))

	got, ok := store.Get("INBOX/Shopping")
	require.True(t, ok)
	assert.Equal(t, entry.Addresses, got.Addresses)
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.True(t, entry.CachedAt.Equal(got.CachedAt))
}

func TestFileStoreMissingEntry(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	_, ok := store.Get("Nope")
	assert.False(t, ok)
}

func TestFileStoreCorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	entry := testEntry()
	require.NoError(t, store.Put(entry))

	// Corrupt the file on disk.
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("garbage"), 0o600))

	_, ok := store.Get("INBOX/Shopping")
	assert.False(t, ok)
}

func TestFileStoreRefreshFingerprint(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	entry := testEntry()
	require.NoError(t, store.Put(entry))

	next := core.Fingerprint{MessageCount: 43, NextUID: 102, UIDValidity: 7}
	require.NoError(t, store.RefreshFingerprint("INBOX/Shopping", next))

	got, ok := store.Get("INBOX/Shopping")
	require.True(t, ok)
	assert.Equal(t, next, got.Fingerprint)
	// The address list itself is not rescanned on a fingerprint refresh.
	assert.Equal(t, entry.Addresses, got.Addresses)

	// Refreshing a folder without an entry is a no-op.
	assert.NoError(t, store.RefreshFingerprint("Nope", next))
}

func TestFileStoreReplacesWholesale(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, store.Put(testEntry()))

	replacement := testEntry()
	replacement.Addresses = []string{"new@shop.com"}
	replacement.Fingerprint.MessageCount = 1
	require.NoError(t, store.Put(replacement))

	got, ok := store.Get("INBOX/Shopping")
	require.True(t, ok)
	assert.Equal(t, []string{"new@shop.com"}, got.Addresses)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	entry := testEntry()
	require.NoError(t, store.Put(entry))

	got, ok := store.Get("INBOX/Shopping")
	require.True(t, ok)
	assert.Equal(t, entry.Addresses, got.Addresses)

	next := core.Fingerprint{MessageCount: 1, NextUID: 2, UIDValidity: 3}
	require.NoError(t, store.RefreshFingerprint("INBOX/Shopping", next))
	got, _ = store.Get("INBOX/Shopping")
	assert.Equal(t, next, got.Fingerprint)

	_, ok = store.Get("Nope")
	assert.False(t, ok)
}
