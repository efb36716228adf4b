package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchDomainPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		domain  string
		want    bool
	}{
		{"exact match", "example.com", "example.com", true},
		{"exact mismatch", "example.com", "other.com", false},
		{"wildcard one label", "*.x.com", "a.x.com", true},
		{"wildcard bare domain", "*.x.com", "x.com", false},
		{"wildcard two labels", "*.x.com", "a.b.x.com", false},
		{"wildcard empty label", "*.x.com", ".x.com", false},
		{"wildcard different suffix", "*.x.com", "a.y.com", false},
		{"wildcard deeper suffix", "*.sub.x.com", "a.sub.x.com", true},
		{"wildcard deeper suffix bare", "*.sub.x.com", "sub.x.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchDomainPattern(tt.pattern, tt.domain))
		})
	}
}

func TestFolderMapSetIfAbsent(t *testing.T) {
	fm := NewFolderMap()

	assert.True(t, fm.SetIfAbsent("news@example.com", "Newsletters"))
	// An entry from an earlier, higher-priority folder is never
	// overwritten.
	assert.False(t, fm.SetIfAbsent("news@example.com", "Misc"))

	folder, ok := fm.Get("news@example.com")
	assert.True(t, ok)
	assert.Equal(t, "Newsletters", folder)
	assert.Equal(t, 1, fm.Len())
}

func TestFolderMapMatchWildcard(t *testing.T) {
	fm := NewFolderMap()
	fm.SetIfAbsent("*.example.com", "First")
	fm.SetIfAbsent("*.mail.example.com", "Second")

	folder, ok := fm.MatchWildcard("news.example.com")
	assert.True(t, ok)
	assert.Equal(t, "First", folder)

	// Insertion order decides when several patterns could match.
	folder, ok = fm.MatchWildcard("a.mail.example.com")
	assert.True(t, ok)
	assert.Equal(t, "Second", folder)

	_, ok = fm.MatchWildcard("example.com")
	assert.False(t, ok)
}

func TestFolderMapKeysOrdered(t *testing.T) {
	fm := NewFolderMap()
	fm.SetIfAbsent("c", "1")
	fm.SetIfAbsent("a", "2")
	fm.SetIfAbsent("b", "3")
	fm.SetIfAbsent("a", "4")

	assert.Equal(t, []string{"c", "a", "b"}, fm.Keys())
}
