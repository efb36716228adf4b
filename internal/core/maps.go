package core

import "strings"

// FolderMap is an ordered string-to-folder mapping with insert-if-absent
// semantics: a key set while scanning an earlier, higher-priority folder is
// never overwritten by a later one.
type FolderMap struct {
	keys    []string
	entries map[string]string
}

// NewFolderMap creates an empty FolderMap.
func NewFolderMap() *FolderMap {
	return &FolderMap{entries: make(map[string]string)}
}

// SetIfAbsent records key -> folder unless key is already present. It
// reports whether the entry was inserted.
func (fm *FolderMap) SetIfAbsent(key, folder string) bool {
	if _, ok := fm.entries[key]; ok {
		return false
	}
	fm.entries[key] = folder
	fm.keys = append(fm.keys, key)
	return true
}

// Get looks up an exact key.
func (fm *FolderMap) Get(key string) (string, bool) {
	folder, ok := fm.entries[key]
	return folder, ok
}

// Len returns the number of entries.
func (fm *FolderMap) Len() int {
	return len(fm.entries)
}

// Keys returns the keys in insertion order.
func (fm *FolderMap) Keys() []string {
	out := make([]string, len(fm.keys))
	copy(out, fm.keys)
	return out
}

// MatchWildcard scans the map for a wildcard domain pattern matching
// domain, in insertion order.
func (fm *FolderMap) MatchWildcard(domain string) (string, bool) {
	for _, pattern := range fm.keys {
		if strings.HasPrefix(pattern, "*.") && MatchDomainPattern(pattern, domain) {
			return fm.entries[pattern], true
		}
	}
	return "", false
}

// MatchDomainPattern reports whether domain matches pattern. A pattern
// without a wildcard must match exactly. A "*.suffix" pattern matches
// domains with exactly one extra dot-delimited label before the suffix:
// "a.example.com" matches "*.example.com" while "example.com" and
// "a.b.example.com" do not.
func MatchDomainPattern(pattern, domain string) bool {
	if !strings.HasPrefix(pattern, "*.") {
		return pattern == domain
	}
	prefix, ok := strings.CutSuffix(domain, pattern[1:])
	if !ok {
		return false
	}
	return prefix != "" && !strings.Contains(prefix, ".")
}
