// Package categorize buckets mailbox folders into whitelist, list or skip
// so the sorter knows which folders to learn sender and domain mappings
// from.
package categorize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

const (
	// minFolderMessages is the floor below which a folder carries too
	// little signal to learn from.
	minFolderMessages = 5
	// headerSampleSize caps how many recent messages are sniffed for bulk
	// headers.
	headerSampleSize = 20
	// bulkSampleRatio is the fraction of sampled messages that must carry
	// a bulk signal for the folder to count as list mail.
	bulkSampleRatio = 0.30
	// firstLastRatio is the fraction of "firstname.lastname" local parts
	// that marks a folder as personal correspondence.
	firstLastRatio = 0.30
)

// HeaderSampler returns the raw header blocks of up to limit most-recent
// messages in a folder, degrading to nil on any failure.
type HeaderSampler func(folder string, limit int) []string

// Categorizer classifies one folder snapshot. Classification is
// deterministic for identical inputs.
type Categorizer struct {
	sample HeaderSampler
	logger *zap.Logger
	rules  []rule
}

type rule struct {
	name  string
	apply func(c *Categorizer, s core.FolderSnapshot) (core.Category, string, bool)
}

// New creates a Categorizer. The sampler may be nil, in which case content
// sniffing is skipped.
func New(sample HeaderSampler, logger *zap.Logger) *Categorizer {
	c := &Categorizer{sample: sample, logger: logger}
	// First match wins.
	c.rules = []rule{
		{"too-small", (*Categorizer).tooSmall},
		{"system-name", (*Categorizer).systemName},
		{"bulk-headers", (*Categorizer).bulkHeaders},
		{"list-name", (*Categorizer).listName},
		{"personal-name", (*Categorizer).personalName},
		{"sender-distribution", (*Categorizer).senderDistribution},
	}
	return c
}

// Categorize returns the folder's category and a short reason.
func (c *Categorizer) Categorize(s core.FolderSnapshot) (core.Category, string) {
	for _, r := range c.rules {
		if category, reason, ok := r.apply(c, s); ok {
			return category, reason
		}
	}
	return core.CategorySkip, "no rule matched"
}

func (c *Categorizer) tooSmall(s core.FolderSnapshot) (core.Category, string, bool) {
	if s.MessageCount < minFolderMessages {
		return core.CategorySkip, fmt.Sprintf("only %d messages", s.MessageCount), true
	}
	return "", "", false
}

func (c *Categorizer) systemName(s core.FolderSnapshot) (core.Category, string, bool) {
	if systemFolderPattern.MatchString(s.Name) {
		return core.CategorySkip, "system folder name", true
	}
	return "", "", false
}

// bulkHeaders samples recent messages and counts bulk-mail header signals.
// Sampling failures degrade silently to "no signal found".
func (c *Categorizer) bulkHeaders(s core.FolderSnapshot) (core.Category, string, bool) {
	if c.sample == nil {
		return "", "", false
	}
	headers := c.sample(s.Name, headerSampleSize)
	if len(headers) == 0 {
		return "", "", false
	}
	hits := 0
	for _, raw := range headers {
		lower := strings.ToLower(raw)
		for _, marker := range bulkHeaderMarkers {
			if strings.Contains(lower, marker) {
				hits++
				break
			}
		}
	}
	if float64(hits) > bulkSampleRatio*float64(len(headers)) {
		return core.CategoryList, fmt.Sprintf("%d of %d sampled messages carry bulk headers", hits, len(headers)), true
	}
	return "", "", false
}

func (c *Categorizer) listName(s core.FolderSnapshot) (core.Category, string, bool) {
	if listFolderPattern.MatchString(s.Name) {
		return core.CategoryList, "list-indicating folder name", true
	}
	return "", "", false
}

func (c *Categorizer) personalName(s core.FolderSnapshot) (core.Category, string, bool) {
	if personalFolderPattern.MatchString(s.Name) {
		return core.CategoryWhitelist, "personal folder name", true
	}
	return "", "", false
}

// senderDistribution is the fallback when no name or content rule fired.
func (c *Categorizer) senderDistribution(s core.FolderSnapshot) (core.Category, string, bool) {
	if len(s.Senders) == 0 {
		return core.CategorySkip, "no known senders", true
	}
	if len(s.Domains) <= 2 && s.MessageCount > 50 {
		return core.CategoryList, fmt.Sprintf("%d messages from %d domains", s.MessageCount, len(s.Domains)), true
	}
	firstLast := 0
	for _, addr := range s.Senders {
		local := addr
		if at := strings.Index(addr, "@"); at >= 0 {
			local = addr[:at]
		}
		if firstLastPattern.MatchString(local) {
			firstLast++
		}
	}
	if float64(firstLast) > firstLastRatio*float64(len(s.Senders)) {
		return core.CategoryWhitelist, "mostly firstname.lastname senders", true
	}
	if s.MessageCount > 100 {
		return core.CategoryList, fmt.Sprintf("%d messages, mixed senders", s.MessageCount), true
	}
	return core.CategorySkip, "inconclusive sender distribution", true
}
