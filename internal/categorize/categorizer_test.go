package categorize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

func snapshot(name string, count uint32, senders ...string) core.FolderSnapshot {
	domainSet := map[string]struct{}{}
	for _, s := range senders {
		for i := len(s) - 1; i >= 0; i-- {
			if s[i] == '@' {
				domainSet[s[i+1:]] = struct{}{}
				break
			}
		}
	}
	domains := make([]string, 0, len(domainSet))
	for d := range domainSet {
		domains = append(domains, d)
	}
	return core.FolderSnapshot{Name: name, MessageCount: count, Senders: senders, Domains: domains}
}

func manySenders(domain string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("sender%d@%s", i, domain)
	}
	return out
}

func TestCategorizeNameAndSizeRules(t *testing.T) {
	tests := []struct {
		name string
		s    core.FolderSnapshot
		want core.Category
	}{
		{"below minimum size", snapshot("Receipts", 4, "a@x.com"), core.CategorySkip},
		{"empty folder", snapshot("Receipts", 0), core.CategorySkip},
		{"sent folder", snapshot("Sent", 100, manySenders("x.com", 10)...), core.CategorySkip},
		{"sent items folder", snapshot("Sent Items", 100, manySenders("x.com", 10)...), core.CategorySkip},
		{"trash folder", snapshot("Trash", 50, "a@x.com"), core.CategorySkip},
		{"archive subfolder", snapshot("INBOX/Archive", 50, "a@x.com"), core.CategorySkip},
		{"newsletter name", snapshot("Newsletters", 10, "a@x.com", "b@y.com", "c@z.com"), core.CategoryList},
		{"brand name", snapshot("Amazon", 20, "a@x.com"), core.CategoryList},
		{"notification name", snapshot("Dev Notifications", 20, "a@x.com"), core.CategoryList},
		{"family name", snapshot("Family", 30, "a@x.com"), core.CategoryWhitelist},
		{"work subfolder", snapshot("Work/Clients", 30, "a@x.com"), core.CategoryWhitelist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil, zap.NewNop())
			got, reason := c.Categorize(tt.s)
			assert.Equal(t, tt.want, got, "reason: %s", reason)
		})
	}
}

func TestCategorizeNamePatternBeatsSenderFallback(t *testing.T) {
	// 60 messages all under one domain would also satisfy the sender
	// fallback, but the name rule must fire first.
	c := New(nil, zap.NewNop())
	got, reason := c.Categorize(snapshot("Newsletters", 60, manySenders("company.com", 12)...))
	assert.Equal(t, core.CategoryList, got)
	assert.Equal(t, "list-indicating folder name", reason)
}

func TestCategorizeBulkHeaderSampling(t *testing.T) {
	bulk := "From: news@x.com\r\nList-Unsubscribe: <mailto:u@x.com>\r\n\r\n"
	plain := "From: bob@x.com\r\nSubject: lunch\r\n\r\n"

	tests := []struct {
		name    string
		headers []string
		want    core.Category
	}{
		{
			name:    "over threshold",
			headers: []string{bulk, bulk, bulk, plain, plain, plain, plain},
			want:    core.CategoryList,
		},
		{
			name:    "under threshold",
			headers: []string{bulk, plain, plain, plain, plain, plain, plain},
			want:    core.CategorySkip,
		},
		{
			name:    "sampling failure degrades to no signal",
			headers: nil,
			want:    core.CategorySkip,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := func(folder string, limit int) []string { return tt.headers }
			c := New(sampler, zap.NewNop())
			// A neutral name so only the content rule can classify it.
			got, _ := c.Categorize(snapshot("Stuff", 10, "a@x.com", "b@y.com", "c@z.com"))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategorizeSenderDistributionFallback(t *testing.T) {
	tests := []struct {
		name string
		s    core.FolderSnapshot
		want core.Category
	}{
		{"no known senders", snapshot("Stuff", 10), core.CategorySkip},
		{"few domains many messages", snapshot("Stuff", 60, manySenders("one.com", 8)...), core.CategoryList},
		{
			"firstname.lastname senders",
			snapshot("Stuff", 30, "jane.doe@a.com", "john.smith@b.com", "erik.larsson@c.com", "noreply@d.com"),
			core.CategoryWhitelist,
		},
		{
			"large mixed folder",
			snapshot("Stuff", 150,
				"noreply@a.com", "info@b.com", "hello@c.com", "contact@d.com"),
			core.CategoryList,
		},
		{
			"small mixed folder",
			snapshot("Stuff", 30, "noreply@a.com", "info@b.com", "hello@c.com"),
			core.CategorySkip,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil, zap.NewNop())
			got, reason := c.Categorize(tt.s)
			assert.Equal(t, tt.want, got, "reason: %s", reason)
		})
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	c := New(nil, zap.NewNop())
	s := snapshot("Stuff", 150, "noreply@a.com", "info@b.com")
	cat1, reason1 := c.Categorize(s)
	for i := 0; i < 5; i++ {
		cat2, reason2 := c.Categorize(s)
		assert.Equal(t, cat1, cat2)
		assert.Equal(t, reason1, reason2)
	}
}
