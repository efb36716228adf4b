package domains

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

func testRuleSet() *RuleSet {
	return &RuleSet{
		DomainPatterns: map[string][]string{
			`(^|\.)shop\.com$`: {"shop.de", "mailer.shop.com"},
			`(^|\.)bank\.com$`: {"alerts.bank.com"},
		},
		FolderPatterns: map[string][]string{
			`(?i)newsletter`: {"substack.com"},
		},
	}
}

func TestSuggestRelatedDomains(t *testing.T) {
	m := NewMapper(testRuleSet(), zap.NewNop())

	folders := []core.CategorizedFolder{
		{Name: "Shopping", Domains: []string{"shop.com"}},
	}
	suggestions := m.Suggest(folders, nil)

	assert.Equal(t, []core.DomainSuggestion{
		{Domain: "shop.de", Folder: "Shopping"},
		{Domain: "mailer.shop.com", Folder: "Shopping"},
	}, suggestions)
}

func TestSuggestFirstAssignmentWins(t *testing.T) {
	m := NewMapper(testRuleSet(), zap.NewNop())

	// Two folders both know shop.com; the first one scanned claims the
	// related domains.
	folders := []core.CategorizedFolder{
		{Name: "Shopping", Domains: []string{"shop.com"}},
		{Name: "Deals", Domains: []string{"sub.shop.com"}},
	}
	suggestions := m.Suggest(folders, nil)

	byDomain := map[string]string{}
	for _, s := range suggestions {
		_, dup := byDomain[s.Domain]
		require.False(t, dup, "domain %s suggested twice", s.Domain)
		byDomain[s.Domain] = s.Folder
	}
	assert.Equal(t, "Shopping", byDomain["shop.de"])
	assert.Equal(t, "Shopping", byDomain["mailer.shop.com"])
}

func TestSuggestSkipsOwnedDomains(t *testing.T) {
	m := NewMapper(testRuleSet(), zap.NewNop())

	folders := []core.CategorizedFolder{
		{Name: "Shopping", Domains: []string{"shop.com"}},
	}
	owned := func(domain string) bool { return domain == "shop.de" }
	suggestions := m.Suggest(folders, owned)

	assert.Equal(t, []core.DomainSuggestion{
		{Domain: "mailer.shop.com", Folder: "Shopping"},
	}, suggestions)
}

func TestSuggestFromFolderName(t *testing.T) {
	m := NewMapper(testRuleSet(), zap.NewNop())

	folders := []core.CategorizedFolder{
		{Name: "My Newsletters", Domains: nil},
	}
	suggestions := m.Suggest(folders, nil)

	assert.Equal(t, []core.DomainSuggestion{
		{Domain: "substack.com", Folder: "My Newsletters"},
	}, suggestions)
}

func TestLoadRulesFromDataDir(t *testing.T) {
	dir := t.TempDir()
	rules := `
domain_patterns:
  "(^|\\.)shop\\.com$":
    - shop.de
folder_patterns: {}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "domain_rules.yaml"), []byte(rules), 0o600))

	m := LoadRules(dir, zap.NewNop())
	suggestions := m.Suggest([]core.CategorizedFolder{
		{Name: "Shopping", Domains: []string{"shop.com"}},
	}, nil)
	assert.Equal(t, []core.DomainSuggestion{{Domain: "shop.de", Folder: "Shopping"}}, suggestions)
}

func TestLoadRulesMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "domain_rules.yaml"), []byte("{not yaml"), 0o600))

	// A malformed file is a warning, never an error; the bundled default
	// set still applies.
	m := LoadRules(dir, zap.NewNop())
	require.NotNil(t, m)
	suggestions := m.Suggest([]core.CategorizedFolder{
		{Name: "Orders", Domains: []string{"www.amazon.com"}},
	}, nil)
	assert.NotEmpty(t, suggestions)
}

func TestSuggestInvalidPatternSkipped(t *testing.T) {
	rs := &RuleSet{
		DomainPatterns: map[string][]string{
			`([`:               {"broken.example"},
			`(^|\.)shop\.com$`: {"shop.de"},
		},
	}
	m := NewMapper(rs, zap.NewNop())
	suggestions := m.Suggest([]core.CategorizedFolder{
		{Name: "Shopping", Domains: []string{"shop.com"}},
	}, nil)
	assert.Equal(t, []core.DomainSuggestion{{Domain: "shop.de", Folder: "Shopping"}}, suggestions)
}
