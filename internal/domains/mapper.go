// Package domains expands the domains a list folder already contains into
// related domains a rule set knows about, proposing new list-domain-map
// entries.
package domains

import (
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/core"
)

// Mapper suggests domain-to-folder entries from a compiled rule set.
type Mapper struct {
	domainRules []compiledRule
	folderRules []compiledRule
	logger      *zap.Logger
}

func newMapper(rs *RuleSet, logger *zap.Logger) *Mapper {
	return &Mapper{
		domainRules: compile(rs.DomainPatterns, logger),
		folderRules: compile(rs.FolderPatterns, logger),
		logger:      logger,
	}
}

// NewMapper creates a Mapper from an already-parsed rule set. Most callers
// should use LoadRules instead.
func NewMapper(rs *RuleSet, logger *zap.Logger) *Mapper {
	return newMapper(rs, logger)
}

// Suggest proposes folder assignments for domains related to the ones each
// list folder already holds, then for domains suggested by the folder's
// own name. The first assignment for a domain wins; domains the owned
// predicate claims are never proposed.
func (m *Mapper) Suggest(folders []core.CategorizedFolder, owned func(domain string) bool) []core.DomainSuggestion {
	assigned := make(map[string]struct{})
	var suggestions []core.DomainSuggestion

	propose := func(domain, folder string) {
		if owned != nil && owned(domain) {
			return
		}
		if _, ok := assigned[domain]; ok {
			return
		}
		assigned[domain] = struct{}{}
		suggestions = append(suggestions, core.DomainSuggestion{Domain: domain, Folder: folder})
	}

	for _, folder := range folders {
		for _, known := range folder.Domains {
			for _, rule := range m.domainRules {
				if !rule.pattern.MatchString(known) {
					continue
				}
				for _, related := range rule.domains {
					propose(related, folder.Name)
				}
			}
		}
		for _, rule := range m.folderRules {
			if !rule.pattern.MatchString(folder.Name) {
				continue
			}
			for _, suggested := range rule.domains {
				propose(suggested, folder.Name)
			}
		}
	}
	return suggestions
}
