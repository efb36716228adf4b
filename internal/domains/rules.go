package domains

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed default_rules.yaml
var defaultRules []byte

const ruleFileName = "domain_rules.yaml"

// RuleSet is the raw shape of a domain rule file: patterns matched against
// known domains map to related domains, patterns matched against folder
// names map to suggested domains.
type RuleSet struct {
	DomainPatterns map[string][]string `mapstructure:"domain_patterns"`
	FolderPatterns map[string][]string `mapstructure:"folder_patterns"`
}

type compiledRule struct {
	pattern *regexp.Regexp
	domains []string
}

// LoadRules resolves the rule set: a file in dataDir first, then one under
// the user's home config directory, then the bundled default. A missing or
// malformed file at every location degrades to an empty rule set with a
// warning, never an error.
func LoadRules(dataDir string, logger *zap.Logger) *Mapper {
	for _, path := range candidatePaths(dataDir) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rs, err := readRuleFile(path)
		if err != nil {
			logger.Warn("unreadable domain rule file",
				zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Debug("loaded domain rules", zap.String("path", path))
		return newMapper(rs, logger)
	}

	rs, err := parseRules(defaultRules)
	if err != nil {
		logger.Warn("no usable domain rule set, suggestions disabled", zap.Error(err))
		return newMapper(&RuleSet{}, logger)
	}
	return newMapper(rs, logger)
}

func candidatePaths(dataDir string) []string {
	var paths []string
	if dataDir != "" {
		paths = append(paths, filepath.Join(dataDir, ruleFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".mailsort", ruleFileName))
	}
	return paths
}

func readRuleFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRules(data)
}

func parseRules(data []byte) (*RuleSet, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	var rs RuleSet
	if err := v.Unmarshal(&rs); err != nil {
		return nil, fmt.Errorf("decode rule file: %w", err)
	}
	return &rs, nil
}

// compile turns a pattern map into an ordered rule list. Keys are sorted
// so first-match-wins stays deterministic; invalid patterns are skipped
// with a warning.
func compile(patterns map[string][]string, logger *zap.Logger) []compiledRule {
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]compiledRule, 0, len(keys))
	for _, k := range keys {
		re, err := regexp.Compile(k)
		if err != nil {
			logger.Warn("invalid domain rule pattern, skipping",
				zap.String("pattern", k), zap.Error(err))
			continue
		}
		rules = append(rules, compiledRule{pattern: re, domains: patterns[k]})
	}
	return rules
}
