package config

import "os"

// IMAPConfig represents the mail server connection settings
type IMAPConfig struct {
	Server   string
	Username string
	Password string
	UseTLS   bool
}

// SortConfig represents the per-run sorting settings
type SortConfig struct {
	Mode               string
	RetentionPolicy    string
	HoldDays           int
	InboxFolder        string
	JunkFolder         string
	ListFolder         string
	QuarantineFolder   string
	Unjunking          bool
	Pretend            bool
	WhitelistAddresses []string
	BlacklistAddresses []string
	WhitelistedDomains []string
}

// CacheConfig represents the folder address cache settings
type CacheConfig struct {
	Type       string
	Dir        string
	SQLitePath string
}

// RulesConfig represents the domain rule file settings
type RulesConfig struct {
	DataDir string
}

// GetIMAP returns the mail server connection configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Server:   c.GetString("imap.server"),
		Username: c.GetString("imap.username"),
		Password: c.GetString("imap.password"),
		UseTLS:   c.GetBool("imap.use_tls"),
	}
}

// GetSort returns the sorting configuration
func (c *Config) GetSort() SortConfig {
	return SortConfig{
		Mode:               c.GetString("sort.mode"),
		RetentionPolicy:    c.GetString("sort.retention_policy"),
		HoldDays:           c.GetInt("sort.hold_days"),
		InboxFolder:        c.GetString("sort.inbox_folder"),
		JunkFolder:         c.GetString("sort.junk_folder"),
		ListFolder:         c.GetString("sort.list_folder"),
		QuarantineFolder:   c.GetString("sort.quarantine_folder"),
		Unjunking:          c.GetBool("sort.unjunking"),
		Pretend:            c.GetBool("sort.pretend"),
		WhitelistAddresses: c.GetStringSlice("sort.whitelist_addresses"),
		BlacklistAddresses: c.GetStringSlice("sort.blacklist_addresses"),
		WhitelistedDomains: c.GetStringSlice("sort.whitelisted_domains"),
	}
}

// GetCache returns the cache configuration with environment variables
// expanded in paths
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:       c.GetString("cache.type"),
		Dir:        os.ExpandEnv(c.GetString("cache.dir")),
		SQLitePath: os.ExpandEnv(c.GetString("cache.sqlite_path")),
	}
}

// GetRules returns the domain rule configuration
func (c *Config) GetRules() RulesConfig {
	return RulesConfig{
		DataDir: os.ExpandEnv(c.GetString("rules.data_dir")),
	}
}
