package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailsort/")
	v.AddConfigPath("$HOME/.mailsort")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAILSORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// IMAP connection defaults
	v.SetDefault("imap.server", "")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.use_tls", true)

	// Sorting defaults
	v.SetDefault("sort.mode", "classify")
	v.SetDefault("sort.retention_policy", "spammy")
	v.SetDefault("sort.hold_days", 7)
	v.SetDefault("sort.inbox_folder", "INBOX")
	v.SetDefault("sort.junk_folder", "Junk")
	v.SetDefault("sort.list_folder", "Lists")
	v.SetDefault("sort.quarantine_folder", "Quarantine")
	v.SetDefault("sort.unjunking", false)
	v.SetDefault("sort.pretend", false)
	v.SetDefault("sort.whitelist_addresses", []string{})
	v.SetDefault("sort.blacklist_addresses", []string{})
	v.SetDefault("sort.whitelisted_domains", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "file")
	v.SetDefault("cache.dir", "$HOME/.mailsort/cache")
	v.SetDefault("cache.sqlite_path", "$HOME/.mailsort/cache.db")

	// Domain rule defaults
	v.SetDefault("rules.data_dir", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
