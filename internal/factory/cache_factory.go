package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/adapters/cache"
	"github.com/mikey/mailsort/internal/config"
	"github.com/mikey/mailsort/internal/core"
)

// CacheFactory creates folder cache stores based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheStore creates a folder cache store based on the configuration
func (f *CacheFactory) CreateCacheStore() (core.FolderCacheStore, error) {
	cacheCfg := f.cfg.GetCache()

	switch cacheCfg.Type {
	case "file", "":
		return cache.NewFileStore(cacheCfg.Dir, f.logger)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		return cache.NewSQLiteStore(cacheCfg.SQLitePath, f.logger)
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
