package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/adapters/imap"
	"github.com/mikey/mailsort/internal/categorize"
	"github.com/mikey/mailsort/internal/config"
	"github.com/mikey/mailsort/internal/core"
	"github.com/mikey/mailsort/internal/domains"
	"github.com/mikey/mailsort/internal/factory"
	"github.com/mikey/mailsort/internal/logging"
	"github.com/mikey/mailsort/internal/runner"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register the mail server connection
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*imap.Mailbox, error) {
		imapCfg := cfg.GetIMAP()
		return imap.Connect(imapCfg.Server, imapCfg.Username, imapCfg.Password, imapCfg.UseTLS, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(m *imap.Mailbox) core.Mailbox {
		return m
	}); err != nil {
		return nil, err
	}

	// Register the folder cache store
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.FolderCacheStore, error) {
		return f.CreateCacheStore()
	}); err != nil {
		return nil, err
	}

	// Register the folder analyzer
	if err := container.Provide(core.NewAnalyzer); err != nil {
		return nil, err
	}

	// Register the folder categorizer
	if err := container.Provide(func(analyzer *core.Analyzer, logger *zap.Logger) core.FolderClassifier {
		return categorize.New(analyzer.SampleHeaders, logger)
	}); err != nil {
		return nil, err
	}

	// Register the domain mapper
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.DomainSuggester {
		return domains.LoadRules(cfg.GetRules().DataDir, logger)
	}); err != nil {
		return nil, err
	}

	// Register the sorter configuration
	if err := container.Provide(func(cfg *config.Config) (core.SorterConfig, error) {
		sortCfg := cfg.GetSort()
		policy, err := core.ParseRetentionPolicy(sortCfg.RetentionPolicy)
		if err != nil {
			return core.SorterConfig{}, fmt.Errorf("invalid configuration: %w", err)
		}
		mode, err := core.ParseMode(sortCfg.Mode)
		if err != nil {
			return core.SorterConfig{}, fmt.Errorf("invalid configuration: %w", err)
		}
		return core.SorterConfig{
			InboxFolder:        sortCfg.InboxFolder,
			JunkFolder:         sortCfg.JunkFolder,
			ListFolder:         sortCfg.ListFolder,
			QuarantineFolder:   sortCfg.QuarantineFolder,
			Policy:             policy,
			HoldDays:           sortCfg.HoldDays,
			Unjunking:          sortCfg.Unjunking,
			Mode:               mode,
			WhitelistAddresses: sortCfg.WhitelistAddresses,
			BlacklistAddresses: sortCfg.BlacklistAddresses,
			WhitelistedDomains: sortCfg.WhitelistedDomains,
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register the action runner
	if err := container.Provide(func(mailbox core.Mailbox, cfg *config.Config, logger *zap.Logger) core.ActionExecutor {
		sortCfg := cfg.GetSort()
		return runner.New(mailbox, logger, sortCfg.JunkFolder, sortCfg.Pretend)
	}); err != nil {
		return nil, err
	}

	// Register the sorter service
	if err := container.Provide(core.NewSorter); err != nil {
		return nil, err
	}

	return container, nil
}
