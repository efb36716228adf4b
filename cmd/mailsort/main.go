package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/mailsort/internal/adapters/imap"
	"github.com/mikey/mailsort/internal/core"
	"github.com/mikey/mailsort/internal/di"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	sorter *core.Sorter,
	mailbox *imap.Mailbox,
	store core.FolderCacheStore,
) error {
	defer logger.Sync()
	defer func() {
		if err := mailbox.Logout(); err != nil {
			logger.Warn("logout failed", zap.Error(err))
		}
	}()

	summary, err := sorter.Run()
	if err != nil {
		logger.Error("sorting pass failed", zap.Error(err))
		return err
	}

	logger.Info("sorting pass complete",
		zap.Int("processed", summary.Processed),
		zap.Int("kept", summary.Kept),
		zap.Int("moved", summary.Moved),
		zap.Int("junked", summary.Junked))

	// Close the cache store if it holds resources
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close cache store", zap.Error(err))
		}
	}
	return nil
}
