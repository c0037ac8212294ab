package main

import (
	"context"
	"fmt"
	"os"

	"github.com/daily-task-list/backend/internal/common/bootstrap"
	"github.com/daily-task-list/backend/internal/common/config"
	"github.com/daily-task-list/backend/internal/common/constants"
	"github.com/daily-task-list/backend/internal/common/logger"
)

// storecheck pings the configured store once and reports the result through
// its exit status.
func main() {
	if err := run(); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(); err != nil {
		return err
	}

	log := logger.NewWithWriter(os.Stderr, "storecheck", os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*constants.StoreConnectTimeout)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, log, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close(context.Background())
	}()

	if err := store.Pinger.Ping(ctx); err != nil {
		return fmt.Errorf("%s store unreachable: %w", store.Driver, err)
	}

	fmt.Printf("SUCCESS: connected to %s store\n", store.Driver)
	return nil
}
