package bootstrap

import (
	"context"
	"fmt"

	coreconfig "github.com/a7motors/dealerbot/core/config"
	"github.com/a7motors/dealerbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit  func(*coreconfig.Config) error
	OpenStorage func(*coreconfig.Config) (Storage, error)

	Modules Modules
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Storage Storage
}

// Run initializes the logger, opens the storage backend, and runs the
// registered seeders against it.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	var storage Storage
	if opts.OpenStorage != nil {
		var err error
		if storage, err = opts.OpenStorage(opts.Config); err != nil {
			return nil, fmt.Errorf("bootstrap: storage initialization failed: %w", err)
		}
	}

	ctx := context.Background()
	for _, seeder := range opts.Modules.Seeders {
		if seeder == nil {
			continue
		}
		if err := seeder.Seed(ctx, storage); err != nil {
			return nil, fmt.Errorf("bootstrap: seeding failed: %w", err)
		}
	}

	return &Result{Storage: storage}, nil
}
