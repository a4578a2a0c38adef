// Command seed imports the example data set into a configured database and
// storage backend, then exits. It is the one-shot equivalent of the server's
// SEED_ON_START behavior, useful for provisioning a database ahead of a
// deploy. A database that was seeded earlier is left untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	status := flag.Bool("status", false, "report whether the import has run and exit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	svc, err := cfg.BuildService()
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	seeder, err := cfg.BuildSeeder(svc)
	if err != nil {
		return fmt.Errorf("build seeder: %w", err)
	}

	if *status {
		hasRun, err := seeder.HasRun(ctx)
		if err != nil {
			return fmt.Errorf("read seed status: %w", err)
		}
		fmt.Printf("seeded: %t\n", hasRun)
		return nil
	}

	if err := seeder.Run(ctx); err != nil {
		return fmt.Errorf("seed run: %w", err)
	}
	return nil
}
