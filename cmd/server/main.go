package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"

	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

type Config struct {
	Port              string `env:"PORT" env-default:"8080"`
	Environment       string `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL       string `env:"DATABASE_URL" env-default:"memory"`
	StorageURL        string `env:"STORAGE_URL" env-default:"memory://"`
	URLPrefix         string `env:"URL_PREFIX" env-default:"/uploads"`
	JWTSecret         string `env:"JWT_SECRET" env-default:"simple-cms-dev-secret"`
	AdminAPIKeySHA256 string `env:"ADMIN_API_KEY_SHA256" env-default:""`
	SeedOnStart       bool   `env:"SEED_ON_START" env-default:"true"`
	SeedDataDir       string `env:"SEED_DATA_DIR" env-default:""`
}

func main() {
	var envConfig Config
	if err := cleanenv.ReadEnv(&envConfig); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(
		config.WithPort(envConfig.Port),
		config.WithEnvironment(envConfig.Environment),
		config.WithDatabaseURL(envConfig.DatabaseURL),
		config.WithStorageURL(envConfig.StorageURL),
		config.WithURLPrefix(envConfig.URLPrefix),
		config.WithJWTSecret(envConfig.JWTSecret),
		config.WithAdminAPIKey(envConfig.AdminAPIKeySHA256),
		config.WithSeedOnStart(envConfig.SeedOnStart),
		config.WithSeedDataDir(envConfig.SeedDataDir),
	)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	svc, err := cfg.BuildService()
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	seeder, err := cfg.BuildSeeder(svc)
	if err != nil {
		slog.Error("Failed to build seeder", "err", err)
		os.Exit(1)
	}

	if cfg.SeedOnStart {
		// A failed import is logged and the server still comes up; the
		// admin endpoint can rerun it once the cause is fixed.
		if err := seeder.Run(ctx); err != nil {
			slog.Error("Seed run failed", "err", err)
		}
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	server.R.Mount("/api", api.Router(svc, cfg.JWTSecret))

	filesHandler := api.NewFilesHandler(svc)
	server.R.Mount(cfg.URLPrefix, filesHandler.Routes())

	if cfg.AdminAPIKeySHA256 != "" {
		apiKeyConfig := middleware.ApiKeyConfig{
			APIKeys: map[string]string{
				"admin": cfg.AdminAPIKeySHA256,
			},
		}
		apiKeyMiddleware, err := middleware.ApiKeyMiddleware(apiKeyConfig)
		if err != nil {
			slog.Error("Failed to initialize API key middleware", "err", err)
			os.Exit(1)
		}

		adminHandler := api.NewAdminHandler(seeder)
		server.R.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(apiKeyMiddleware)
				r.Mount("/", adminHandler.Routes())
			})
		})
	} else {
		slog.Info("ADMIN_API_KEY_SHA256 not set, admin routes disabled")
	}

	server.Run()
}
