// Package config assembles a ready-to-run simplecms service from declarative
// configuration. Binaries apply functional options (or WithEnv) through Load,
// then call BuildService and BuildSeeder.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-cms/pkg/simplecms"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	reposqlite "github.com/tendant/simple-cms/pkg/simplecms/repo/sqlite"
	"github.com/tendant/simple-cms/pkg/simplecms/seed"
	fsstorage "github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		DatabaseType:   "memory",
		DefaultStorage: "memory",
		StorageBackends: []StorageBackendConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			},
		},
		URLPrefix:          "/uploads",
		JWTSecret:          "simple-cms-dev-secret",
		AutoMigrate:        true,
		EnableEventLogging: true,
		SeedOnStart:        true,
	}
}

// ServerConfig represents server configuration for the simple-cms service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "sqlite", "postgres"

	// Storage configuration
	DefaultStorage  string
	StorageBackends []StorageBackendConfig

	// Public URL prefix under which the server delivers uploaded files.
	URLPrefix string

	// Secret for verifying bearer tokens on the content API.
	JWTSecret string

	// SHA-256 of the API key protecting the admin endpoints. Empty disables
	// the admin surface.
	AdminAPIKeySHA256 string

	// Seeding
	SeedOnStart bool
	SeedDataDir string // directory with data.json + uploads/; empty = embedded fixture

	// Server options
	AutoMigrate        bool
	EnableEventLogging bool
}

// StorageBackendConfig represents configuration for a storage backend
type StorageBackendConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'sqlite' or 'postgres'")
	}

	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}

	// Ensure default storage backend exists in configured backends
	found := false
	for _, backend := range c.StorageBackends {
		if backend.Name == c.DefaultStorage {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default storage backend '%s' not found in configured backends", c.DefaultStorage)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// When AutoMigrate is set, pending schema migrations run before the
// repository is handed to the service.
func (c *ServerConfig) BuildService() (simplecms.Service, error) {
	var options []simplecms.Option

	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, simplecms.WithRepository(repo))

	for _, backendConfig := range c.StorageBackends {
		store, err := c.buildStorageBackend(backendConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build storage backend %s: %w", backendConfig.Name, err)
		}
		options = append(options, simplecms.WithBlobStore(backendConfig.Name, store))
	}
	options = append(options, simplecms.WithDefaultBackend(c.DefaultStorage))

	if c.EnableEventLogging {
		options = append(options, simplecms.WithEventSink(simplecms.NewLoggingEventSink(slogLogger{slog.Default()})))
	} else {
		options = append(options, simplecms.WithEventSink(simplecms.NewNoopEventSink()))
	}

	if c.URLPrefix != "" {
		options = append(options, simplecms.WithURLPrefix(c.URLPrefix))
	}

	return simplecms.New(options...)
}

// BuildSeeder creates the example-data seeder for a service built from this
// configuration. SeedDataDir overrides the embedded fixture when set.
func (c *ServerConfig) BuildSeeder(svc simplecms.Service) (*seed.Seeder, error) {
	opts := []seed.Option{
		seed.WithStorageBackend(c.DefaultStorage),
	}

	if c.SeedDataDir != "" {
		info, err := os.Stat(c.SeedDataDir)
		if err != nil {
			return nil, fmt.Errorf("seed data dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("seed data dir %s is not a directory", c.SeedDataDir)
		}
		opts = append(opts, seed.WithFS(os.DirFS(c.SeedDataDir)))
	}

	return seed.New(svc, opts...), nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (simplecms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memoryrepo.New(), nil

	case "sqlite":
		db, err := reposqlite.Open(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if c.AutoMigrate {
			if err := reposqlite.Migrate(context.Background(), db); err != nil {
				return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
			}
		}
		return reposqlite.New(db), nil

	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		if err := pool.Ping(context.Background()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if c.AutoMigrate {
			if err := repopg.Migrate(context.Background(), pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to migrate postgres database: %w", err)
			}
		}
		return repopg.NewWithPool(pool), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend(config StorageBackendConfig) (simplecms.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		fsConfig := fsstorage.Config{
			BaseDir:   getString(config.Config, "base_dir", "./data/storage"),
			URLPrefix: getString(config.Config, "url_prefix", ""),
		}
		return fsstorage.New(fsConfig)

	case "s3":
		s3Config := s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			PresignDuration:        getInt(config.Config, "presign_duration", 3600),
			EnableSSE:              getBool(config.Config, "enable_sse", false),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm", ""),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		}
		return s3storage.New(s3Config)

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

// slogLogger adapts slog to the event sink's Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Infof(format string, args ...interface{}) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s slogLogger) Errorf(format string, args ...interface{}) {
	s.l.Error(fmt.Sprintf(format, args...))
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}

func getInt(config map[string]interface{}, key string, defaultValue int) int {
	if value, exists := config[key]; exists {
		if i, ok := value.(int); ok {
			return i
		}
		if str, ok := value.(string); ok {
			if i, err := strconv.Atoi(str); err == nil {
				return i
			}
		}
		if f, ok := value.(float64); ok {
			return int(f)
		}
	}
	return defaultValue
}
