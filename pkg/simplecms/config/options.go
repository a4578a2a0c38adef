package config

import (
	"fmt"
	"strings"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend explicitly
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "sqlite" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory', 'sqlite' or 'postgres', got: %s", dbType)
		}
		if dbType != "memory" && url == "" {
			return fmt.Errorf("database URL is required for %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseURL configures the database from a single connection string,
// detecting the type from its scheme:
//
//	memory or empty           - in-memory repository
//	sqlite://path/to/file.db  - embedded SQLite database
//	postgres://... (or postgresql://) - PostgreSQL
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		switch {
		case url == "" || url == "memory" || url == "memory://":
			c.DatabaseType = "memory"
			c.DatabaseURL = ""
		case strings.HasPrefix(url, "sqlite://"):
			path := strings.TrimPrefix(url, "sqlite://")
			if path == "" {
				return fmt.Errorf("sqlite path cannot be empty in database URL")
			}
			c.DatabaseType = "sqlite"
			c.DatabaseURL = path
		case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
			c.DatabaseType = "postgres"
			c.DatabaseURL = url
		default:
			return fmt.Errorf("unsupported database URL format: %s (use 'memory', 'sqlite://...' or 'postgres://...')", url)
		}
		return nil
	}
}

// WithStorageURL configures the default storage backend from a single URL:
//
//	memory://            - in-memory storage (default)
//	file:///path/to/dir  - filesystem storage
//	s3://bucket          - S3 storage (credentials from the environment
//	                       or WithS3Credentials)
func WithStorageURL(url string) Option {
	return func(c *ServerConfig) error {
		switch {
		case url == "" || url == "memory" || url == "memory://":
			c.DefaultStorage = "memory"
			c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			})
		case strings.HasPrefix(url, "file://"):
			path := strings.TrimPrefix(url, "file://")
			if path == "" {
				return fmt.Errorf("filesystem path cannot be empty in storage URL")
			}
			c.DefaultStorage = "fs"
			c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
				Name: "fs",
				Type: "fs",
				Config: map[string]interface{}{
					"base_dir": path,
				},
			})
		case strings.HasPrefix(url, "s3://"):
			bucket := strings.TrimPrefix(url, "s3://")
			if i := strings.IndexByte(bucket, '?'); i >= 0 {
				bucket = bucket[:i]
			}
			if bucket == "" {
				return fmt.Errorf("S3 bucket name cannot be empty in storage URL")
			}
			c.DefaultStorage = "s3"
			c.StorageBackends = upsertStorageBackend(c.StorageBackends, StorageBackendConfig{
				Name: "s3",
				Type: "s3",
				Config: map[string]interface{}{
					"bucket": bucket,
				},
			})
		default:
			return fmt.Errorf("unsupported storage URL format: %s (use 'memory://', 'file://...' or 's3://...')", url)
		}
		return nil
	}
}

// WithDefaultStorage sets the default storage backend name
func WithDefaultStorage(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("default storage backend name cannot be empty")
		}
		c.DefaultStorage = name
		return nil
	}
}

// WithMemoryStorage adds a memory storage backend (for testing)
// If name is empty, defaults to "memory"
func WithMemoryStorage(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "memory"
		}

		backend := StorageBackendConfig{
			Name:   name,
			Type:   "memory",
			Config: map[string]interface{}{},
		}

		c.StorageBackends = upsertStorageBackend(c.StorageBackends, backend)
		return nil
	}
}

// WithFilesystemStorage adds a filesystem storage backend
// If name is empty, defaults to "fs"
func WithFilesystemStorage(name, baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "fs"
		}
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}

		backend := StorageBackendConfig{
			Name: name,
			Type: "fs",
			Config: map[string]interface{}{
				"base_dir": baseDir,
			},
		}

		if urlPrefix != "" {
			backend.Config["url_prefix"] = urlPrefix
		}

		c.StorageBackends = upsertStorageBackend(c.StorageBackends, backend)
		return nil
	}
}

// WithS3Storage adds an S3 storage backend
// If name is empty, defaults to "s3"
func WithS3Storage(name, bucket, region string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}

		backend := StorageBackendConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"bucket": bucket,
				"region": region,
			},
		}

		c.StorageBackends = upsertStorageBackend(c.StorageBackends, backend)
		return nil
	}
}

// WithS3Credentials sets AWS credentials for S3 storage
func WithS3Credentials(name, accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}

		for i := range c.StorageBackends {
			if c.StorageBackends[i].Name == name && c.StorageBackends[i].Type == "s3" {
				c.StorageBackends[i].Config["access_key_id"] = accessKeyID
				c.StorageBackends[i].Config["secret_access_key"] = secretAccessKey
				return nil
			}
		}

		backend := StorageBackendConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"access_key_id":     accessKeyID,
				"secret_access_key": secretAccessKey,
			},
		}
		c.StorageBackends = append(c.StorageBackends, backend)
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(name, endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			name = "s3"
		}

		for i := range c.StorageBackends {
			if c.StorageBackends[i].Name == name && c.StorageBackends[i].Type == "s3" {
				c.StorageBackends[i].Config["endpoint"] = endpoint
				c.StorageBackends[i].Config["use_path_style"] = usePathStyle
				return nil
			}
		}

		backend := StorageBackendConfig{
			Name: name,
			Type: "s3",
			Config: map[string]interface{}{
				"endpoint":       endpoint,
				"use_path_style": usePathStyle,
			},
		}
		c.StorageBackends = append(c.StorageBackends, backend)
		return nil
	}
}

// WithURLPrefix sets the public URL prefix for served uploads
func WithURLPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		if prefix == "" {
			return fmt.Errorf("URL prefix cannot be empty")
		}
		c.URLPrefix = prefix
		return nil
	}
}

// WithJWTSecret sets the secret used to verify bearer tokens
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return fmt.Errorf("JWT secret cannot be empty")
		}
		c.JWTSecret = secret
		return nil
	}
}

// WithAdminAPIKey sets the SHA-256 digest of the admin API key
func WithAdminAPIKey(sha256Hex string) Option {
	return func(c *ServerConfig) error {
		c.AdminAPIKeySHA256 = sha256Hex
		return nil
	}
}

// WithSeedOnStart enables or disables the example data import at startup
func WithSeedOnStart(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.SeedOnStart = enabled
		return nil
	}
}

// WithSeedDataDir points the seeder at an external fixture directory
// containing data.json and uploads/
func WithSeedDataDir(dir string) Option {
	return func(c *ServerConfig) error {
		c.SeedDataDir = dir
		return nil
	}
}

// WithAutoMigrate enables or disables schema migration during BuildService
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

func upsertStorageBackend(backends []StorageBackendConfig, backend StorageBackendConfig) []StorageBackendConfig {
	if backend.Config == nil {
		backend.Config = map[string]interface{}{}
	}
	for i := range backends {
		if backends[i].Name == backend.Name {
			backends[i] = backend
			return backends
		}
	}
	return append(backends, backend)
}
