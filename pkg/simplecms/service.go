package simplecms

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-cms library
type Service interface {
	// Entry operations
	CreateEntry(ctx context.Context, req CreateEntryRequest) (*Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetEntryBySlug(ctx context.Context, collection, slug string) (*Entry, error)
	ListEntries(ctx context.Context, req ListEntriesRequest) ([]*Entry, error)
	CountEntries(ctx context.Context, collection string) (int64, error)
	UpdateEntry(ctx context.Context, req UpdateEntryRequest) (*Entry, error)
	PublishEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// File operations
	UploadFile(ctx context.Context, req UploadFileRequest) (*File, error)
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)
	FindFileByName(ctx context.Context, name string) (*File, error)
	ListFiles(ctx context.Context) ([]*File, error)
	DownloadFile(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
	GetFileDownloadURL(ctx context.Context, id uuid.UUID) (string, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error

	// Role and permission operations
	GetRole(ctx context.Context, kind RoleKind) (*Role, error)
	GrantPermission(ctx context.Context, roleID uuid.UUID, action string) (*Permission, error)
	HasPermission(ctx context.Context, kind RoleKind, action string) (bool, error)
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*Permission, error)

	// Settings operations
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Storage backend operations
	RegisterBackend(name string, backend BlobStore)
	GetBackend(name string) (BlobStore, error)
}
