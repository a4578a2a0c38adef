package simplecms

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// GetUploadURL returns a URL for uploading content
	GetUploadURL(ctx context.Context, objectKey string) (string, error)

	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// GetDownloadURL returns a URL for downloading content
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)

	// GetPreviewURL returns a URL for previewing content
	GetPreviewURL(ctx context.Context, objectKey string) (string, error)

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for a stored object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for entry, file, permission and settings
// persistence. Implementations must honor soft deletion: entries and files
// with a non-nil DeletedAt are invisible to every read operation.
type Repository interface {
	// Entry operations
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetEntryBySlug(ctx context.Context, collection, slug string) (*Entry, error)
	ListEntries(ctx context.Context, params ListEntriesParams) ([]*Entry, error)
	CountEntries(ctx context.Context, collection string) (int64, error)
	UpdateEntry(ctx context.Context, entry *Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	// File operations
	CreateFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)
	GetFileByName(ctx context.Context, name string) (*File, error)
	ListFiles(ctx context.Context) ([]*File, error)
	UpdateFile(ctx context.Context, file *File) error
	DeleteFile(ctx context.Context, id uuid.UUID) error

	// Role and permission operations
	GetRoleByKind(ctx context.Context, kind RoleKind) (*Role, error)
	CreatePermission(ctx context.Context, permission *Permission) error
	GetPermission(ctx context.Context, roleID uuid.UUID, action string) (*Permission, error)
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*Permission, error)

	// Settings operations
	GetSetting(ctx context.Context, key string) (*Setting, error)
	SetSetting(ctx context.Context, setting *Setting) error
}

// EventSink defines the interface for event handling. Errors returned by a
// sink are discarded by the service; sinks must do their own logging.
type EventSink interface {
	// EntryCreated is fired when an entry is created
	EntryCreated(ctx context.Context, entry *Entry) error

	// EntryUpdated is fired when an entry is updated
	EntryUpdated(ctx context.Context, entry *Entry) error

	// EntryPublished is fired when an entry transitions to published
	EntryPublished(ctx context.Context, entry *Entry) error

	// EntryDeleted is fired when an entry is deleted
	EntryDeleted(ctx context.Context, entryID uuid.UUID) error

	// FileUploaded is fired when a file upload completes
	FileUploaded(ctx context.Context, file *File) error

	// FileDeleted is fired when a file is deleted
	FileDeleted(ctx context.Context, fileID uuid.UUID) error

	// PermissionGranted is fired when a permission is granted to a role
	PermissionGranted(ctx context.Context, permission *Permission) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// ListEntriesParams contains parameters for listing entries
type ListEntriesParams struct {
	Collection string
	Status     *EntryStatus
	Limit      int
	Offset     int
}
