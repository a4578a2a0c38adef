package simplecms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms/filekey"
)

// service implements the Service interface
type service struct {
	repository     Repository
	blobStores     map[string]BlobStore
	eventSink      EventSink
	keyGenerator   filekey.Generator
	urlPrefix      string
	defaultBackend string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore adds a blob storage backend. The first registered backend
// becomes the default unless WithDefaultBackend overrides it.
func WithBlobStore(name string, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[string]BlobStore)
		}
		s.blobStores[name] = store
		if s.defaultBackend == "" {
			s.defaultBackend = name
		}
	}
}

// WithDefaultBackend sets the backend used when an upload request does not
// name one.
func WithDefaultBackend(name string) Option {
	return func(s *service) {
		s.defaultBackend = name
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithFileKeyGenerator sets the object key generation strategy for uploads
func WithFileKeyGenerator(generator filekey.Generator) Option {
	return func(s *service) {
		s.keyGenerator = generator
	}
}

// WithURLPrefix sets the public URL prefix for app-served files
func WithURLPrefix(prefix string) Option {
	return func(s *service) {
		s.urlPrefix = prefix
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores: make(map[string]BlobStore),
		urlPrefix:  "/uploads",
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.keyGenerator == nil {
		s.keyGenerator = filekey.NewShardedGenerator()
	}

	return s, nil
}

// Entry operations

func (s *service) CreateEntry(ctx context.Context, req CreateEntryRequest) (*Entry, error) {
	if err := validateCollection(req.Collection); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = EntryStatusDraft
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	// Single types hold at most one live entry.
	if SingleEntry(req.Collection) {
		count, err := s.repository.CountEntries(ctx, req.Collection)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: collection %q is a single type", ErrEntryExists, req.Collection)
		}
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:         uuid.New(),
		Collection: req.Collection,
		Slug:       req.Slug,
		Data:       req.Data,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == EntryStatusPublished {
		entry.PublishedAt = &now
	}

	if err := s.repository.CreateEntry(ctx, entry); err != nil {
		return nil, &EntryError{
			EntryID: entry.ID,
			Op:      "create",
			Err:     err,
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.EntryCreated(ctx, entry)
		if entry.Status == EntryStatusPublished {
			_ = s.eventSink.EntryPublished(ctx, entry)
		}
	}

	return entry, nil
}

func (s *service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repository.GetEntry(ctx, id)
}

func (s *service) GetEntryBySlug(ctx context.Context, collection, slug string) (*Entry, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	return s.repository.GetEntryBySlug(ctx, collection, slug)
}

func (s *service) ListEntries(ctx context.Context, req ListEntriesRequest) ([]*Entry, error) {
	return s.repository.ListEntries(ctx, ListEntriesParams{
		Collection: req.Collection,
		Status:     req.Status,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

func (s *service) CountEntries(ctx context.Context, collection string) (int64, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	return s.repository.CountEntries(ctx, collection)
}

func (s *service) UpdateEntry(ctx context.Context, req UpdateEntryRequest) (*Entry, error) {
	entry := req.Entry
	if entry == nil {
		return nil, fmt.Errorf("entry is required")
	}
	if err := entry.Status.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry.UpdatedAt = now
	switch entry.Status {
	case EntryStatusPublished:
		if entry.PublishedAt == nil {
			entry.PublishedAt = &now
		}
	case EntryStatusDraft:
		entry.PublishedAt = nil
	}

	if err := s.repository.UpdateEntry(ctx, entry); err != nil {
		return nil, &EntryError{
			EntryID: entry.ID,
			Op:      "update",
			Err:     err,
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.EntryUpdated(ctx, entry)
	}

	return entry, nil
}

func (s *service) PublishEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	entry, err := s.repository.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry.Status = EntryStatusPublished
	entry.PublishedAt = &now
	entry.UpdatedAt = now

	if err := s.repository.UpdateEntry(ctx, entry); err != nil {
		return nil, &EntryError{
			EntryID: id,
			Op:      "publish",
			Err:     err,
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.EntryPublished(ctx, entry)
	}

	return entry, nil
}

func (s *service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.DeleteEntry(ctx, id); err != nil {
		return &EntryError{
			EntryID: id,
			Op:      "delete",
			Err:     err,
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.EntryDeleted(ctx, id)
	}

	return nil
}

// File operations

func (s *service) UploadFile(ctx context.Context, req UploadFileRequest) (*File, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrUploadFailed)
	}
	if req.Reader == nil {
		return nil, fmt.Errorf("%w: reader is required", ErrUploadFailed)
	}

	backendName := req.StorageBackend
	if backendName == "" {
		backendName = s.defaultBackend
	}
	backend, err := s.GetBackend(backendName)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	ext := path.Ext(req.Name)
	name := strings.TrimSuffix(req.Name, ext)
	objectKey := s.keyGenerator.GenerateKey(id, req.Name)
	mimeType := mime.TypeByExtension(ext)

	if err := backend.UploadWithParams(ctx, req.Reader, UploadParams{
		ObjectKey: objectKey,
		MimeType:  mimeType,
	}); err != nil {
		return nil, &StorageError{
			Backend: backendName,
			Key:     objectKey,
			Op:      "upload",
			Err:     err,
		}
	}

	now := time.Now().UTC()
	file := &File{
		ID:              id,
		Name:            name,
		AlternativeText: req.AlternativeText,
		Caption:         req.Caption,
		Hash:            fileHash(id, name),
		Ext:             ext,
		Mime:            mimeType,
		ObjectKey:       objectKey,
		StorageBackend:  backendName,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	file.URL = s.fileURL(file)

	// Size and the server-detected content type come from the backend when
	// it can provide them.
	if meta, err := backend.GetObjectMeta(ctx, objectKey); err == nil {
		file.SizeBytes = meta.Size
		if meta.ContentType != "" {
			file.Mime = meta.ContentType
		}
	}

	if err := s.repository.CreateFile(ctx, file); err != nil {
		return nil, &FileError{
			FileID: id,
			Op:     "create",
			Err:    err,
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.FileUploaded(ctx, file)
	}

	return file, nil
}

func (s *service) GetFile(ctx context.Context, id uuid.UUID) (*File, error) {
	return s.repository.GetFile(ctx, id)
}

func (s *service) FindFileByName(ctx context.Context, name string) (*File, error) {
	return s.repository.GetFileByName(ctx, name)
}

func (s *service) ListFiles(ctx context.Context) ([]*File, error) {
	return s.repository.ListFiles(ctx)
}

func (s *service) DownloadFile(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	file, err := s.repository.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}

	backend, err := s.GetBackend(file.StorageBackend)
	if err != nil {
		return nil, err
	}

	rc, err := backend.Download(ctx, file.ObjectKey)
	if err != nil {
		return nil, &StorageError{
			Backend: file.StorageBackend,
			Key:     file.ObjectKey,
			Op:      "download",
			Err:     err,
		}
	}

	return rc, nil
}

func (s *service) GetFileDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	file, err := s.repository.GetFile(ctx, id)
	if err != nil {
		return "", err
	}

	backend, err := s.GetBackend(file.StorageBackend)
	if err != nil {
		return "", err
	}

	// Backends without URL support (e.g. memory) fall back to the
	// app-served upload path.
	if url, err := backend.GetDownloadURL(ctx, file.ObjectKey, file.FileName()); err == nil && url != "" {
		return url, nil
	}
	return file.URL, nil
}

func (s *service) DeleteFile(ctx context.Context, id uuid.UUID) error {
	file, err := s.repository.GetFile(ctx, id)
	if err != nil {
		return err
	}

	backend, err := s.GetBackend(file.StorageBackend)
	if err != nil {
		return err
	}
	if err := backend.Delete(ctx, file.ObjectKey); err != nil {
		return &StorageError{
			Backend: file.StorageBackend,
			Key:     file.ObjectKey,
			Op:      "delete",
			Err:     err,
		}
	}

	if err := s.repository.DeleteFile(ctx, id); err != nil {
		return &FileError{
			FileID: id,
			Op:     "delete",
			Err:    err,
		}
	}

	if s.eventSink != nil {
		_ = s.eventSink.FileDeleted(ctx, id)
	}

	return nil
}

// Role and permission operations

func (s *service) GetRole(ctx context.Context, kind RoleKind) (*Role, error) {
	return s.repository.GetRoleByKind(ctx, kind)
}

func (s *service) GrantPermission(ctx context.Context, roleID uuid.UUID, action string) (*Permission, error) {
	existing, err := s.repository.GetPermission(ctx, roleID, action)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrPermissionNotFound) {
		return nil, err
	}

	permission := &Permission{
		ID:        uuid.New(),
		RoleID:    roleID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreatePermission(ctx, permission); err != nil {
		return nil, fmt.Errorf("failed to create permission %q: %w", action, err)
	}

	if s.eventSink != nil {
		_ = s.eventSink.PermissionGranted(ctx, permission)
	}

	return permission, nil
}

func (s *service) HasPermission(ctx context.Context, kind RoleKind, action string) (bool, error) {
	role, err := s.repository.GetRoleByKind(ctx, kind)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return false, nil
		}
		return false, err
	}

	if _, err := s.repository.GetPermission(ctx, role.ID, action); err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *service) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*Permission, error) {
	return s.repository.ListPermissions(ctx, roleID)
}

// Settings operations

func (s *service) GetSetting(ctx context.Context, key string) (string, error) {
	setting, err := s.repository.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *service) SetSetting(ctx context.Context, key, value string) error {
	return s.repository.SetSetting(ctx, &Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
}

// Storage backend operations

func (s *service) RegisterBackend(name string, backend BlobStore) {
	s.blobStores[name] = backend
	if s.defaultBackend == "" {
		s.defaultBackend = name
	}
}

func (s *service) GetBackend(name string) (BlobStore, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: backend name is empty", ErrBackendNotFound)
	}
	backend, ok := s.blobStores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	return backend, nil
}

// fileURL builds the app-served URL for an uploaded file.
func (s *service) fileURL(file *File) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.urlPrefix, "/"), file.ID, file.FileName())
}

// fileHash builds the short storage hash recorded on a file,
// e.g. "beautiful-picture_4f9d2a81c3".
func fileHash(id uuid.UUID, name string) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("%s_%s", name, hex[:10])
}
