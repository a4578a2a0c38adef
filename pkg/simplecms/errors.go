package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrEntryNotFound indicates an entry was not found
	ErrEntryNotFound = errors.New("entry not found")

	// ErrEntryExists indicates a single-type collection already holds an entry
	ErrEntryExists = errors.New("entry already exists")

	// ErrFileNotFound indicates a file was not found
	ErrFileNotFound = errors.New("file not found")

	// ErrRoleNotFound indicates a role was not found
	ErrRoleNotFound = errors.New("role not found")

	// ErrPermissionNotFound indicates a permission was not found
	ErrPermissionNotFound = errors.New("permission not found")

	// ErrSettingNotFound indicates a setting key was never written
	ErrSettingNotFound = errors.New("setting not found")

	// ErrBackendNotFound indicates a storage backend was not registered
	ErrBackendNotFound = errors.New("storage backend not found")

	// ErrInvalidCollection indicates an unusable collection name
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrInvalidEntryStatus indicates an invalid entry status
	ErrInvalidEntryStatus = errors.New("invalid entry status")

	// ErrUploadFailed indicates an upload operation failed
	ErrUploadFailed = errors.New("upload failed")

	// ErrDownloadFailed indicates a download operation failed
	ErrDownloadFailed = errors.New("download failed")
)

// EntryError represents an error related to entry operations
type EntryError struct {
	EntryID uuid.UUID
	Op      string
	Err     error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry operation %s failed for entry %s: %v", e.Op, e.EntryID, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// FileError represents an error related to file operations
type FileError struct {
	FileID uuid.UUID
	Op     string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file operation %s failed for file %s: %v", e.Op, e.FileID, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
