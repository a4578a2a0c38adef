package simplecms

import "io"

// Request/Response DTOs

// CreateEntryRequest contains parameters for creating an entry. A zero
// Status defaults to draft.
type CreateEntryRequest struct {
	Collection string
	Slug       string
	Data       map[string]any
	Status     EntryStatus
}

// UpdateEntryRequest contains parameters for updating an entry
type UpdateEntryRequest struct {
	Entry *Entry
}

// ListEntriesRequest contains parameters for listing entries
type ListEntriesRequest struct {
	Collection string
	Status     *EntryStatus
	Limit      int
	Offset     int
}

// UploadFileRequest contains parameters for uploading a media file. Name
// carries the original file name including its extension; StorageBackend
// may be empty to use the service default.
type UploadFileRequest struct {
	Name            string
	Reader          io.Reader
	AlternativeText string
	Caption         string
	StorageBackend  string
}
