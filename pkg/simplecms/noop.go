package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// EntryCreated does nothing and returns nil
func (n *NoopEventSink) EntryCreated(ctx context.Context, entry *Entry) error {
	return nil
}

// EntryUpdated does nothing and returns nil
func (n *NoopEventSink) EntryUpdated(ctx context.Context, entry *Entry) error {
	return nil
}

// EntryPublished does nothing and returns nil
func (n *NoopEventSink) EntryPublished(ctx context.Context, entry *Entry) error {
	return nil
}

// EntryDeleted does nothing and returns nil
func (n *NoopEventSink) EntryDeleted(ctx context.Context, entryID uuid.UUID) error {
	return nil
}

// FileUploaded does nothing and returns nil
func (n *NoopEventSink) FileUploaded(ctx context.Context, file *File) error {
	return nil
}

// FileDeleted does nothing and returns nil
func (n *NoopEventSink) FileDeleted(ctx context.Context, fileID uuid.UUID) error {
	return nil
}

// PermissionGranted does nothing and returns nil
func (n *NoopEventSink) PermissionGranted(ctx context.Context, permission *Permission) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action
// Useful for development and debugging
type LoggingEventSink struct {
	logger Logger
}

// Logger interface for logging events
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewLoggingEventSink creates a new logging event sink
func NewLoggingEventSink(logger Logger) EventSink {
	return &LoggingEventSink{logger: logger}
}

// EntryCreated logs the entry creation event
func (l *LoggingEventSink) EntryCreated(ctx context.Context, entry *Entry) error {
	l.logger.Infof("Entry created: ID=%s, Collection=%s, Slug=%s", entry.ID, entry.Collection, entry.Slug)
	return nil
}

// EntryUpdated logs the entry update event
func (l *LoggingEventSink) EntryUpdated(ctx context.Context, entry *Entry) error {
	l.logger.Infof("Entry updated: ID=%s, Collection=%s", entry.ID, entry.Collection)
	return nil
}

// EntryPublished logs the entry publication event
func (l *LoggingEventSink) EntryPublished(ctx context.Context, entry *Entry) error {
	l.logger.Infof("Entry published: ID=%s, Collection=%s, Slug=%s", entry.ID, entry.Collection, entry.Slug)
	return nil
}

// EntryDeleted logs the entry deletion event
func (l *LoggingEventSink) EntryDeleted(ctx context.Context, entryID uuid.UUID) error {
	l.logger.Infof("Entry deleted: ID=%s", entryID)
	return nil
}

// FileUploaded logs the file upload event
func (l *LoggingEventSink) FileUploaded(ctx context.Context, file *File) error {
	l.logger.Infof("File uploaded: ID=%s, Name=%s, Backend=%s", file.ID, file.FileName(), file.StorageBackend)
	return nil
}

// FileDeleted logs the file deletion event
func (l *LoggingEventSink) FileDeleted(ctx context.Context, fileID uuid.UUID) error {
	l.logger.Infof("File deleted: ID=%s", fileID)
	return nil
}

// PermissionGranted logs the permission grant event
func (l *LoggingEventSink) PermissionGranted(ctx context.Context, permission *Permission) error {
	l.logger.Infof("Permission granted: Role=%s, Action=%s", permission.RoleID, permission.Action)
	return nil
}
