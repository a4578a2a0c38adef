package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus is the domain type for entry lifecycle states.
type EntryStatus string

// Entry status constants (typed).
const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusPublished EntryStatus = "published"
)

// Collection names used by the bundled example schema. Collections are
// free-form strings at the repository level; these constants cover the
// content types the example data and the API defaults work with.
const (
	CollectionArticle  = "article"
	CollectionAuthor   = "author"
	CollectionCategory = "category"
	CollectionGlobal   = "global"
	CollectionAbout    = "about"
)

// DefaultCollections returns the content types served by default.
func DefaultCollections() []string {
	return []string{
		CollectionArticle,
		CollectionAuthor,
		CollectionCategory,
		CollectionGlobal,
		CollectionAbout,
	}
}

// SingleEntry reports whether a collection is a single type, i.e. holds at
// most one live entry (site-wide settings, the about page).
func SingleEntry(collection string) bool {
	return collection == CollectionGlobal || collection == CollectionAbout
}

// Permission action verbs.
const (
	ActionFind    = "find"
	ActionFindOne = "findOne"
)

// PermissionAction builds the action string stored on a permission,
// e.g. "article.find".
func PermissionAction(collection, verb string) string {
	return collection + "." + verb
}

// RoleKind is the domain type for built-in role kinds.
type RoleKind string

// Role kind constants (typed).
const (
	RolePublic        RoleKind = "public"
	RoleAuthenticated RoleKind = "authenticated"
)

// Entry represents one content document in a collection. Field values live
// in Data exactly as they arrived from the caller or the fixture; the
// repository stores them as a single JSON document per entry.
type Entry struct {
	ID          uuid.UUID      `json:"id"`
	Collection  string         `json:"collection"`
	Slug        string         `json:"slug,omitempty"`
	Data        map[string]any `json:"data"`
	Status      EntryStatus    `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// File represents an uploaded media file. Name is stored without its
// extension; Ext keeps the leading dot (Name "beautiful-picture",
// Ext ".jpg").
type File struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	AlternativeText string     `json:"alternative_text,omitempty"`
	Caption         string     `json:"caption,omitempty"`
	Hash            string     `json:"hash"`
	Ext             string     `json:"ext"`
	Mime            string     `json:"mime"`
	SizeBytes       int64      `json:"size_bytes"`
	ObjectKey       string     `json:"object_key"`
	StorageBackend  string     `json:"storage_backend"`
	URL             string     `json:"url"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// FileName returns the file name with its extension restored.
func (f *File) FileName() string {
	return f.Name + f.Ext
}

// Role represents a built-in access role.
type Role struct {
	ID        uuid.UUID `json:"id"`
	Kind      RoleKind  `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Permission grants a role one action, e.g. "article.find".
type Permission struct {
	ID        uuid.UUID `json:"id"`
	RoleID    uuid.UUID `json:"role_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Setting is a persisted key/value pair for small pieces of application
// state, such as the first-run marker written by the seeder.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
