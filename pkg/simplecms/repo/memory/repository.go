// Package memory provides an in-memory simplecms.Repository, used by tests
// and zero-dependency deployments.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu          sync.RWMutex
	entries     map[uuid.UUID]*simplecms.Entry
	files       map[uuid.UUID]*simplecms.File
	roles       map[simplecms.RoleKind]*simplecms.Role
	permissions map[uuid.UUID]map[string]*simplecms.Permission // role_id -> action
	settings    map[string]*simplecms.Setting
}

// New creates a new in-memory repository. The built-in roles exist from the
// start, matching what the SQL migrations seed.
func New() simplecms.Repository {
	r := &Repository{
		entries:     make(map[uuid.UUID]*simplecms.Entry),
		files:       make(map[uuid.UUID]*simplecms.File),
		roles:       make(map[simplecms.RoleKind]*simplecms.Role),
		permissions: make(map[uuid.UUID]map[string]*simplecms.Permission),
		settings:    make(map[string]*simplecms.Setting),
	}

	now := time.Now().UTC()
	for kind, name := range map[simplecms.RoleKind]string{
		simplecms.RolePublic:        "Public",
		simplecms.RoleAuthenticated: "Authenticated",
	} {
		r.roles[kind] = &simplecms.Role{
			ID:        uuid.New(),
			Kind:      kind,
			Name:      name,
			CreatedAt: now,
		}
	}

	return r
}

// copyEntry clones an entry including the top level of its data document.
func copyEntry(entry *simplecms.Entry) *simplecms.Entry {
	entryCopy := *entry
	if entry.Data != nil {
		entryCopy.Data = maps.Clone(entry.Data)
	}
	return &entryCopy
}

// Entry operations

func (r *Repository) CreateEntry(ctx context.Context, entry *simplecms.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkSlug(entry); err != nil {
		return err
	}

	r.entries[entry.ID] = copyEntry(entry)
	return nil
}

// checkSlug enforces slug uniqueness per collection among live entries, the
// same constraint the SQL repositories carry as a partial unique index.
func (r *Repository) checkSlug(entry *simplecms.Entry) error {
	if entry.Slug == "" {
		return nil
	}
	for _, existing := range r.entries {
		if existing.ID == entry.ID || existing.DeletedAt != nil {
			continue
		}
		if existing.Collection == entry.Collection && existing.Slug == entry.Slug {
			return fmt.Errorf("%w: slug %q in collection %q", simplecms.ErrEntryExists, entry.Slug, entry.Collection)
		}
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*simplecms.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists || entry.DeletedAt != nil {
		return nil, simplecms.ErrEntryNotFound
	}

	return copyEntry(entry), nil
}

func (r *Repository) GetEntryBySlug(ctx context.Context, collection, slug string) (*simplecms.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.Collection == collection && entry.Slug == slug && entry.DeletedAt == nil {
			return copyEntry(entry), nil
		}
	}

	return nil, simplecms.ErrEntryNotFound
}

func (r *Repository) ListEntries(ctx context.Context, params simplecms.ListEntriesParams) ([]*simplecms.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Entry
	for _, entry := range r.entries {
		if entry.DeletedAt != nil {
			continue
		}
		if params.Collection != "" && entry.Collection != params.Collection {
			continue
		}
		if params.Status != nil && entry.Status != *params.Status {
			continue
		}
		result = append(result, copyEntry(entry))
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if params.Offset > 0 {
		if params.Offset >= len(result) {
			return nil, nil
		}
		result = result[params.Offset:]
	}
	if params.Limit > 0 && params.Limit < len(result) {
		result = result[:params.Limit]
	}

	return result, nil
}

func (r *Repository) CountEntries(ctx context.Context, collection string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, entry := range r.entries {
		if entry.Collection == collection && entry.DeletedAt == nil {
			count++
		}
	}

	return count, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry *simplecms.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.entries[entry.ID]
	if !exists || existing.DeletedAt != nil {
		return simplecms.ErrEntryNotFound
	}
	if err := r.checkSlug(entry); err != nil {
		return err
	}

	r.entries[entry.ID] = copyEntry(entry)
	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists || entry.DeletedAt != nil {
		return simplecms.ErrEntryNotFound
	}

	now := time.Now().UTC()
	entry.DeletedAt = &now
	entry.UpdatedAt = now
	return nil
}

// File operations

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fileCopy := *file
	r.files[file.ID] = &fileCopy
	return nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplecms.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, exists := r.files[id]
	if !exists || file.DeletedAt != nil {
		return nil, simplecms.ErrFileNotFound
	}

	fileCopy := *file
	return &fileCopy, nil
}

func (r *Repository) GetFileByName(ctx context.Context, name string) (*simplecms.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, file := range r.files {
		if file.Name == name && file.DeletedAt == nil {
			fileCopy := *file
			return &fileCopy, nil
		}
	}

	return nil, simplecms.ErrFileNotFound
}

func (r *Repository) ListFiles(ctx context.Context) ([]*simplecms.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.File
	for _, file := range r.files {
		if file.DeletedAt != nil {
			continue
		}
		fileCopy := *file
		result = append(result, &fileCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) UpdateFile(ctx context.Context, file *simplecms.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.files[file.ID]
	if !exists || existing.DeletedAt != nil {
		return simplecms.ErrFileNotFound
	}

	fileCopy := *file
	r.files[file.ID] = &fileCopy
	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, exists := r.files[id]
	if !exists || file.DeletedAt != nil {
		return simplecms.ErrFileNotFound
	}

	now := time.Now().UTC()
	file.DeletedAt = &now
	file.UpdatedAt = now
	return nil
}

// Role and permission operations

func (r *Repository) GetRoleByKind(ctx context.Context, kind simplecms.RoleKind) (*simplecms.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, exists := r.roles[kind]
	if !exists {
		return nil, simplecms.ErrRoleNotFound
	}

	roleCopy := *role
	return &roleCopy, nil
}

func (r *Repository) CreatePermission(ctx context.Context, permission *simplecms.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var roleExists bool
	for _, role := range r.roles {
		if role.ID == permission.RoleID {
			roleExists = true
			break
		}
	}
	if !roleExists {
		return simplecms.ErrRoleNotFound
	}

	byAction, ok := r.permissions[permission.RoleID]
	if !ok {
		byAction = make(map[string]*simplecms.Permission)
		r.permissions[permission.RoleID] = byAction
	}
	if _, exists := byAction[permission.Action]; exists {
		return fmt.Errorf("permission %q already granted to role %s", permission.Action, permission.RoleID)
	}

	permissionCopy := *permission
	byAction[permission.Action] = &permissionCopy
	return nil
}

func (r *Repository) GetPermission(ctx context.Context, roleID uuid.UUID, action string) (*simplecms.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	permission, exists := r.permissions[roleID][action]
	if !exists {
		return nil, simplecms.ErrPermissionNotFound
	}

	permissionCopy := *permission
	return &permissionCopy, nil
}

func (r *Repository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*simplecms.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.Permission
	for _, permission := range r.permissions[roleID] {
		permissionCopy := *permission
		result = append(result, &permissionCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Action < result[j].Action
	})

	return result, nil
}

// Settings operations

func (r *Repository) GetSetting(ctx context.Context, key string) (*simplecms.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	setting, exists := r.settings[key]
	if !exists {
		return nil, simplecms.ErrSettingNotFound
	}

	settingCopy := *setting
	return &settingCopy, nil
}

func (r *Repository) SetSetting(ctx context.Context, setting *simplecms.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settingCopy := *setting
	if settingCopy.UpdatedAt.IsZero() {
		settingCopy.UpdatedAt = time.Now().UTC()
	}
	r.settings[setting.Key] = &settingCopy
	return nil
}
