package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. The database must already be migrated,
// see Migrate.
func New(db *sql.DB) simplecms.Repository {
	return &Repository{db: db}
}

// Timestamps are stored as RFC 3339 text so they sort correctly and stay
// readable in the sqlite3 shell.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Entry operations

const entryColumns = `id, collection, slug, data, status, created_at, updated_at, published_at, deleted_at`

func scanEntry(row rowScanner) (*simplecms.Entry, error) {
	var (
		entry       simplecms.Entry
		data        string
		createdAt   string
		updatedAt   string
		publishedAt sql.NullString
		deletedAt   sql.NullString
	)

	err := row.Scan(&entry.ID, &entry.Collection, &entry.Slug, &data, &entry.Status,
		&createdAt, &updatedAt, &publishedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &entry.Data); err != nil {
		return nil, fmt.Errorf("decode entry data: %w", err)
	}
	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if entry.PublishedAt, err = parseNullableTime(publishedAt); err != nil {
		return nil, err
	}
	if entry.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *Repository) CreateEntry(ctx context.Context, entry *simplecms.Entry) error {
	data, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("encode entry data: %w", err)
	}

	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.Collection, entry.Slug, string(data), entry.Status,
		formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt),
		formatNullableTime(entry.PublishedAt), formatNullableTime(entry.DeletedAt))

	if isUniqueViolation(err) {
		return simplecms.ErrEntryExists
	}
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	return nil
}

func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*simplecms.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ? AND deleted_at IS NULL`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *Repository) GetEntryBySlug(ctx context.Context, collection, slug string) (*simplecms.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE collection = ? AND slug = ? AND deleted_at IS NULL`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, collection, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *Repository) ListEntries(ctx context.Context, params simplecms.ListEntriesParams) ([]*simplecms.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE deleted_at IS NULL`
	var args []any

	if params.Collection != "" {
		query += ` AND collection = ?`
		args = append(args, params.Collection)
	}
	if params.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*params.Status))
	}
	query += ` ORDER BY created_at DESC`

	if params.Limit > 0 || params.Offset > 0 {
		limit := params.Limit
		if limit <= 0 {
			limit = -1 // no limit, offset only
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, params.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*simplecms.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *Repository) CountEntries(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE collection = ? AND deleted_at IS NULL`,
		collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}

	return count, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry *simplecms.Entry) error {
	data, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("encode entry data: %w", err)
	}

	query := `
		UPDATE entries SET
			collection = ?, slug = ?, data = ?, status = ?,
			updated_at = ?, published_at = ?
		WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		entry.Collection, entry.Slug, string(data), entry.Status,
		formatTime(entry.UpdatedAt), formatNullableTime(entry.PublishedAt),
		entry.ID)
	if isUniqueViolation(err) {
		return simplecms.ErrEntryExists
	}
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return simplecms.ErrEntryNotFound
	}

	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	now := formatTime(time.Now())

	result, err := r.db.ExecContext(ctx,
		`UPDATE entries SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return simplecms.ErrEntryNotFound
	}

	return nil
}

// File operations

const fileColumns = `id, name, ext, hash, mime_type, size_bytes, alternative_text, caption,
	object_key, storage_backend, url, created_at, updated_at, deleted_at`

func scanFile(row rowScanner) (*simplecms.File, error) {
	var (
		file      simplecms.File
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := row.Scan(&file.ID, &file.Name, &file.Ext, &file.Hash, &file.Mime, &file.SizeBytes,
		&file.AlternativeText, &file.Caption, &file.ObjectKey, &file.StorageBackend,
		&file.URL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if file.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if file.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if file.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}

	return &file, nil
}

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.File) error {
	query := `
		INSERT INTO files (` + fileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.Name, file.Ext, file.Hash, file.Mime, file.SizeBytes,
		file.AlternativeText, file.Caption, file.ObjectKey, file.StorageBackend,
		file.URL, formatTime(file.CreatedAt), formatTime(file.UpdatedAt),
		formatNullableTime(file.DeletedAt))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplecms.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ? AND deleted_at IS NULL`

	file, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *Repository) GetFileByName(ctx context.Context, name string) (*simplecms.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE name = ? AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT 1`

	file, err := scanFile(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *Repository) ListFiles(ctx context.Context) ([]*simplecms.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*simplecms.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

func (r *Repository) UpdateFile(ctx context.Context, file *simplecms.File) error {
	query := `
		UPDATE files SET
			name = ?, ext = ?, hash = ?, mime_type = ?, size_bytes = ?,
			alternative_text = ?, caption = ?, object_key = ?, storage_backend = ?,
			url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		file.Name, file.Ext, file.Hash, file.Mime, file.SizeBytes,
		file.AlternativeText, file.Caption, file.ObjectKey, file.StorageBackend,
		file.URL, formatTime(file.UpdatedAt),
		file.ID)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return simplecms.ErrFileNotFound
	}

	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	now := formatTime(time.Now())

	result, err := r.db.ExecContext(ctx,
		`UPDATE files SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return simplecms.ErrFileNotFound
	}

	return nil
}

// Role and permission operations

func (r *Repository) GetRoleByKind(ctx context.Context, kind simplecms.RoleKind) (*simplecms.Role, error) {
	var (
		role      simplecms.Role
		createdAt string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, kind, name, created_at FROM roles WHERE kind = ?`,
		string(kind)).Scan(&role.ID, &role.Kind, &role.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}

	if role.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *Repository) CreatePermission(ctx context.Context, permission *simplecms.Permission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (id, role_id, action, created_at) VALUES (?, ?, ?, ?)`,
		permission.ID, permission.RoleID, permission.Action, formatTime(permission.CreatedAt))

	if isUniqueViolation(err) {
		return fmt.Errorf("permission %q already granted to role %s", permission.Action, permission.RoleID)
	}
	if isForeignKeyViolation(err) {
		return simplecms.ErrRoleNotFound
	}
	if err != nil {
		return fmt.Errorf("create permission: %w", err)
	}

	return nil
}

func (r *Repository) GetPermission(ctx context.Context, roleID uuid.UUID, action string) (*simplecms.Permission, error) {
	var (
		permission simplecms.Permission
		createdAt  string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, role_id, action, created_at FROM permissions WHERE role_id = ? AND action = ?`,
		roleID, action).Scan(&permission.ID, &permission.RoleID, &permission.Action, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrPermissionNotFound
	}
	if err != nil {
		return nil, err
	}

	if permission.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &permission, nil
}

func (r *Repository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*simplecms.Permission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role_id, action, created_at FROM permissions WHERE role_id = ? ORDER BY action`,
		roleID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var permissions []*simplecms.Permission
	for rows.Next() {
		var (
			permission simplecms.Permission
			createdAt  string
		)
		if err := rows.Scan(&permission.ID, &permission.RoleID, &permission.Action, &createdAt); err != nil {
			return nil, err
		}
		if permission.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		permissions = append(permissions, &permission)
	}

	return permissions, rows.Err()
}

// Settings operations

func (r *Repository) GetSetting(ctx context.Context, key string) (*simplecms.Setting, error) {
	var (
		setting   simplecms.Setting
		updatedAt string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = ?`,
		key).Scan(&setting.Key, &setting.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simplecms.ErrSettingNotFound
	}
	if err != nil {
		return nil, err
	}

	if setting.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &setting, nil
}

func (r *Repository) SetSetting(ctx context.Context, setting *simplecms.Setting) error {
	updatedAt := setting.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		setting.Key, setting.Value, formatTime(updatedAt))
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}

	return nil
}
