// Package postgres provides a PostgreSQL-backed simplecms.Repository built
// on pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) simplecms.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simplecms.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "entries") {
				return simplecms.ErrEntryExists
			}
			if strings.Contains(pgErr.ConstraintName, "permissions") {
				return fmt.Errorf("permission already granted")
			}
			return fmt.Errorf("duplicate record")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Entry operations

const entryColumns = `id, collection, slug, data, status, created_at, updated_at, published_at, deleted_at`

func scanEntry(row pgx.Row) (*simplecms.Entry, error) {
	var entry simplecms.Entry
	err := row.Scan(&entry.ID, &entry.Collection, &entry.Slug, &entry.Data, &entry.Status,
		&entry.CreatedAt, &entry.UpdatedAt, &entry.PublishedAt, &entry.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) CreateEntry(ctx context.Context, entry *simplecms.Entry) error {
	query := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.Collection, entry.Slug, entry.Data, entry.Status,
		entry.CreatedAt, entry.UpdatedAt, entry.PublishedAt, entry.DeletedAt)

	if err != nil {
		return r.handlePostgresError("create entry", err)
	}

	return nil
}

func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*simplecms.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND deleted_at IS NULL`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

func (r *Repository) GetEntryBySlug(ctx context.Context, collection, slug string) (*simplecms.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE collection = $1 AND slug = $2 AND deleted_at IS NULL`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, collection, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

func (r *Repository) ListEntries(ctx context.Context, params simplecms.ListEntriesParams) ([]*simplecms.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE deleted_at IS NULL`
	var args []interface{}

	if params.Collection != "" {
		args = append(args, params.Collection)
		query += fmt.Sprintf(` AND collection = $%d`, len(args))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if params.Offset > 0 {
		args = append(args, params.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
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
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE collection = $1 AND deleted_at IS NULL`,
		collection).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) UpdateEntry(ctx context.Context, entry *simplecms.Entry) error {
	query := `
		UPDATE entries SET
			collection = $2, slug = $3, data = $4, status = $5,
			updated_at = $6, published_at = $7
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		entry.ID, entry.Collection, entry.Slug, entry.Data, entry.Status,
		entry.UpdatedAt, entry.PublishedAt)
	if err != nil {
		return r.handlePostgresError("update entry", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrEntryNotFound
	}

	return nil
}

func (r *Repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	// Soft delete: set deleted_at timestamp, keep the row for audit
	tag, err := r.db.Exec(ctx,
		`UPDATE entries SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id)
	if err != nil {
		return r.handlePostgresError("delete entry", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrEntryNotFound
	}

	return nil
}

// File operations

const fileColumns = `id, name, ext, hash, mime_type, size_bytes, alternative_text, caption,
	object_key, storage_backend, url, created_at, updated_at, deleted_at`

func scanFile(row pgx.Row) (*simplecms.File, error) {
	var file simplecms.File
	err := row.Scan(&file.ID, &file.Name, &file.Ext, &file.Hash, &file.Mime, &file.SizeBytes,
		&file.AlternativeText, &file.Caption, &file.ObjectKey, &file.StorageBackend,
		&file.URL, &file.CreatedAt, &file.UpdatedAt, &file.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.File) error {
	query := `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		file.ID, file.Name, file.Ext, file.Hash, file.Mime, file.SizeBytes,
		file.AlternativeText, file.Caption, file.ObjectKey, file.StorageBackend,
		file.URL, file.CreatedAt, file.UpdatedAt, file.DeletedAt)

	if err != nil {
		return r.handlePostgresError("create file", err)
	}

	return nil
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*simplecms.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND deleted_at IS NULL`

	file, err := scanFile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrFileNotFound
		}
		return nil, err
	}

	return file, nil
}

func (r *Repository) GetFileByName(ctx context.Context, name string) (*simplecms.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE name = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT 1`

	file, err := scanFile(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrFileNotFound
		}
		return nil, err
	}

	return file, nil
}

func (r *Repository) ListFiles(ctx context.Context) ([]*simplecms.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
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
			name = $2, ext = $3, hash = $4, mime_type = $5, size_bytes = $6,
			alternative_text = $7, caption = $8, object_key = $9, storage_backend = $10,
			url = $11, updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		file.ID, file.Name, file.Ext, file.Hash, file.Mime, file.SizeBytes,
		file.AlternativeText, file.Caption, file.ObjectKey, file.StorageBackend,
		file.URL, file.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update file", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrFileNotFound
	}

	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE files SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		id)
	if err != nil {
		return r.handlePostgresError("delete file", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrFileNotFound
	}

	return nil
}

// Role and permission operations

func (r *Repository) GetRoleByKind(ctx context.Context, kind simplecms.RoleKind) (*simplecms.Role, error) {
	var role simplecms.Role
	err := r.db.QueryRow(ctx,
		`SELECT id, kind, name, created_at FROM roles WHERE kind = $1`,
		string(kind)).Scan(&role.ID, &role.Kind, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrRoleNotFound
		}
		return nil, err
	}

	return &role, nil
}

func (r *Repository) CreatePermission(ctx context.Context, permission *simplecms.Permission) error {
	createdAt := permission.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO permissions (id, role_id, action, created_at) VALUES ($1, $2, $3, $4)`,
		permission.ID, permission.RoleID, permission.Action, createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return simplecms.ErrRoleNotFound
		}
		return r.handlePostgresError("create permission", err)
	}

	return nil
}

func (r *Repository) GetPermission(ctx context.Context, roleID uuid.UUID, action string) (*simplecms.Permission, error) {
	var permission simplecms.Permission
	err := r.db.QueryRow(ctx,
		`SELECT id, role_id, action, created_at FROM permissions WHERE role_id = $1 AND action = $2`,
		roleID, action).Scan(&permission.ID, &permission.RoleID, &permission.Action, &permission.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrPermissionNotFound
		}
		return nil, err
	}

	return &permission, nil
}

func (r *Repository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*simplecms.Permission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, role_id, action, created_at FROM permissions WHERE role_id = $1 ORDER BY action`,
		roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []*simplecms.Permission
	for rows.Next() {
		var permission simplecms.Permission
		if err := rows.Scan(&permission.ID, &permission.RoleID, &permission.Action, &permission.CreatedAt); err != nil {
			return nil, err
		}
		permissions = append(permissions, &permission)
	}

	return permissions, rows.Err()
}

// Settings operations

func (r *Repository) GetSetting(ctx context.Context, key string) (*simplecms.Setting, error) {
	var setting simplecms.Setting
	err := r.db.QueryRow(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`,
		key).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrSettingNotFound
		}
		return nil, err
	}

	return &setting, nil
}

func (r *Repository) SetSetting(ctx context.Context, setting *simplecms.Setting) error {
	updatedAt := setting.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		setting.Key, setting.Value, updatedAt)
	if err != nil {
		return r.handlePostgresError("set setting", err)
	}

	return nil
}
