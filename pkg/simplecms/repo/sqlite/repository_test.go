package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/sqlite"
)

func setupRepository(t *testing.T) simplecms.Repository {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(context.Background(), db))
	return sqlite.New(db)
}

func newEntry(collection, slug string, data map[string]any) *simplecms.Entry {
	now := time.Now().UTC()
	return &simplecms.Entry{
		ID:         uuid.New(),
		Collection: collection,
		Slug:       slug,
		Data:       data,
		Status:     simplecms.EntryStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cms.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, sqlite.Migrate(ctx, db))
	require.NoError(t, sqlite.Migrate(ctx, db))
}

func TestRepository_EntryCRUD(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	entry := newEntry("article", "a-first-article", map[string]any{
		"title": "A first article",
		"tags":  []any{"news", "tech"},
	})
	require.NoError(t, repo.CreateEntry(ctx, entry))

	retrieved, err := repo.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, retrieved.ID)
	assert.Equal(t, entry.Collection, retrieved.Collection)
	assert.Equal(t, entry.Slug, retrieved.Slug)
	assert.Equal(t, "A first article", retrieved.Data["title"])
	assert.Equal(t, simplecms.EntryStatusDraft, retrieved.Status)
	assert.WithinDuration(t, entry.CreatedAt, retrieved.CreatedAt, time.Second)
	assert.Nil(t, retrieved.PublishedAt)
	assert.Nil(t, retrieved.DeletedAt)

	bySlug, err := repo.GetEntryBySlug(ctx, "article", "a-first-article")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, bySlug.ID)

	now := time.Now().UTC()
	retrieved.Status = simplecms.EntryStatusPublished
	retrieved.PublishedAt = &now
	retrieved.UpdatedAt = now
	retrieved.Data["title"] = "An updated article"
	require.NoError(t, repo.UpdateEntry(ctx, retrieved))

	updated, err := repo.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, simplecms.EntryStatusPublished, updated.Status)
	assert.Equal(t, "An updated article", updated.Data["title"])
	require.NotNil(t, updated.PublishedAt)
	assert.WithinDuration(t, now, *updated.PublishedAt, time.Second)

	require.NoError(t, repo.DeleteEntry(ctx, entry.ID))

	_, err = repo.GetEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, simplecms.ErrEntryNotFound)
	_, err = repo.GetEntryBySlug(ctx, "article", "a-first-article")
	assert.ErrorIs(t, err, simplecms.ErrEntryNotFound)

	err = repo.DeleteEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, simplecms.ErrEntryNotFound)
}

func TestRepository_EntryNotFound(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.GetEntry(ctx, uuid.New())
	assert.ErrorIs(t, err, simplecms.ErrEntryNotFound)

	err = repo.UpdateEntry(ctx, newEntry("article", "ghost", nil))
	assert.ErrorIs(t, err, simplecms.ErrEntryNotFound)
}

func TestRepository_SlugUniquePerCollection(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first := newEntry("article", "shared-slug", map[string]any{"title": "first"})
	require.NoError(t, repo.CreateEntry(ctx, first))

	// Same slug in the same collection is rejected.
	err := repo.CreateEntry(ctx, newEntry("article", "shared-slug", map[string]any{"title": "second"}))
	assert.ErrorIs(t, err, simplecms.ErrEntryExists)

	// Same slug in a different collection is fine.
	assert.NoError(t, repo.CreateEntry(ctx, newEntry("category", "shared-slug", nil)))

	// Soft-deleting the first frees the slug.
	require.NoError(t, repo.DeleteEntry(ctx, first.ID))
	assert.NoError(t, repo.CreateEntry(ctx, newEntry("article", "shared-slug", map[string]any{"title": "third"})))
}

func TestRepository_EmptySlugsDoNotCollide(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateEntry(ctx, newEntry("author", "", map[string]any{"name": "David Doe"})))
	assert.NoError(t, repo.CreateEntry(ctx, newEntry("author", "", map[string]any{"name": "Sarah Baker"})))
}

func TestRepository_ListEntries(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		entry := newEntry("article", "", map[string]any{"n": float64(i)})
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		entry.UpdatedAt = entry.CreatedAt
		if i%2 == 0 {
			entry.Status = simplecms.EntryStatusPublished
			entry.PublishedAt = &entry.CreatedAt
		}
		require.NoError(t, repo.CreateEntry(ctx, entry))
	}
	require.NoError(t, repo.CreateEntry(ctx, newEntry("category", "other", nil)))

	all, err := repo.ListEntries(ctx, simplecms.ListEntriesParams{Collection: "article"})
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Newest first.
	assert.Equal(t, float64(3), all[0].Data["n"])
	assert.Equal(t, float64(0), all[3].Data["n"])

	published := simplecms.EntryStatusPublished
	filtered, err := repo.ListEntries(ctx, simplecms.ListEntriesParams{
		Collection: "article",
		Status:     &published,
	})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	page, err := repo.ListEntries(ctx, simplecms.ListEntriesParams{
		Collection: "article",
		Limit:      2,
		Offset:     2,
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, float64(1), page[0].Data["n"])

	count, err := repo.CountEntries(ctx, "article")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestRepository_FileCRUD(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	now := time.Now().UTC()
	file := &simplecms.File{
		ID:             uuid.New(),
		Name:           "beautiful-picture",
		Ext:            ".jpg",
		Hash:           "beautiful-picture_4f9d2a81c3",
		Mime:           "image/jpeg",
		SizeBytes:      12345,
		ObjectKey:      "ab/cd/key.jpg",
		StorageBackend: "memory",
		URL:            "/uploads/x/beautiful-picture.jpg",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.CreateFile(ctx, file))

	retrieved, err := repo.GetFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.Name, retrieved.Name)
	assert.Equal(t, file.Ext, retrieved.Ext)
	assert.Equal(t, file.Mime, retrieved.Mime)
	assert.Equal(t, file.SizeBytes, retrieved.SizeBytes)

	byName, err := repo.GetFileByName(ctx, "beautiful-picture")
	require.NoError(t, err)
	assert.Equal(t, file.ID, byName.ID)

	_, err = repo.GetFileByName(ctx, "missing")
	assert.ErrorIs(t, err, simplecms.ErrFileNotFound)

	retrieved.Caption = "a beautiful picture"
	retrieved.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.UpdateFile(ctx, retrieved))

	updated, err := repo.GetFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "a beautiful picture", updated.Caption)

	files, err := repo.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	require.NoError(t, repo.DeleteFile(ctx, file.ID))

	_, err = repo.GetFile(ctx, file.ID)
	assert.ErrorIs(t, err, simplecms.ErrFileNotFound)
	_, err = repo.GetFileByName(ctx, "beautiful-picture")
	assert.ErrorIs(t, err, simplecms.ErrFileNotFound)

	files, err = repo.ListFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRepository_RolesSeededByMigration(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	public, err := repo.GetRoleByKind(ctx, simplecms.RolePublic)
	require.NoError(t, err)
	assert.Equal(t, simplecms.RolePublic, public.Kind)
	assert.Equal(t, "Public", public.Name)
	assert.False(t, public.CreatedAt.IsZero())

	authenticated, err := repo.GetRoleByKind(ctx, simplecms.RoleAuthenticated)
	require.NoError(t, err)
	assert.Equal(t, simplecms.RoleAuthenticated, authenticated.Kind)

	_, err = repo.GetRoleByKind(ctx, simplecms.RoleKind("editor"))
	assert.ErrorIs(t, err, simplecms.ErrRoleNotFound)
}

func TestRepository_Permissions(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	role, err := repo.GetRoleByKind(ctx, simplecms.RolePublic)
	require.NoError(t, err)

	permission := &simplecms.Permission{
		ID:        uuid.New(),
		RoleID:    role.ID,
		Action:    "article.find",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreatePermission(ctx, permission))

	retrieved, err := repo.GetPermission(ctx, role.ID, "article.find")
	require.NoError(t, err)
	assert.Equal(t, permission.ID, retrieved.ID)

	_, err = repo.GetPermission(ctx, role.ID, "article.delete")
	assert.ErrorIs(t, err, simplecms.ErrPermissionNotFound)

	// Duplicate action for the same role violates the unique constraint.
	err = repo.CreatePermission(ctx, &simplecms.Permission{
		ID:        uuid.New(),
		RoleID:    role.ID,
		Action:    "article.find",
		CreatedAt: time.Now().UTC(),
	})
	assert.Error(t, err)

	// Unknown role violates the foreign key.
	err = repo.CreatePermission(ctx, &simplecms.Permission{
		ID:        uuid.New(),
		RoleID:    uuid.New(),
		Action:    "article.findOne",
		CreatedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, simplecms.ErrRoleNotFound)

	require.NoError(t, repo.CreatePermission(ctx, &simplecms.Permission{
		ID:        uuid.New(),
		RoleID:    role.ID,
		Action:    "about.find",
		CreatedAt: time.Now().UTC(),
	}))

	permissions, err := repo.ListPermissions(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, permissions, 2)
	// Ordered by action.
	assert.Equal(t, "about.find", permissions[0].Action)
	assert.Equal(t, "article.find", permissions[1].Action)
}

func TestRepository_Settings(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.GetSetting(ctx, "seed.has_run")
	assert.ErrorIs(t, err, simplecms.ErrSettingNotFound)

	require.NoError(t, repo.SetSetting(ctx, &simplecms.Setting{
		Key:   "seed.has_run",
		Value: "true",
	}))

	setting, err := repo.GetSetting(ctx, "seed.has_run")
	require.NoError(t, err)
	assert.Equal(t, "true", setting.Value)
	assert.False(t, setting.UpdatedAt.IsZero())

	// Upsert overwrites the value.
	require.NoError(t, repo.SetSetting(ctx, &simplecms.Setting{
		Key:   "seed.has_run",
		Value: "false",
	}))

	setting, err = repo.GetSetting(ctx, "seed.has_run")
	require.NoError(t, err)
	assert.Equal(t, "false", setting.Value)
}
