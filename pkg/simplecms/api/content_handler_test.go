package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-cms/pkg/simplecms"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

const testJWTSecret = "test-secret"

// setupContentAPI creates the content router backed by in-memory storage,
// with public read access granted for articles, categories and the global
// single type. Authors stay ungranted to exercise denials.
func setupContentAPI(t *testing.T) (http.Handler, simplecms.Service) {
	t.Helper()

	service, err := simplecms.New(
		simplecms.WithRepository(memoryrepo.New()),
		simplecms.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)

	ctx := context.Background()
	public, err := service.GetRole(ctx, simplecms.RolePublic)
	require.NoError(t, err)
	for _, action := range []string{
		"article.find", "article.findOne",
		"category.find", "category.findOne",
		"global.find",
	} {
		_, err := service.GrantPermission(ctx, public.ID, action)
		require.NoError(t, err)
	}

	return Router(service, testJWTSecret), service
}

func createTestEntry(t *testing.T, service simplecms.Service, collection, slug string, status simplecms.EntryStatus) *simplecms.Entry {
	t.Helper()

	entry, err := service.CreateEntry(context.Background(), simplecms.CreateEntryRequest{
		Collection: collection,
		Slug:       slug,
		Data:       map[string]any{"title": "Title for " + slug},
		Status:     status,
	})
	require.NoError(t, err)
	return entry
}

func doGet(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestContentHandler_ListEntries(t *testing.T) {
	handler, service := setupContentAPI(t)

	createTestEntry(t, service, simplecms.CollectionArticle, "first", simplecms.EntryStatusPublished)
	createTestEntry(t, service, simplecms.CollectionArticle, "second", simplecms.EntryStatusPublished)
	createTestEntry(t, service, simplecms.CollectionArticle, "hidden", simplecms.EntryStatusDraft)

	w := doGet(t, handler, "/article")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []EntryResponse `json:"data"`
		Meta map[string]any  `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	// Drafts stay invisible on the public surface.
	assert.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Meta["count"])
	for _, entry := range resp.Data {
		assert.Equal(t, string(simplecms.EntryStatusPublished), entry.Status)
	}
}

func TestContentHandler_ListEntries_Pagination(t *testing.T) {
	handler, service := setupContentAPI(t)

	for i := 0; i < 3; i++ {
		createTestEntry(t, service, simplecms.CollectionArticle, fmt.Sprintf("article-%d", i), simplecms.EntryStatusPublished)
	}

	w := doGet(t, handler, "/article?limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []EntryResponse `json:"data"`
		Meta map[string]any  `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Meta["limit"])

	w = doGet(t, handler, "/article?limit=2&offset=2")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)

	w = doGet(t, handler, "/article?limit=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doGet(t, handler, "/article?offset=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentHandler_ListEntries_UnknownCollection(t *testing.T) {
	handler, _ := setupContentAPI(t)

	w := doGet(t, handler, "/products")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown collection")
}

func TestContentHandler_ListEntries_Forbidden(t *testing.T) {
	handler, service := setupContentAPI(t)

	createTestEntry(t, service, simplecms.CollectionAuthor, "", simplecms.EntryStatusPublished)

	// No author.find grant exists for the public role.
	w := doGet(t, handler, "/author")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, http.StatusForbidden, resp.Error.Status)
	assert.Equal(t, "access denied", resp.Error.Message)
}

func TestContentHandler_ListEntries_SingleType(t *testing.T) {
	handler, service := setupContentAPI(t)

	t.Run("no entry yet", func(t *testing.T) {
		w := doGet(t, handler, "/global")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	entry := createTestEntry(t, service, simplecms.CollectionGlobal, "", simplecms.EntryStatusPublished)

	t.Run("entry exists", func(t *testing.T) {
		w := doGet(t, handler, "/global")
		require.Equal(t, http.StatusOK, w.Code)

		// Single types return the entry itself, not a list.
		var resp struct {
			Data EntryResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, entry.ID.String(), resp.Data.ID)
	})
}

func TestContentHandler_GetEntry(t *testing.T) {
	handler, service := setupContentAPI(t)

	entry := createTestEntry(t, service, simplecms.CollectionArticle, "we-love-pizza", simplecms.EntryStatusPublished)

	t.Run("by slug", func(t *testing.T) {
		w := doGet(t, handler, "/article/we-love-pizza")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data EntryResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, entry.ID.String(), resp.Data.ID)
		assert.Equal(t, "we-love-pizza", resp.Data.Slug)
	})

	t.Run("by id", func(t *testing.T) {
		w := doGet(t, handler, "/article/"+entry.ID.String())
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data EntryResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "we-love-pizza", resp.Data.Slug)
	})

	t.Run("not found", func(t *testing.T) {
		w := doGet(t, handler, "/article/no-such-article")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("draft is invisible", func(t *testing.T) {
		createTestEntry(t, service, simplecms.CollectionArticle, "unfinished", simplecms.EntryStatusDraft)

		w := doGet(t, handler, "/article/unfinished")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong collection", func(t *testing.T) {
		category := createTestEntry(t, service, simplecms.CollectionCategory, "news", simplecms.EntryStatusPublished)

		w := doGet(t, handler, "/article/"+category.ID.String())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
