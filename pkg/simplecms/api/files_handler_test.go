package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-cms/pkg/simplecms"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

func setupFilesHandlerTest(t *testing.T) (http.Handler, simplecms.Service) {
	t.Helper()

	service, err := simplecms.New(
		simplecms.WithRepository(memoryrepo.New()),
		simplecms.WithBlobStore("memory", memorystorage.New()),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Mount("/", NewFilesHandler(service).Routes())
	return router, service
}

func TestFilesHandler_ServeFile(t *testing.T) {
	handler, service := setupFilesHandlerTest(t)

	const svg = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`
	file, err := service.UploadFile(context.Background(), simplecms.UploadFileRequest{
		Name:   "cover.svg",
		Reader: strings.NewReader(svg),
	})
	require.NoError(t, err)

	t.Run("with filename segment", func(t *testing.T) {
		w := doGet(t, handler, "/"+file.ID.String()+"/"+file.FileName())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, svg, w.Body.String())
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.NotEmpty(t, w.Header().Get("Content-Length"))
	})

	t.Run("by id only", func(t *testing.T) {
		w := doGet(t, handler, "/"+file.ID.String())
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, svg, w.Body.String())
	})
}

func TestFilesHandler_ServeFile_InvalidID(t *testing.T) {
	handler, _ := setupFilesHandlerTest(t)

	w := doGet(t, handler, "/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid file ID")
}

func TestFilesHandler_ServeFile_NotFound(t *testing.T) {
	handler, _ := setupFilesHandlerTest(t)

	w := doGet(t, handler, "/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilesHandler_ServeFile_DeletedFile(t *testing.T) {
	handler, service := setupFilesHandlerTest(t)

	file, err := service.UploadFile(context.Background(), simplecms.UploadFileRequest{
		Name:   "gone.txt",
		Reader: strings.NewReader("bye"),
	})
	require.NoError(t, err)
	require.NoError(t, service.DeleteFile(context.Background(), file.ID))

	w := doGet(t, handler, "/"+file.ID.String())
	assert.Equal(t, http.StatusNotFound, w.Code)
}
