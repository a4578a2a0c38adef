package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// FilesHandler streams uploaded media files.
type FilesHandler struct {
	service simplecms.Service
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(service simplecms.Service) *FilesHandler {
	return &FilesHandler{service: service}
}

// Routes returns the routes for uploaded files. The trailing filename
// segment is decorative; files are addressed by ID.
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{fileID}", h.ServeFile)
	r.Get("/{fileID}/{filename}", h.ServeFile)

	return r
}

// ServeFile streams one uploaded file with its stored content type.
func (h *FilesHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "fileID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid file ID")
		return
	}

	file, err := h.service.GetFile(r.Context(), id)
	if errors.Is(err, simplecms.ErrFileNotFound) {
		renderError(w, r, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		slog.Error("Failed to load file", "file_id", idStr, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to load file")
		return
	}

	rc, err := h.service.DownloadFile(r.Context(), id)
	if err != nil {
		slog.Error("Failed to download file", "file_id", idStr, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to download file")
		return
	}
	defer rc.Close()

	if file.Mime != "" {
		w.Header().Set("Content-Type", file.Mime)
	}
	if file.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream file", "file_id", idStr, "error", err)
	}
}
