// Package api exposes the public read surface of a simplecms service over
// HTTP: collection listing, entry lookup and media delivery. Access is
// decided per request from the role the middleware resolves and the
// permissions stored by the service.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Envelope wraps every content response body.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// ErrorResponse is the error body shape shared by all endpoints.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the HTTP status and a short message.
type ErrorDetail struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// EntryResponse is the response body for one entry.
type EntryResponse struct {
	ID          string         `json:"id"`
	Collection  string         `json:"collection"`
	Slug        string         `json:"slug,omitempty"`
	Status      string         `json:"status"`
	Data        map[string]any `json:"data"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// ContentHandler serves the read-only collection endpoints.
type ContentHandler struct {
	service simplecms.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service simplecms.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the routes for content collections
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{collection}", h.ListEntries)
	r.Get("/{collection}/{idOrSlug}", h.GetEntry)

	return r
}

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// ListEntries returns the published entries of one collection. Single types
// respond with the entry itself instead of a list.
func (h *ContentHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !knownCollection(collection) {
		renderError(w, r, http.StatusNotFound, "unknown collection")
		return
	}
	if !h.authorize(w, r, collection, simplecms.ActionFind) {
		return
	}

	status := simplecms.EntryStatusPublished

	if simplecms.SingleEntry(collection) {
		entries, err := h.service.ListEntries(r.Context(), simplecms.ListEntriesRequest{
			Collection: collection,
			Status:     &status,
			Limit:      1,
		})
		if err != nil {
			slog.Error("Failed to list entries", "collection", collection, "error", err)
			renderError(w, r, http.StatusInternalServerError, "failed to list entries")
			return
		}
		if len(entries) == 0 {
			renderError(w, r, http.StatusNotFound, "entry not found")
			return
		}
		render.JSON(w, r, Envelope{Data: toEntryResponse(entries[0])})
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.service.ListEntries(r.Context(), simplecms.ListEntriesRequest{
		Collection: collection,
		Status:     &status,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		slog.Error("Failed to list entries", "collection", collection, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to list entries")
		return
	}

	items := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, toEntryResponse(entry))
	}

	render.JSON(w, r, Envelope{
		Data: items,
		Meta: map[string]any{
			"count":  len(items),
			"limit":  limit,
			"offset": offset,
		},
	})
}

// GetEntry returns one published entry addressed by UUID or slug.
func (h *ContentHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if !knownCollection(collection) {
		renderError(w, r, http.StatusNotFound, "unknown collection")
		return
	}
	if !h.authorize(w, r, collection, simplecms.ActionFindOne) {
		return
	}

	var (
		entry *simplecms.Entry
		err   error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		entry, err = h.service.GetEntry(r.Context(), id)
	} else {
		entry, err = h.service.GetEntryBySlug(r.Context(), collection, idOrSlug)
	}
	if errors.Is(err, simplecms.ErrEntryNotFound) {
		renderError(w, r, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		slog.Error("Failed to get entry", "collection", collection, "id_or_slug", idOrSlug, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to get entry")
		return
	}

	// An entry addressed through the wrong collection or not yet published
	// behaves like a missing one.
	if entry.Collection != collection || entry.Status != simplecms.EntryStatusPublished {
		renderError(w, r, http.StatusNotFound, "entry not found")
		return
	}

	render.JSON(w, r, Envelope{Data: toEntryResponse(entry)})
}

// authorize checks the caller's role for collection.verb and renders the
// error response when access is denied.
func (h *ContentHandler) authorize(w http.ResponseWriter, r *http.Request, collection, verb string) bool {
	role := RoleFromContext(r.Context())
	action := simplecms.PermissionAction(collection, verb)

	ok, err := h.service.HasPermission(r.Context(), role, action)
	if err != nil {
		slog.Error("Permission check failed", "role", role, "action", action, "error", err)
		renderError(w, r, http.StatusInternalServerError, "permission check failed")
		return false
	}
	if !ok {
		renderError(w, r, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

func knownCollection(collection string) bool {
	return slices.Contains(simplecms.DefaultCollections(), collection)
}

func pagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("invalid limit %q", raw)
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", raw)
		}
	}
	return limit, offset, nil
}

func toEntryResponse(entry *simplecms.Entry) EntryResponse {
	return EntryResponse{
		ID:          entry.ID.String(),
		Collection:  entry.Collection,
		Slug:        entry.Slug,
		Status:      string(entry.Status),
		Data:        entry.Data,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
		PublishedAt: entry.PublishedAt,
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Status: status, Message: message}})
}
