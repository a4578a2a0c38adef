package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-cms/pkg/simplecms/seed"
)

// AdminHandler exposes operator endpoints. Mount it behind an API key or
// comparable operator-only middleware; it performs no authorization itself.
type AdminHandler struct {
	seeder *seed.Seeder
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(seeder *seed.Seeder) *AdminHandler {
	return &AdminHandler{seeder: seeder}
}

// Routes returns the admin routes.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/seed", h.RunSeed)
	r.Get("/seed/status", h.SeedStatus)

	return r
}

// SeedResponse reports the outcome of a seed request.
type SeedResponse struct {
	Status string `json:"status"`
}

// SeedStatusResponse reports whether the example data import has run.
type SeedStatusResponse struct {
	HasRun bool `json:"has_run"`
}

// RunSeed triggers the example data import. A database seeded earlier
// reports "skipped" without touching content.
func (h *AdminHandler) RunSeed(w http.ResponseWriter, r *http.Request) {
	alreadyRan, err := h.seeder.HasRun(r.Context())
	if err != nil {
		slog.Error("Failed to read seed status", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to read seed status")
		return
	}

	if err := h.seeder.Run(r.Context()); err != nil {
		slog.Error("Seed run failed", "error", err)
		renderError(w, r, http.StatusInternalServerError, "seed run failed")
		return
	}

	status := "seeded"
	if alreadyRan {
		status = "skipped"
	}
	render.JSON(w, r, SeedResponse{Status: status})
}

// SeedStatus reports whether the example data import has run.
func (h *AdminHandler) SeedStatus(w http.ResponseWriter, r *http.Request) {
	hasRun, err := h.seeder.HasRun(r.Context())
	if err != nil {
		slog.Error("Failed to read seed status", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to read seed status")
		return
	}
	render.JSON(w, r, SeedStatusResponse{HasRun: hasRun})
}
