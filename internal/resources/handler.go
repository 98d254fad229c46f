// Package resources proxies the console's plain CRUD resources (suppliers,
// sites, zones, materials, items and the rest) to the upstream API as raw
// JSON, applying the normalized error taxonomy at the boundary.
package resources

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xetasuite/console/internal/apiclient"
	"github.com/xetasuite/console/internal/apiclient/apierr"
	"github.com/xetasuite/console/internal/platform/httpx"
)

// Handler serves list/detail/create/update/delete for one upstream
// collection. Payloads pass through untouched; only pagination envelope and
// errors are interpreted.
type Handler struct {
	logger   *slog.Logger
	resource apiclient.Resource[json.RawMessage]
}

// NewHandler binds a Handler to an upstream collection path.
func NewHandler(logger *slog.Logger, client *apiclient.Client, path string) *Handler {
	return &Handler{
		logger:   logger,
		resource: apiclient.NewResource[json.RawMessage](client, path),
	}
}

// MountRoutes registers the CRUD routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.resource.List(r.Context(), r.URL.Query())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.resource.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": record})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed payload")
		return
	}
	record, err := h.resource.Create(r.Context(), payload)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": record})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed payload")
		return
	}
	record, err := h.resource.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": record})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.resource.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case apierr.IsNotFound(err):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case apierr.IsValidation(err):
		httpx.ValidationProblem(w, "payload rejected", apierr.ValidationErrors(err))
	case apierr.IsUnauthenticated(err):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
	default:
		h.logger.Warn("resource proxy failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "please retry")
	}
}
