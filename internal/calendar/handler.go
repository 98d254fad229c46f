package calendar

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xetasuite/console/internal/apiclient/apierr"
	"github.com/xetasuite/console/internal/platform/httpx"
	"github.com/xetasuite/console/internal/shared"
)

// Handler wires HTTP endpoints for the calendar view.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers calendar routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/range", h.handleRangeChanged)
	r.Get("/filters", h.handleFiltersChanged)
	r.Get("/today", h.handleToday)
	r.Get("/categories", h.handleCategorySearch)
	r.Post("/events", h.handleCreateEvent)
	r.Put("/events/{id}", h.handleUpdateEvent)
	r.Delete("/events/{id}", h.handleDeleteEvent)
	r.Patch("/events/{id}/move", h.handleMove)
	r.Patch("/events/{id}/resize", h.handleResize)
	r.Delete("/mount", h.handleUnmount)
}

type itemsResponse struct {
	Data    []RenderItem `json:"data"`
	Fetched bool         `json:"fetched"`
}

func (h *Handler) handleRangeChanged(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "start must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "end must be RFC3339")
		return
	}
	items, fetched, err := h.service.RangeChanged(r.Context(), h.sessionID(r), DateRange{Start: start, End: end})
	if err != nil {
		h.respondFetchError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemsResponse{Data: items, Fetched: fetched})
}

func (h *Handler) handleFiltersChanged(w http.ResponseWriter, r *http.Request) {
	filters := FilterSet{
		ShowMaintenances: r.URL.Query().Get("show_maintenances") == "1",
		ShowIncidents:    r.URL.Query().Get("show_incidents") == "1",
	}
	items, fetched, err := h.service.FiltersChanged(r.Context(), h.sessionID(r), filters)
	if err != nil {
		h.respondFetchError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemsResponse{Data: items, Fetched: fetched})
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.TodayItems(r.Context(), h.sessionID(r))
	if err != nil {
		h.respondFetchError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemsResponse{Data: items, Fetched: true})
}

func (h *Handler) handleCategorySearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	categories, err := h.service.SearchCategories(r.Context(), h.sessionID(r), query)
	if err != nil {
		if errors.Is(err, shared.ErrSuperseded) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.respondFetchError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": categories})
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var input EventInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed event payload")
		return
	}
	if errs := h.validateInput(input); errs != nil {
		httpx.ValidationProblem(w, "event payload invalid", errs)
		return
	}
	event, err := h.service.CreateEvent(r.Context(), h.sessionID(r), input)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": event})
}

func (h *Handler) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	var input EventInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed event payload")
		return
	}
	if errs := h.validateInput(input); errs != nil {
		httpx.ValidationProblem(w, "event payload invalid", errs)
		return
	}
	event, err := h.service.UpdateEvent(r.Context(), h.sessionID(r), id, input)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": event})
}

func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(r.Context(), h.sessionID(r), id); err != nil {
		h.respondMutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type gestureItem struct {
	ID     int64      `json:"id" validate:"required"`
	Type   ItemType   `json:"type" validate:"required"`
	Start  time.Time  `json:"start" validate:"required"`
	End    *time.Time `json:"end"`
	AllDay bool       `json:"all_day"`
}

type deltaPayload struct {
	Years        int   `json:"years"`
	Months       int   `json:"months"`
	Days         int   `json:"days"`
	Milliseconds int64 `json:"milliseconds"`
}

type movePayload struct {
	Item  gestureItem  `json:"item"`
	Delta deltaPayload `json:"delta"`
}

type resizePayload struct {
	Item gestureItem `json:"item"`
	End  time.Time   `json:"end" validate:"required"`
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	var payload movePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed move payload")
		return
	}
	payload.Item.ID = id
	item := renderItemFromGesture(payload.Item)
	delta := Delta{
		Years:        payload.Delta.Years,
		Months:       payload.Delta.Months,
		Days:         payload.Delta.Days,
		Milliseconds: payload.Delta.Milliseconds,
	}
	h.respondMutation(w, h.service.Move(r.Context(), h.sessionID(r), item, delta))
}

func (h *Handler) handleResize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	var payload resizePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed resize payload")
		return
	}
	payload.Item.ID = id
	item := renderItemFromGesture(payload.Item)
	h.respondMutation(w, h.service.Resize(r.Context(), h.sessionID(r), item, payload.End))
}

func (h *Handler) handleUnmount(w http.ResponseWriter, r *http.Request) {
	h.service.Unmount(h.sessionID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondMutation(w http.ResponseWriter, result MutationResult) {
	switch result.State {
	case StateConfirmed:
		httpx.JSON(w, http.StatusOK, map[string]any{"data": result.Event})
	default:
		err := result.Err
		switch {
		case errors.Is(err, ErrImmovable):
			httpx.RevertProblem(w, http.StatusUnprocessableEntity, "Cannot Move", err.Error())
		case apierr.IsNotFound(err):
			httpx.RevertProblem(w, http.StatusNotFound, "Not Found", "event no longer exists")
		default:
			h.logger.Warn("calendar mutation rejected", slog.Any("error", err))
			httpx.RevertProblem(w, http.StatusBadGateway, "Update Rejected", "the change was not saved")
		}
	}
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case apierr.IsValidation(err):
		httpx.ValidationProblem(w, "event payload rejected", apierr.ValidationErrors(err))
	case apierr.IsNotFound(err):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
	default:
		h.logger.Warn("calendar mutation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "the change was not saved")
	}
}

func (h *Handler) respondFetchError(w http.ResponseWriter, err error) {
	h.logger.Warn("calendar fetch failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "calendar data is temporarily unavailable")
}

func (h *Handler) validateInput(input EventInput) map[string][]string {
	err := h.validator.Struct(input)
	if err == nil {
		return nil
	}
	fieldErrors := make(map[string][]string)
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fieldErr := range invalid {
			fieldErrors[fieldErr.Field()] = append(fieldErrors[fieldErr.Field()], fieldErr.Tag())
		}
	} else {
		fieldErrors["_"] = []string{err.Error()}
	}
	return fieldErrors
}

func (h *Handler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid event id")
		return 0, false
	}
	return id, true
}

func (h *Handler) sessionID(r *http.Request) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return sess.ID
	}
	return ""
}

func renderItemFromGesture(g gestureItem) RenderItem {
	return RenderItem{
		ID:     g.ID,
		Type:   g.Type,
		Start:  g.Start,
		End:    g.End,
		AllDay: g.AllDay,
	}
}
