// Package auth owns the gateway side of the session lifecycle: login,
// logout and site switching against the upstream session endpoint. The
// cached actor snapshot is replaced wholesale on every transition so guard
// evaluations never see a half-updated permission set.
package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/xetasuite/console/internal/apiclient"
	"github.com/xetasuite/console/internal/apiclient/apierr"
	"github.com/xetasuite/console/internal/authz"
	"github.com/xetasuite/console/internal/platform/httpx"
	"github.com/xetasuite/console/internal/shared"
)

const returnToKey = "return_to"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	api       *apiclient.AuthAPI
	store     *authz.Store
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, api *apiclient.AuthAPI, store *authz.Store, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		api:       api,
		store:     store,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/switch-site", h.handleSwitchSite)
	r.Get("/me", h.handleMe)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed login payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		fieldErrors := make(map[string][]string)
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			for _, fieldErr := range invalid {
				fieldErrors[fieldErr.Field()] = append(fieldErrors[fieldErr.Field()], fieldErr.Tag())
			}
		}
		httpx.ValidationProblem(w, "login payload invalid", fieldErrors)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	actor, err := h.api.Login(r.Context(), apiclient.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		if apierr.IsValidation(err) {
			httpx.ValidationProblem(w, "login rejected", apierr.ValidationErrors(err))
			return
		}
		if apierr.IsUnauthenticated(err) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		h.logger.Warn("upstream login failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "please retry")
		return
	}

	returnTo := ""
	if sess != nil {
		sess.SetUser(strconv.FormatInt(actor.ID, 10))
		returnTo = sess.Get(returnToKey)
		sess.Delete(returnToKey)
		h.store.Replace(sess.ID, actor)
	}
	respondLocalized(w, actor, map[string]any{"data": actor, "return_to": returnTo})
}

// respondLocalized serves an actor payload tagged with the actor's
// normalized locale so the console picks its translation bundle without a
// second round-trip.
func respondLocalized(w http.ResponseWriter, actor *authz.Actor, payload map[string]any) {
	w.Header().Set("Content-Language", actor.LocaleTag().String())
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := h.api.Logout(r.Context()); err != nil {
		h.logger.Warn("upstream logout failed", slog.Any("error", err))
	}
	if sess != nil {
		h.store.Clear(sess.ID)
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

type switchSiteForm struct {
	SiteID *int64 `json:"site_id"`
}

func (h *Handler) handleSwitchSite(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	var form switchSiteForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed payload")
		return
	}
	actor, err := h.api.SwitchSite(r.Context(), form.SiteID)
	if err != nil {
		if apierr.IsNotFound(err) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "site not found")
			return
		}
		h.logger.Warn("site switch failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "please retry")
		return
	}
	h.store.Replace(sess.ID, actor)
	respondLocalized(w, actor, map[string]any{"data": actor})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	if actor := h.store.Get(sess.ID); actor != nil {
		respondLocalized(w, actor, map[string]any{"data": actor})
		return
	}
	actor, err := h.api.CurrentActor(r.Context())
	if err != nil {
		if apierr.IsUnauthenticated(err) {
			h.store.Clear(sess.ID)
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
			return
		}
		h.logger.Warn("fetch current actor", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Unavailable", "please retry")
		return
	}
	h.store.Replace(sess.ID, actor)
	respondLocalized(w, actor, map[string]any{"data": actor})
}
