package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/xetasuite/console/internal/apiclient"
	"github.com/xetasuite/console/internal/auth"
	"github.com/xetasuite/console/internal/authz"
	"github.com/xetasuite/console/internal/calendar"
	"github.com/xetasuite/console/internal/observability"
	"github.com/xetasuite/console/internal/platform/httpx"
	"github.com/xetasuite/console/internal/resources"
	"github.com/xetasuite/console/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	APIClient       *apiclient.Client
	AuthHandler     *auth.Handler
	CalendarHandler *calendar.Handler
	Guard           authz.Middleware
	Routes          authz.RouteTable
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults. Every entry in
// the route table is mounted behind its declared requirement; resource
// patterns get the generic upstream proxy.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have access to this resource")
	})
	if params.Metrics != nil {
		r.Get("/metrics", params.Metrics.Handler().ServeHTTP)
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
	})

	r.Route("/calendar", func(r chi.Router) {
		r.Use(params.Guard.RequireRule(params.Routes, "/calendar"))
		params.CalendarHandler.MountRoutes(r)
	})

	for _, rule := range params.Routes {
		switch rule.Pattern {
		case "/", "/auth/login", "/calendar", "/scan":
			// Not resource collections; mounted above or client-side only.
		default:
			proxy := resources.NewHandler(params.Logger, params.APIClient, rule.Pattern)
			r.Route(rule.Pattern, func(r chi.Router) {
				r.Use(params.Guard.Require(rule.Requirement))
				proxy.MountRoutes(r)
			})
		}
	}

	return r
}
