package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xetasuite/console/internal/shared"
)

// ActorSource resolves the current actor from the upstream session
// endpoint. The context carries the gateway session.
type ActorSource interface {
	CurrentActor(ctx context.Context) (*Actor, error)
}

// DecisionObserver records guard outcomes for metrics.
type DecisionObserver interface {
	GuardDecision(outcome, pattern string)
}

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the resolved actor, nil when unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

// Middleware wires guard decisions into the HTTP layer.
type Middleware struct {
	Guard   Guard
	Store   *Store
	Source  ActorSource
	Logger  *slog.Logger
	Metrics DecisionObserver
}

// Require guards a route with the given requirement. Denied browser
// requests are redirected; denied API requests receive a JSON-friendly
// status so the console can navigate client-side.
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return m.guard(req, req.RequireGuest)
}

// RequireRule guards a route using its entry in the table, falling back to
// authentication-only when the pattern is not declared.
func (m Middleware) RequireRule(table RouteTable, pattern string) func(http.Handler) http.Handler {
	requirement, ok := table.Find(pattern)
	if !ok {
		requirement = Requirement{RequireAuth: true}
	}
	return m.Require(requirement)
}

func (m Middleware) guard(req Requirement, guestOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := m.resolveActor(ctx)
			decision := m.Guard.Evaluate(actor, false, req, r.URL.RequestURI())
			m.observe(decision, r.URL.Path)

			switch {
			case decision.Pending():
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			case decision.Denied():
				if decision.ReturnTo != "" {
					if sess := shared.SessionFromContext(ctx); sess != nil {
						sess.Set("return_to", decision.ReturnTo)
					}
				}
				if wantsJSON(r) {
					status := http.StatusForbidden
					if decision.RedirectTo == LoginTarget {
						status = http.StatusUnauthorized
					}
					w.Header().Set("X-Redirect-To", decision.RedirectTo)
					http.Error(w, http.StatusText(status), status)
					return
				}
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r.WithContext(ContextWithActor(ctx, actor)))
			}
		})
	}
}

func (m Middleware) resolveActor(ctx context.Context) *Actor {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return nil
	}
	if actor := m.Store.Get(sess.ID); actor != nil {
		return actor
	}
	if m.Source == nil {
		return nil
	}
	actor, err := m.Source.CurrentActor(ctx)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Warn("resolve actor", slog.String("session", sess.ID), slog.Any("error", err))
		}
		return nil
	}
	m.Store.Replace(sess.ID, actor)
	return actor
}

func (m Middleware) observe(d Decision, pattern string) {
	if m.Metrics == nil {
		return
	}
	switch d.Kind {
	case DecisionAllow:
		m.Metrics.GuardDecision("allow", pattern)
	case DecisionDeny:
		m.Metrics.GuardDecision("deny", pattern)
	default:
		m.Metrics.GuardDecision("pending", pattern)
	}
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
