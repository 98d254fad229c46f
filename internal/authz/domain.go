package authz

import "golang.org/x/text/language"

// Role is a named bundle of permissions granted to an actor.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Actor is the authenticated user together with their resolved roles,
// direct permissions and current site context. Actors are replaced
// wholesale on login, logout, refresh and site switch; callers must never
// mutate an Actor in place.
type Actor struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Locale        string   `json:"locale"`
	CurrentSiteID *int64   `json:"current_site_id"`
	Roles         []Role   `json:"roles"`
	Permissions   []string `json:"permissions"`
}

// LocaleTag parses the actor's locale into a BCP 47 tag, falling back to
// English for missing or malformed values.
func (a *Actor) LocaleTag() language.Tag {
	if a == nil || a.Locale == "" {
		return language.English
	}
	tag, err := language.Parse(a.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Requirement is the declarative access policy attached to a route or
// action. Permission and role lists use OR semantics unless RequireAll is
// set, in which case every named entry must pass individually.
//
// RequireAuth and RequireGuest are mutually exclusive in practice. When a
// misconfigured requirement sets both, guest-only wins: the behavior is
// undefined but deterministic, and callers should not rely on it.
type Requirement struct {
	RequireAuth  bool
	RequireGuest bool
	Permission   string
	Permissions  []string
	Role         string
	Roles        []string
	RequireAll   bool
	RequiresHQ   bool
	// RedirectTo overrides the default unauthorized redirect target.
	RedirectTo string
}

// DecisionKind enumerates guard outcomes.
type DecisionKind int

const (
	// DecisionPending means the auth status is not yet resolved.
	DecisionPending DecisionKind = iota
	// DecisionAllow grants access to the protected content.
	DecisionAllow
	// DecisionDeny refuses access and carries a redirect target.
	DecisionDeny
)

// Decision is the outcome of a guard evaluation.
type Decision struct {
	Kind DecisionKind
	// RedirectTo is set only for DecisionDeny.
	RedirectTo string
	// ReturnTo carries the originally requested location for post-login
	// continuation, set when denying an unauthenticated request.
	ReturnTo string
}

// Pending reports whether the decision is still unresolved.
func (d Decision) Pending() bool { return d.Kind == DecisionPending }

// Allowed reports whether access was granted.
func (d Decision) Allowed() bool { return d.Kind == DecisionAllow }

// Denied reports whether access was refused.
func (d Decision) Denied() bool { return d.Kind == DecisionDeny }

// Default redirect targets used by the guard.
const (
	LoginTarget        = "/auth/login"
	UnauthorizedTarget = "/unauthorized"
	HomeTarget         = "/"
)
