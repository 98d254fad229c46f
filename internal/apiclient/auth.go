package apiclient

import (
	"context"
	"net/http"

	"github.com/xetasuite/console/internal/authz"
)

// AuthAPI talks to the upstream session endpoint. The upstream session is
// keyed by the gateway session cookie forwarded with every call.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI constructs an AuthAPI.
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Credentials is the login payload proxied verbatim to upstream.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CurrentActor fetches the authenticated actor with resolved roles,
// permissions and site context.
func (a *AuthAPI) CurrentActor(ctx context.Context) (*authz.Actor, error) {
	var env itemEnvelope[authz.Actor]
	if err := a.client.get(ctx, "/auth/me", nil, &env); err != nil {
		return nil, err
	}
	actor := env.Data
	return &actor, nil
}

// Login establishes an upstream session and returns the resulting actor.
func (a *AuthAPI) Login(ctx context.Context, creds Credentials) (*authz.Actor, error) {
	var env itemEnvelope[authz.Actor]
	if err := a.client.do(ctx, http.MethodPost, "/auth/login", nil, creds, &env); err != nil {
		return nil, err
	}
	actor := env.Data
	return &actor, nil
}

// Logout tears the upstream session down.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// SwitchSite changes the actor's current site context and returns the
// refreshed actor, which must replace the cached one wholesale.
func (a *AuthAPI) SwitchSite(ctx context.Context, siteID *int64) (*authz.Actor, error) {
	payload := map[string]any{"site_id": nil}
	if siteID != nil {
		payload["site_id"] = *siteID
	}
	var env itemEnvelope[authz.Actor]
	if err := a.client.do(ctx, http.MethodPost, "/auth/switch-site", nil, payload, &env); err != nil {
		return nil, err
	}
	actor := env.Data
	return &actor, nil
}
