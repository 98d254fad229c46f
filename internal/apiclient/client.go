// Package apiclient talks to the upstream XetaSuite REST API. Every call
// is scoped to the gateway session found in the request context, forwarded
// upstream as the session cookie.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xetasuite/console/internal/apiclient/apierr"
)

// Client is the base JSON client for the upstream API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cookieName string
	logger     *slog.Logger
}

// New constructs a Client for the given base URL.
func New(baseURL, cookieName string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		cookieName: cookieName,
		logger:     logger,
	}, nil
}

type sessionKey struct{}

// ContextWithSessionID scopes subsequent upstream calls to a gateway
// session.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFromContext returns the session the context is scoped to.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

type envelope struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &apierr.Error{Status: 0, Message: fmt.Sprintf("encode request: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reqBody)
	if err != nil {
		return &apierr.Error{Status: 0, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := SessionIDFromContext(ctx); id != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: id})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apierr.Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.errorFrom(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apierr.Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

func (c *Client) errorFrom(resp *http.Response) error {
	apiErr := &apierr.Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if c.logger != nil {
			c.logger.Debug("non-json upstream error", slog.Int("status", resp.StatusCode))
		}
		return apiErr
	}
	if env.Message != "" {
		apiErr.Message = env.Message
	}
	if len(env.Errors) > 0 {
		apiErr.ValidationErrors = env.Errors
	}
	return apiErr
}
