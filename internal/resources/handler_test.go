package resources

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/xetasuite/console/internal/apiclient"
)

func newProxy(t *testing.T, upstream http.Handler) http.Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	client, err := apiclient.New(srv.URL, "xetasuite_session", 5*time.Second, nil)
	require.NoError(t, err)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), client, "/suppliers")
	router := chi.NewRouter()
	router.Route("/suppliers", handler.MountRoutes)
	return router
}

func TestListPassesQueryAndEnvelopeThrough(t *testing.T) {
	proxy := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/suppliers", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "acme", r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Acme"}],"meta":{"current_page":2,"last_page":3,"per_page":25,"total":70}}`))
	}))

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers?page=2&search=acme", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Acme"`)
	require.Contains(t, rec.Body.String(), `"last_page":3`)
}

func TestCreateForwardsBodyUntouched(t *testing.T) {
	var gotBody string
	proxy := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":7,"name":"Acme"}}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(`{"name":"Acme","contact":{"phone":"555"}}`))
	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"name":"Acme","contact":{"phone":"555"}}`, gotBody)
	require.Contains(t, rec.Body.String(), `"id":7`)
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name         string
		upstream     http.HandlerFunc
		method, path string
		wantStatus   int
		wantBody     string
	}{
		{
			name: "not found",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"No query results"}`, http.StatusNotFound)
			},
			method: http.MethodGet, path: "/suppliers/99",
			wantStatus: http.StatusNotFound, wantBody: "record not found",
		},
		{
			name: "validation",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"message":"invalid","errors":{"name":["required"]}}`))
			},
			method: http.MethodPut, path: "/suppliers/1",
			wantStatus: http.StatusUnprocessableEntity, wantBody: `"name":["required"]`,
		},
		{
			name: "session expired",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			method: http.MethodDelete, path: "/suppliers/1",
			wantStatus: http.StatusUnauthorized, wantBody: "session expired",
		},
		{
			name: "upstream down",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			method: http.MethodGet, path: "/suppliers",
			wantStatus: http.StatusBadGateway, wantBody: "Upstream Unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proxy := newProxy(t, tc.upstream)
			var body io.Reader
			if tc.method == http.MethodPut {
				body = strings.NewReader(`{"name":""}`)
			}
			rec := httptest.NewRecorder()
			proxy.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, body))
			require.Equal(t, tc.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestDeleteReturnsNoContent(t *testing.T) {
	proxy := newProxy(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/suppliers/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/suppliers/3", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}
