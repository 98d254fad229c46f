package calendar

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/xetasuite/console/internal/apiclient/apierr"
)

func newTestHandler(data *fakeData, events *fakeEvents) http.Handler {
	svc := newTestService(data, events, &fakeCategories{})
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	router := chi.NewRouter()
	router.Route("/calendar", handler.MountRoutes)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRangeChangedReportsFetched(t *testing.T) {
	data := &fakeData{items: []RenderItem{{ID: 1, Type: TypeEvent, Title: "Audit"}}}
	router := newTestHandler(data, &fakeEvents{})
	target := "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z"

	rec := doJSON(t, router, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var first itemsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.True(t, first.Fetched)
	require.Len(t, first.Data, 1)

	rec = doJSON(t, router, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var second itemsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.False(t, second.Fetched, "identical range must be served from the baseline")

	calls, _ := data.calls()
	require.Equal(t, 1, calls)
}

func TestHandleRangeChangedRejectsBadTimestamps(t *testing.T) {
	router := newTestHandler(&fakeData{}, &fakeEvents{})

	rec := doJSON(t, router, http.MethodGet, "/calendar/range?start=yesterday&end=2024-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateEventValidates(t *testing.T) {
	router := newTestHandler(&fakeData{}, &fakeEvents{})

	rec := doJSON(t, router, http.MethodPost, "/calendar/events", `{"description":"no title"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Title")
	require.Contains(t, rec.Body.String(), "required")
}

func TestHandleCreateEventHappyPath(t *testing.T) {
	events := &fakeEvents{created: Event{ID: 9, Title: "Audit"}}
	router := newTestHandler(&fakeData{}, events)

	rec := doJSON(t, router, http.MethodPost, "/calendar/events",
		`{"title":"Audit","start_at":"2024-01-10T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":9`)
}

func TestHandleMoveRejectsReadOnlyItems(t *testing.T) {
	events := &fakeEvents{}
	router := newTestHandler(&fakeData{}, events)

	rec := doJSON(t, router, http.MethodPatch, "/calendar/events/5/move",
		`{"item":{"id":5,"type":"maintenance","start":"2024-01-10T09:00:00Z"},"delta":{"days":1}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), `"revert":true`)
	require.Zero(t, events.updateDatesCalls)
}

func TestHandleMoveCommits(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	data := &fakeData{items: []RenderItem{{ID: 5, Type: TypeEvent, Start: start, End: &end}}}
	events := &fakeEvents{}
	router := newTestHandler(data, events)

	rec := doJSON(t, router, http.MethodGet, "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/calendar/events/5/move",
		`{"item":{"id":5,"type":"event","start":"2024-01-10T09:00:00Z","end":"2024-01-10T10:00:00Z"},"delta":{"days":1}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, events.updateDatesCalls)
	require.True(t, events.lastChange.StartAt.Equal(start.AddDate(0, 0, 1)))
	require.NotNil(t, events.lastChange.EndAt)
	require.True(t, events.lastChange.EndAt.Equal(end.AddDate(0, 0, 1)))
}

func TestHandleMoveRevertsOnUpstreamRejection(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	data := &fakeData{items: []RenderItem{{ID: 5, Type: TypeEvent, Start: start}}}
	events := &fakeEvents{updateErr: errors.New("upstream rejected the change")}
	router := newTestHandler(data, events)

	rec := doJSON(t, router, http.MethodGet, "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/calendar/events/5/move",
		`{"item":{"id":5,"type":"event","start":"2024-01-10T09:00:00Z"},"delta":{"days":1}}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), `"revert":true`)
}

func TestHandleMoveVanishedEventRevertsNotFound(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	data := &fakeData{items: []RenderItem{{ID: 5, Type: TypeEvent, Start: start}}}
	events := &fakeEvents{updateErr: &apierr.Error{Status: http.StatusNotFound, Message: "No query results"}}
	router := newTestHandler(data, events)

	rec := doJSON(t, router, http.MethodGet, "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/calendar/events/5/move",
		`{"item":{"id":5,"type":"event","start":"2024-01-10T09:00:00Z"},"delta":{"days":1}}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"revert":true`)
}

func TestHandleResizeTakesGestureEnd(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	data := &fakeData{items: []RenderItem{{ID: 5, Type: TypeEvent, Start: start}}}
	events := &fakeEvents{}
	router := newTestHandler(data, events)

	rec := doJSON(t, router, http.MethodGet, "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/calendar/events/5/resize",
		`{"item":{"id":5,"type":"event","start":"2024-01-10T09:00:00Z"},"end":"2024-01-10T12:30:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, events.lastChange.EndAt)
	require.True(t, events.lastChange.EndAt.Equal(time.Date(2024, 1, 10, 12, 30, 0, 0, time.UTC)))
}

func TestHandleEventIDValidation(t *testing.T) {
	router := newTestHandler(&fakeData{}, &fakeEvents{})

	rec := doJSON(t, router, http.MethodDelete, "/calendar/events/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/calendar/events/0", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCategorySearch(t *testing.T) {
	router := newTestHandler(&fakeData{}, &fakeEvents{})

	rec := doJSON(t, router, http.MethodGet, "/calendar/categories?search=insp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Inspections")
}

func TestHandleUnmount(t *testing.T) {
	data := &fakeData{}
	router := newTestHandler(data, &fakeEvents{})

	rec := doJSON(t, router, http.MethodGet, "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/calendar/mount", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// A remount refetches even for the previously cached range.
	rec = doJSON(t, router, http.MethodGet, "/calendar/range?start=2024-01-01T00:00:00Z&end=2024-02-01T00:00:00Z", "")
	var resp itemsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Fetched)
	calls, _ := data.calls()
	require.Equal(t, 2, calls)
}
