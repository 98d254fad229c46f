package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xetasuite/console/internal/calendar"
)

// CalendarAPI reads and mutates calendar data upstream. Events,
// maintenance occurrences and incident occurrences live behind separate
// endpoints; CalendarData fans the reads out concurrently and merges the
// projections.
type CalendarAPI struct {
	client *Client
}

// NewCalendarAPI constructs a CalendarAPI.
func NewCalendarAPI(client *Client) *CalendarAPI {
	return &CalendarAPI{client: client}
}

func rangeQuery(rng calendar.DateRange) url.Values {
	q := url.Values{}
	q.Set("start", rng.Start.Format(time.RFC3339))
	q.Set("end", rng.End.Format(time.RFC3339))
	return q
}

// CalendarData fetches every projection selected by the filter set for the
// given range.
func (a *CalendarAPI) CalendarData(ctx context.Context, rng calendar.DateRange, filters calendar.FilterSet) ([]calendar.RenderItem, error) {
	var (
		mu    sync.Mutex
		items []calendar.RenderItem
	)
	collect := func(path string) func() error {
		return func() error {
			var batch []calendar.RenderItem
			if err := a.client.get(ctx, path, rangeQuery(rng), &batch); err != nil {
				return err
			}
			mu.Lock()
			items = append(items, batch...)
			mu.Unlock()
			return nil
		}
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(collect("/calendar/events"))
	if filters.ShowMaintenances {
		group.Go(collect("/calendar/maintenances"))
	}
	if filters.ShowIncidents {
		group.Go(collect("/calendar/incidents"))
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// TodayEvents fetches the items scheduled for the current day.
func (a *CalendarAPI) TodayEvents(ctx context.Context) ([]calendar.RenderItem, error) {
	var items []calendar.RenderItem
	if err := a.client.get(ctx, "/calendar/today", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateEvent creates a calendar event.
func (a *CalendarAPI) CreateEvent(ctx context.Context, input calendar.EventInput) (calendar.Event, error) {
	var env itemEnvelope[calendar.Event]
	if err := a.client.do(ctx, http.MethodPost, "/calendar/events", nil, input, &env); err != nil {
		return calendar.Event{}, err
	}
	return env.Data, nil
}

// UpdateEvent replaces an event's user-editable fields.
func (a *CalendarAPI) UpdateEvent(ctx context.Context, id int64, input calendar.EventInput) (calendar.Event, error) {
	var env itemEnvelope[calendar.Event]
	if err := a.client.do(ctx, http.MethodPut, "/calendar/events/"+strconv.FormatInt(id, 10), nil, input, &env); err != nil {
		return calendar.Event{}, err
	}
	return env.Data, nil
}

// UpdateEventDates commits a drag or resize result.
func (a *CalendarAPI) UpdateEventDates(ctx context.Context, id int64, change calendar.DateChange) (calendar.Event, error) {
	var env itemEnvelope[calendar.Event]
	if err := a.client.do(ctx, http.MethodPatch, "/calendar/events/"+strconv.FormatInt(id, 10)+"/dates", nil, change, &env); err != nil {
		return calendar.Event{}, err
	}
	return env.Data, nil
}

// DeleteEvent removes an event.
func (a *CalendarAPI) DeleteEvent(ctx context.Context, id int64) error {
	return a.client.do(ctx, http.MethodDelete, "/calendar/events/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// SearchCategories looks up event categories for the modal typeahead.
func (a *CalendarAPI) SearchCategories(ctx context.Context, query string) ([]calendar.Category, error) {
	q := url.Values{}
	q.Set("search", query)
	var page Page[calendar.Category]
	if err := a.client.get(ctx, "/calendar/categories", q, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}
