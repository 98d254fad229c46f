package calendar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xetasuite/console/internal/shared"
)

type fakeCategories struct {
	mu      sync.Mutex
	calls   int
	queries []string
}

func (f *fakeCategories) SearchCategories(ctx context.Context, query string) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	return []Category{{ID: 1, Name: "Inspections"}}, nil
}

func newTestService(data *fakeData, events *fakeEvents, categories *fakeCategories) *Service {
	svc := NewService(data, events, categories, nil, nil)
	svc.searchDelay = 50 * time.Millisecond
	return svc
}

func TestCreateEventRefreshesRangeAndToday(t *testing.T) {
	data := &fakeData{}
	events := &fakeEvents{created: Event{ID: 11, Title: "Audit"}}
	svc := newTestService(data, events, &fakeCategories{})
	ctx := context.Background()

	_, _, err := svc.RangeChanged(ctx, "sess", mustRange(t, "2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z"))
	require.NoError(t, err)

	event, err := svc.CreateEvent(ctx, "sess", EventInput{Title: "Audit", StartAt: time.Now()})
	require.NoError(t, err)
	require.Equal(t, int64(11), event.ID)

	dataCalls, todayCalls := data.calls()
	require.Equal(t, 2, dataCalls, "initial range fetch plus mutation refetch")
	require.Equal(t, 1, todayCalls)
}

func TestDeleteEventRefreshesViews(t *testing.T) {
	data := &fakeData{}
	events := &fakeEvents{}
	svc := newTestService(data, events, &fakeCategories{})
	ctx := context.Background()

	_, _, err := svc.RangeChanged(ctx, "sess", mustRange(t, "2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, "sess", 3))

	dataCalls, todayCalls := data.calls()
	require.Equal(t, 2, dataCalls)
	require.Equal(t, 1, todayCalls)
}

func TestMoveRejectsReadOnlyItemsWithoutNetwork(t *testing.T) {
	data := &fakeData{}
	events := &fakeEvents{}
	svc := newTestService(data, events, &fakeCategories{})

	result := svc.Move(context.Background(), "sess", RenderItem{ID: 1, Type: TypeIncident}, Delta{Days: 1})
	require.Equal(t, StateReverted, result.State)
	require.True(t, result.Revert)
	require.ErrorIs(t, result.Err, ErrImmovable)
	require.Zero(t, events.updateDatesCalls)
}

func TestSessionsAreIsolated(t *testing.T) {
	data := &fakeData{}
	svc := newTestService(data, &fakeEvents{}, &fakeCategories{})
	ctx := context.Background()
	r1 := mustRange(t, "2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z")

	_, fetched, err := svc.RangeChanged(ctx, "a", r1)
	require.NoError(t, err)
	require.True(t, fetched)

	// A second session has its own baseline and fetches independently.
	_, fetched, err = svc.RangeChanged(ctx, "b", r1)
	require.NoError(t, err)
	require.True(t, fetched)

	dataCalls, _ := data.calls()
	require.Equal(t, 2, dataCalls)
}

func TestUnmountResetsTrackerState(t *testing.T) {
	data := &fakeData{}
	svc := newTestService(data, &fakeEvents{}, &fakeCategories{})
	ctx := context.Background()
	r1 := mustRange(t, "2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z")

	_, _, err := svc.RangeChanged(ctx, "sess", r1)
	require.NoError(t, err)
	svc.Unmount("sess")

	// Remount: the same range is a fresh baseline, so it fetches again.
	_, fetched, err := svc.RangeChanged(ctx, "sess", r1)
	require.NoError(t, err)
	require.True(t, fetched)
}

func TestSearchCategoriesDebouncesKeystrokes(t *testing.T) {
	categories := &fakeCategories{}
	svc := newTestService(&fakeData{}, &fakeEvents{}, categories)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 3)
	for i, q := range []string{"i", "in", "ins"} {
		wg.Add(1)
		go func(idx int, query string) {
			defer wg.Done()
			_, err := svc.SearchCategories(ctx, "sess", query)
			results[idx] = err
		}(i, q)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	superseded := 0
	for _, err := range results {
		if err != nil {
			require.ErrorIs(t, err, shared.ErrSuperseded)
			superseded++
		}
	}
	require.Equal(t, 2, superseded, "only the last keystroke executes")

	categories.mu.Lock()
	defer categories.mu.Unlock()
	require.Equal(t, 1, categories.calls)
	require.Equal(t, []string{"ins"}, categories.queries)
}
