package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xetasuite/console/internal/shared"
)

// DefaultSearchDelay is the quiet window for typeahead searches.
const DefaultSearchDelay = 300 * time.Millisecond

// Service owns per-session calendar state: one tracker pair and one
// reconciler per mounted calendar view, plus the debounced category
// typeahead used by the event modal.
type Service struct {
	data        DataAPI
	events      EventAPI
	categories  CategoryAPI
	metrics     FetchObserver
	logger      *slog.Logger
	searchDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	tracker    *RangeTracker
	today      *TodayTracker
	reconciler *Reconciler
	search     *shared.Debouncer
}

// NewService constructs a Service.
func NewService(data DataAPI, events EventAPI, categories CategoryAPI, metrics FetchObserver, logger *slog.Logger) *Service {
	return &Service{
		data:        data,
		events:      events,
		categories:  categories,
		metrics:     metrics,
		logger:      logger,
		searchDelay: DefaultSearchDelay,
		sessions:    make(map[string]*sessionState),
	}
}

func (s *Service) session(id string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[id]
	if !ok {
		tracker := NewRangeTracker(s.data, s.metrics)
		today := NewTodayTracker(s.data, s.metrics)
		state = &sessionState{
			tracker:    tracker,
			today:      today,
			reconciler: NewReconciler(s.events, tracker, today, s.logger),
			search:     shared.NewDebouncer(s.searchDelay),
		}
		s.sessions[id] = state
	}
	return state
}

// Unmount drops a session's calendar state. The next mount starts with a
// fresh baseline and a fresh once-per-mount today fetch.
func (s *Service) Unmount(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[sessionID]; ok {
		state.search.Stop()
		delete(s.sessions, sessionID)
	}
}

// RangeChanged forwards a widget range notification to the session's
// tracker.
func (s *Service) RangeChanged(ctx context.Context, sessionID string, rng DateRange) ([]RenderItem, bool, error) {
	return s.session(sessionID).tracker.RangeChanged(ctx, rng)
}

// FiltersChanged forwards a filter toggle to the session's tracker.
func (s *Service) FiltersChanged(ctx context.Context, sessionID string, filters FilterSet) ([]RenderItem, bool, error) {
	return s.session(sessionID).tracker.FiltersChanged(ctx, filters)
}

// TodayItems serves the independent today view.
func (s *Service) TodayItems(ctx context.Context, sessionID string) ([]RenderItem, error) {
	return s.session(sessionID).today.Items(ctx)
}

// CreateEvent creates an event and refreshes both the range view and the
// today view.
func (s *Service) CreateEvent(ctx context.Context, sessionID string, input EventInput) (Event, error) {
	event, err := s.events.CreateEvent(ctx, input)
	if err != nil {
		return Event{}, err
	}
	s.refreshAfterMutation(ctx, sessionID)
	return event, nil
}

// UpdateEvent updates an event's editable fields and refreshes the views.
func (s *Service) UpdateEvent(ctx context.Context, sessionID string, id int64, input EventInput) (Event, error) {
	event, err := s.events.UpdateEvent(ctx, id, input)
	if err != nil {
		return Event{}, err
	}
	s.refreshAfterMutation(ctx, sessionID)
	return event, nil
}

// DeleteEvent removes an event and refreshes the views.
func (s *Service) DeleteEvent(ctx context.Context, sessionID string, id int64) error {
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.refreshAfterMutation(ctx, sessionID)
	return nil
}

// Move commits a drag gesture for the given render item.
func (s *Service) Move(ctx context.Context, sessionID string, item RenderItem, delta Delta) MutationResult {
	state := s.session(sessionID)
	if err := state.reconciler.ValidateMoveTarget(item); err != nil {
		return MutationResult{State: StateReverted, Revert: true, Err: err}
	}
	return state.reconciler.CommitMove(ctx, eventFromItem(item), delta)
}

// Resize commits a resize gesture for the given render item.
func (s *Service) Resize(ctx context.Context, sessionID string, item RenderItem, gestureEnd time.Time) MutationResult {
	state := s.session(sessionID)
	if err := state.reconciler.ValidateMoveTarget(item); err != nil {
		return MutationResult{State: StateReverted, Revert: true, Err: err}
	}
	return state.reconciler.CommitResize(ctx, eventFromItem(item), gestureEnd)
}

// SearchCategories debounces keystroke-driven category lookups; within a
// burst only the last query reaches upstream, earlier callers get
// shared.ErrSuperseded.
func (s *Service) SearchCategories(ctx context.Context, sessionID, query string) ([]Category, error) {
	state := s.session(sessionID)
	var result []Category
	err := state.search.Do(ctx, func() error {
		found, err := s.categories.SearchCategories(ctx, query)
		if err != nil {
			return err
		}
		result = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// refreshAfterMutation refetches the range baseline and the today view
// concurrently. Failures are logged, not surfaced: the mutation itself
// already succeeded.
func (s *Service) refreshAfterMutation(ctx context.Context, sessionID string) {
	state := s.session(sessionID)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		_, _, err := state.tracker.MutationCommitted(ctx)
		return err
	})
	group.Go(func() error {
		_, err := state.today.Refresh(ctx)
		return err
	})
	if err := group.Wait(); err != nil && s.logger != nil {
		s.logger.Warn("refresh after mutation", slog.Any("error", err))
	}
}

func eventFromItem(item RenderItem) Event {
	return Event{
		ID:      item.ID,
		StartAt: item.Start,
		EndAt:   item.End,
		AllDay:  item.AllDay,
	}
}
