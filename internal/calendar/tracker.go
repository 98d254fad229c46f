package calendar

import (
	"context"
	"sync"
)

// FetchObserver records fetch and dedup outcomes for metrics.
type FetchObserver interface {
	CalendarFetch(trigger string)
	CalendarDeduped(trigger string)
}

// RangeTracker is the single gate deciding whether a calendar data fetch is
// necessary. It keeps one authoritative (range, filters) baseline; the
// baseline is updated synchronously before the fetch is issued, so a second
// rapid change is judged against the new baseline rather than racing the
// in-flight request. Responses carry a sequence number and stale ones are
// dropped instead of overwriting newer data. A failed fetch invalidates the
// baseline so a retry of the same tuple is not absorbed as a duplicate.
//
// For N change notifications with no consecutive duplicate (range, filters)
// tuple, exactly N fetches are issued; consecutive duplicates issue none.
type RangeTracker struct {
	data    DataAPI
	metrics FetchObserver

	mu          sync.Mutex
	hasBaseline bool
	lastRange   DateRange
	lastFilters FilterSet
	issuedSeq   uint64
	appliedSeq  uint64
	items       []RenderItem
}

// NewRangeTracker constructs a tracker over the given data source.
func NewRangeTracker(data DataAPI, metrics FetchObserver) *RangeTracker {
	return &RangeTracker{data: data, metrics: metrics}
}

// RangeChanged handles a range notification from the calendar widget.
// An exact repeat of the current baseline range is a no-op serving cached
// items; widgets fire their initial range synchronously with mount, and the
// naive fetch-on-every-callback approach double-fetches there. Any other
// range becomes the new baseline and issues exactly one fetch, picking up
// the filters in effect at this moment.
func (t *RangeTracker) RangeChanged(ctx context.Context, newRange DateRange) ([]RenderItem, bool, error) {
	t.mu.Lock()
	if t.hasBaseline && t.lastRange.Equal(newRange) {
		items := t.snapshotLocked()
		t.mu.Unlock()
		t.deduped("range")
		return items, false, nil
	}
	t.hasBaseline = true
	t.lastRange = newRange
	filters := t.lastFilters
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	return t.fetch(ctx, seq, newRange, filters, "range")
}

// FiltersChanged handles a filter toggle. Before any range is established
// it defers; the eventual RangeChanged call picks up current filters. A
// field-wise equal set is a no-op guarding against spurious re-fires on
// mount. Otherwise the filters become the new baseline and exactly one
// fetch is issued for the established range.
func (t *RangeTracker) FiltersChanged(ctx context.Context, newFilters FilterSet) ([]RenderItem, bool, error) {
	t.mu.Lock()
	if !t.hasBaseline {
		t.lastFilters = newFilters
		t.mu.Unlock()
		t.deduped("filters")
		return nil, false, nil
	}
	if t.lastFilters.Equal(newFilters) {
		items := t.snapshotLocked()
		t.mu.Unlock()
		t.deduped("filters")
		return items, false, nil
	}
	t.lastFilters = newFilters
	rng := t.lastRange
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	return t.fetch(ctx, seq, rng, newFilters, "filters")
}

// MutationCommitted refetches the current baseline unconditionally; a
// successful create, update or delete invalidates the cached view
// regardless of equality checks.
func (t *RangeTracker) MutationCommitted(ctx context.Context) ([]RenderItem, bool, error) {
	t.mu.Lock()
	if !t.hasBaseline {
		t.mu.Unlock()
		return nil, false, nil
	}
	rng := t.lastRange
	filters := t.lastFilters
	seq := t.nextSeqLocked()
	t.mu.Unlock()

	return t.fetch(ctx, seq, rng, filters, "mutation")
}

// Items returns the cached render items.
func (t *RangeTracker) Items() []RenderItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Baseline returns the current dedup key, and whether one is established.
func (t *RangeTracker) Baseline() (DateRange, FilterSet, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastRange, t.lastFilters, t.hasBaseline
}

// EventItem returns a copy of the cached render item for an event.
func (t *RangeTracker) EventItem(eventID int64) (RenderItem, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range t.items {
		if item.Type == TypeEvent && item.ID == eventID {
			return item, true
		}
	}
	return RenderItem{}, false
}

// ApplyEventDates updates the cached render item for an event in place so
// the widget does not snap back after an optimistic commit.
func (t *RangeTracker) ApplyEventDates(eventID int64, change DateChange) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		if t.items[i].Type == TypeEvent && t.items[i].ID == eventID {
			t.items[i].Start = change.StartAt
			t.items[i].End = change.EndAt
			t.items[i].AllDay = change.AllDay
			return
		}
	}
}

func (t *RangeTracker) fetch(ctx context.Context, seq uint64, rng DateRange, filters FilterSet, trigger string) ([]RenderItem, bool, error) {
	if t.metrics != nil {
		t.metrics.CalendarFetch(trigger)
	}
	items, err := t.data.CalendarData(ctx, rng, filters)
	if err != nil {
		// Invalidate the baseline so a retry of the same tuple refetches
		// instead of being absorbed as a duplicate; leave it alone when a
		// newer fetch has already been issued.
		t.mu.Lock()
		if t.issuedSeq == seq {
			t.hasBaseline = false
		}
		t.mu.Unlock()
		return nil, true, err
	}
	t.mu.Lock()
	if seq >= t.appliedSeq {
		t.appliedSeq = seq
		t.items = items
	}
	snapshot := t.snapshotLocked()
	t.mu.Unlock()
	return snapshot, true, nil
}

func (t *RangeTracker) nextSeqLocked() uint64 {
	t.issuedSeq++
	return t.issuedSeq
}

func (t *RangeTracker) snapshotLocked() []RenderItem {
	out := make([]RenderItem, len(t.items))
	copy(out, t.items)
	return out
}

func (t *RangeTracker) deduped(trigger string) {
	if t.metrics != nil {
		t.metrics.CalendarDeduped(trigger)
	}
}

// TodayTracker fetches the current day's items exactly once per mount,
// independent of range and filter changes, and again after each mutation
// commit.
type TodayTracker struct {
	data    DataAPI
	metrics FetchObserver

	mu      sync.Mutex
	fetched bool
	items   []RenderItem
}

// NewTodayTracker constructs a TodayTracker.
func NewTodayTracker(data DataAPI, metrics FetchObserver) *TodayTracker {
	return &TodayTracker{data: data, metrics: metrics}
}

// Items returns today's items, fetching them on first use only.
func (t *TodayTracker) Items(ctx context.Context) ([]RenderItem, error) {
	t.mu.Lock()
	if t.fetched {
		items := make([]RenderItem, len(t.items))
		copy(items, t.items)
		t.mu.Unlock()
		return items, nil
	}
	t.mu.Unlock()
	return t.Refresh(ctx)
}

// Refresh refetches today's items unconditionally.
func (t *TodayTracker) Refresh(ctx context.Context) ([]RenderItem, error) {
	if t.metrics != nil {
		t.metrics.CalendarFetch("today")
	}
	items, err := t.data.TodayEvents(ctx)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.fetched = true
	t.items = items
	snapshot := make([]RenderItem, len(items))
	copy(snapshot, items)
	t.mu.Unlock()
	return snapshot, nil
}
