package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrImmovable rejects a gesture on anything but a user-created event.
var ErrImmovable = errors.New("calendar: only events can be moved or resized")

// MutationState tracks an optimistic mutation through its protocol:
// applied optimistically, then confirmed by upstream or reverted.
type MutationState int

const (
	// StateApplied means the local view shows the change, upstream pending.
	StateApplied MutationState = iota
	// StateConfirmed means upstream accepted the change.
	StateConfirmed
	// StateReverted means upstream rejected it and the local view was
	// restored.
	StateReverted
)

// MutationResult is the outcome of a drag or resize commit. Revert tells
// the widget to restore its pre-gesture visual position.
type MutationResult struct {
	State  MutationState
	Event  Event
	Revert bool
	Err    error
}

// Reconciler translates drag/resize gestures into validated mutation
// requests, applies optimistic local updates and rolls back on rejection.
// The widget disables interaction during the round-trip, so at most one
// mutation gesture is in flight per item.
type Reconciler struct {
	events  EventAPI
	tracker *RangeTracker
	today   *TodayTracker
	logger  *slog.Logger
}

// NewReconciler constructs a Reconciler bound to one tracker pair.
func NewReconciler(events EventAPI, tracker *RangeTracker, today *TodayTracker, logger *slog.Logger) *Reconciler {
	return &Reconciler{events: events, tracker: tracker, today: today, logger: logger}
}

// ValidateMoveTarget rejects render items that are not user-created events
// before any network call happens. Maintenance and incident projections are
// read-only.
func (r *Reconciler) ValidateMoveTarget(item RenderItem) error {
	if item.Type != TypeEvent {
		return ErrImmovable
	}
	return nil
}

// ComputePreservedEnd derives the end instant for a dragged event. An event
// with an explicit end keeps its exact duration: the end is translated by
// the same delta as the start. An all-day event without an explicit end
// stays single-day: the new end equals the new start. A timed event without
// an end stays a point in time.
func (r *Reconciler) ComputePreservedEnd(original Event, newStart time.Time, delta Delta) *time.Time {
	if original.EndAt != nil {
		end := delta.Apply(*original.EndAt)
		return &end
	}
	if original.AllDay {
		end := newStart
		return &end
	}
	return nil
}

// CommitMove commits a drag gesture. The delta is the translation the
// gesture applied to the event's start; identical coordinates still commit,
// gestures are not assumed to be cheaply idempotent-detectable.
func (r *Reconciler) CommitMove(ctx context.Context, original Event, delta Delta) MutationResult {
	newStart := delta.Apply(original.StartAt)
	change := DateChange{
		StartAt: newStart,
		EndAt:   r.ComputePreservedEnd(original, newStart, delta),
		AllDay:  original.AllDay,
	}
	return r.commit(ctx, original.ID, change)
}

// CommitResize commits a resize gesture. Resize manipulates the end
// boundary directly, so the gesture's reported end is taken as is.
func (r *Reconciler) CommitResize(ctx context.Context, original Event, gestureEnd time.Time) MutationResult {
	end := gestureEnd
	change := DateChange{
		StartAt: original.StartAt,
		EndAt:   &end,
		AllDay:  original.AllDay,
	}
	return r.commit(ctx, original.ID, change)
}

func (r *Reconciler) commit(ctx context.Context, eventID int64, change DateChange) MutationResult {
	var (
		prev    RenderItem
		hadPrev bool
	)
	if r.tracker != nil {
		prev, hadPrev = r.tracker.EventItem(eventID)
		r.tracker.ApplyEventDates(eventID, change)
	}

	event, err := r.events.UpdateEventDates(ctx, eventID, change)
	if err != nil {
		if hadPrev {
			r.tracker.ApplyEventDates(eventID, DateChange{StartAt: prev.Start, EndAt: prev.End, AllDay: prev.AllDay})
		}
		return MutationResult{State: StateReverted, Revert: true, Err: err}
	}

	// The move may have entered or left today.
	if r.today != nil {
		if _, err := r.today.Refresh(ctx); err != nil && r.logger != nil {
			r.logger.Warn("refresh today after move", slog.Any("error", err))
		}
	}
	return MutationResult{State: StateConfirmed, Event: event}
}
