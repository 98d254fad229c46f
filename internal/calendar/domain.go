// Package calendar implements the console's scheduling view logic: fetch
// deduplication over date ranges and filters, and optimistic drag/resize
// reconciliation for user-created events.
package calendar

import (
	"context"
	"time"
)

// ItemType tags what a render item projects.
type ItemType string

const (
	// TypeEvent is a user-created schedulable item, the only mutable kind.
	TypeEvent ItemType = "event"
	// TypeMaintenance is a read-only maintenance occurrence projection.
	TypeMaintenance ItemType = "maintenance"
	// TypeIncident is a read-only incident occurrence projection.
	TypeIncident ItemType = "incident"
)

// Event is a user-created calendar entry. A nil EndAt means a point in
// time, or same-day for an all-day event.
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Color       string     `json:"color,omitempty"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	AllDay      bool       `json:"all_day"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
}

// RenderItem is the display projection handed to the calendar widget.
// Maintenance and incident items are sourced from other subsystems and are
// never editable.
type RenderItem struct {
	ID       int64          `json:"id"`
	Type     ItemType       `json:"type"`
	Title    string         `json:"title"`
	Start    time.Time      `json:"start"`
	End      *time.Time     `json:"end,omitempty"`
	AllDay   bool           `json:"all_day"`
	Color    string         `json:"color,omitempty"`
	Editable bool           `json:"editable"`
	Extended map[string]any `json:"extended,omitempty"`
}

// DateRange is a half-open [Start, End) window of instants.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Equal reports bit-for-bit equality of both boundaries.
func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// FilterSet selects which read-only projections accompany events.
type FilterSet struct {
	ShowMaintenances bool `json:"show_maintenances"`
	ShowIncidents    bool `json:"show_incidents"`
}

// Equal reports field-wise equality.
func (f FilterSet) Equal(other FilterSet) bool {
	return f == other
}

// Delta is the calendar-field-wise translation a drag gesture applies to an
// event's start.
type Delta struct {
	Years        int
	Months       int
	Days         int
	Milliseconds int64
}

// Apply translates an instant by the delta: years, then months, then days,
// then milliseconds, matching calendar-date arithmetic semantics.
func (d Delta) Apply(t time.Time) time.Time {
	return t.AddDate(d.Years, d.Months, d.Days).Add(time.Duration(d.Milliseconds) * time.Millisecond)
}

// EventInput is the payload for creating or updating an event.
type EventInput struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Color       string     `json:"color,omitempty" validate:"omitempty,hexcolor"`
	StartAt     time.Time  `json:"start_at" validate:"required"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	AllDay      bool       `json:"all_day"`
}

// DateChange is the payload for a drag or resize commit.
type DateChange struct {
	StartAt time.Time  `json:"start_at"`
	EndAt   *time.Time `json:"end_at,omitempty"`
	AllDay  bool       `json:"all_day"`
}

// Category is an event category used for coloring and grouping.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DataAPI reads calendar projections from upstream.
type DataAPI interface {
	CalendarData(ctx context.Context, rng DateRange, filters FilterSet) ([]RenderItem, error)
	TodayEvents(ctx context.Context) ([]RenderItem, error)
}

// EventAPI mutates calendar events upstream.
type EventAPI interface {
	CreateEvent(ctx context.Context, input EventInput) (Event, error)
	UpdateEvent(ctx context.Context, id int64, input EventInput) (Event, error)
	UpdateEventDates(ctx context.Context, id int64, change DateChange) (Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// CategoryAPI searches event categories for the modal typeahead.
type CategoryAPI interface {
	SearchCategories(ctx context.Context, query string) ([]Category, error)
}
