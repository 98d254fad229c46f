package shared

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls so only the last scheduled one runs.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer constructs a Debouncer with the given quiet window.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule runs fn after the quiet window unless another Schedule call
// arrives first, in which case the earlier fn is cancelled and rescheduled.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending scheduled call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Do blocks for the quiet window and then runs fn, unless a newer Do call
// arrived in the meantime. A superseded call returns ErrSuperseded without
// running fn, so within any burst only the last caller executes.
func (d *Debouncer) Do(ctx context.Context, fn func() error) error {
	d.mu.Lock()
	d.seq++
	mine := d.seq
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	d.mu.Lock()
	latest := d.seq == mine
	d.mu.Unlock()
	if !latest {
		return ErrSuperseded
	}
	return fn()
}
