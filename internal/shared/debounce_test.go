package shared

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleLastWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran atomic.Int32
	done := make(chan struct{})

	d.Schedule(func() { ran.Add(10) })
	d.Schedule(func() { ran.Add(100) })
	d.Schedule(func() {
		ran.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	require.Equal(t, int32(1), ran.Load(), "only the last scheduled call runs")
}

func TestStopCancelsPendingCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran atomic.Int32

	d.Schedule(func() { ran.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, ran.Load())
}

func TestDoSupersededByNewerCall(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls atomic.Int32
	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = d.Do(context.Background(), func() error {
				calls.Add(1)
				return nil
			})
		}(i)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	superseded := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, ErrSuperseded)
			superseded++
		}
	}
	require.Equal(t, 1, superseded)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	d := NewDebouncer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Do(ctx, func() error {
		t.Fatal("must not run after cancellation")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
