package signal_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/eak1mov/go-deepzoom/signal"
)

func TestCellKeepsNewest(t *testing.T) {
	c := signal.NewCell[int]()

	c.Put(1)
	c.Put(2)
	c.Put(3)

	select {
	case got := <-c.C():
		if want := 3; got != want {
			t.Errorf("received %v, want %v", got, want)
		}
	default:
		t.Fatal("cell empty after Put")
	}

	select {
	case got := <-c.C():
		t.Errorf("unexpected second value %v", got)
	default:
	}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	var fired atomic.Int32
	d := signal.Debounce(30*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	for range 10 {
		d.Poke()
		time.Sleep(2 * time.Millisecond)
	}

	if got := fired.Load(); got != 0 {
		t.Errorf("debounce fired %v times during the burst, want 0", got)
	}

	waitFor(t, time.Second, func() bool { return fired.Load() == 1 })

	// Quiescence: no further firing without new pokes.
	time.Sleep(80 * time.Millisecond)
	if got, want := fired.Load(), int32(1); got != want {
		t.Errorf("debounce fired %v times, want %v", got, want)
	}
}

func TestDebounceReArms(t *testing.T) {
	var fired atomic.Int32
	d := signal.Debounce(20*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	d.Poke()
	waitFor(t, time.Second, func() bool { return fired.Load() == 1 })

	d.Poke()
	waitFor(t, time.Second, func() bool { return fired.Load() == 2 })
}

func TestThrottleDeliversNewest(t *testing.T) {
	var last atomic.Int64
	var calls atomic.Int64
	th := signal.Throttle(30*time.Millisecond, func(v int64) {
		last.Store(v)
		calls.Add(1)
	})
	defer th.Stop()

	for v := int64(1); v <= 50; v++ {
		th.Send(v)
		time.Sleep(time.Millisecond)
	}

	waitFor(t, time.Second, func() bool { return last.Load() == 50 })

	// 50 sends over ~50ms at a 30ms interval cannot all be delivered.
	if got := calls.Load(); got >= 50 {
		t.Errorf("throttle delivered %v of 50 values, want conflation", got)
	}
}

func TestThrottleSendNeverBlocks(t *testing.T) {
	th := signal.Throttle(time.Hour, func(int) {})
	defer th.Stop()

	done := make(chan struct{})
	go func() {
		for v := range 1000 {
			th.Send(v)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked")
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}
