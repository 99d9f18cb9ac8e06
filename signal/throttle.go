package signal

import "time"

// Throttler bounds the rate of value delivery: fn runs at most once per
// interval and always receives the newest value, older undelivered values
// are conflated away.
type Throttler[T any] struct {
	cell *Cell[T]
	done chan struct{}
}

// Throttle starts a throttler invoking fn on its own goroutine. Stop
// releases the goroutine.
func Throttle[T any](interval time.Duration, fn func(T)) *Throttler[T] {
	t := &Throttler[T]{
		cell: NewCell[T](),
		done: make(chan struct{}),
	}
	go t.loop(interval, fn)
	return t
}

// Send hands the newest value to the throttler without blocking. A value
// still pending delivery is replaced. Send assumes a single producer.
func (t *Throttler[T]) Send(v T) {
	t.cell.Put(v)
}

// Stop terminates the throttler. A value pending delivery is dropped.
func (t *Throttler[T]) Stop() {
	close(t.done)
}

func (t *Throttler[T]) loop(interval time.Duration, fn func(T)) {
	timer := time.NewTimer(interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-t.done:
			return
		case v := <-t.cell.C():
			fn(v)
			// Quiet period: values arriving during the interval
			// conflate in the cell until the next delivery.
			timer.Reset(interval)
			select {
			case <-t.done:
				return
			case <-timer.C:
			}
		}
	}
}
