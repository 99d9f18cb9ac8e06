package signal

import "time"

// Debouncer coalesces bursts of trigger signals into a single callback that
// runs only after the configured interval has elapsed with no new signal.
type Debouncer struct {
	in   chan struct{}
	done chan struct{}
}

// Debounce starts a debouncer invoking fn on its own goroutine once interval
// has passed since the last Poke. Stop releases the goroutine.
func Debounce(interval time.Duration, fn func()) *Debouncer {
	d := &Debouncer{
		in:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.loop(interval, fn)
	return d
}

// Poke re-arms the quiescence timer. It never blocks; pokes arriving while
// one is already queued coalesce.
func (d *Debouncer) Poke() {
	select {
	case d.in <- struct{}{}:
	default:
	}
}

// Stop terminates the debouncer. A pending interval is abandoned without
// invoking the callback.
func (d *Debouncer) Stop() {
	close(d.done)
}

func (d *Debouncer) loop(interval time.Duration, fn func()) {
	timer := time.NewTimer(interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-d.in:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)
		case <-timer.C:
			fn()
		}
	}
}
