// Package signal provides the small concurrency combinators the engine is
// built on: a conflated latest-value cell, a quiescence debouncer and a
// newest-value throttler.
package signal

// Cell is a single-slot latest-value mailbox. Put never blocks: a value
// still pending delivery is displaced by the newer one, so the consumer
// always observes the most recent state instead of a backlog.
//
// Cell assumes a single producer; multiple consumers are fine.
type Cell[T any] struct {
	ch chan T
}

func NewCell[T any]() *Cell[T] {
	return &Cell[T]{ch: make(chan T, 1)}
}

// Put stores v, replacing any value not yet consumed.
func (c *Cell[T]) Put(v T) {
	for {
		select {
		case c.ch <- v:
			return
		default:
		}
		// Slot full: displace the stale value and retry. With a single
		// producer the retry succeeds immediately.
		select {
		case <-c.ch:
		default:
		}
	}
}

// C returns the receive side of the cell.
func (c *Cell[T]) C() <-chan T {
	return c.ch
}
