package cache

import (
	"cmp"
	"slices"

	"github.com/google/hilbert"

	"github.com/eak1mov/go-deepzoom/collect"
	"github.com/eak1mov/go-deepzoom/raster"
	"github.com/eak1mov/go-deepzoom/tile"
	"github.com/eak1mov/go-deepzoom/view"
)

// requestMissing diffs the snapshot against the render set and the in-flight
// set and issues the missing specs to the pipeline. A spec already in flight
// is never resent.
func (c *Controller) requestMissing(visible *view.VisibleTiles) {
	var batch []collect.Request
	for row, r := range visible.Matrix {
		for col := r.Min; col <= r.Max; col++ {
			spec := tile.Spec{
				Level:     visible.Level,
				Row:       row,
				Col:       col,
				SubSample: visible.SubSample,
			}
			if _, ok := c.renderSet[spec]; ok {
				continue
			}
			if _, ok := c.pending[spec]; ok {
				continue
			}
			c.pending[spec] = struct{}{}
			batch = append(batch, collect.Request{
				Spec: spec,
				Buf:  c.acquireBuffer(visible.SubSample),
			})
		}
	}
	if len(batch) == 0 {
		return
	}

	sortByHilbert(batch)

	// Bumping the generation supersedes any batch still being issued.
	gen := c.gen.Add(1)
	go c.issue(gen, batch)
}

// issue feeds a batch into the request channel. Sends block until a worker
// is free (backpressure). The loop aborts as soon as a newer batch exists;
// specs already handed to the pipeline are not recalled, their tiles simply
// fail re-validation at admission.
func (c *Controller) issue(gen int64, batch []collect.Request) {
	for i, req := range batch {
		if c.gen.Load() != gen {
			rest := batch[i:]
			c.post(func() { c.abandon(rest) })
			return
		}
		select {
		case <-c.stopped:
			return
		case c.requests <- req:
			c.requested.Add(1)
		}
	}
}

// abandon unmarks specs from a superseded batch and repools their buffers.
// Runs on the confined goroutine.
func (c *Controller) abandon(reqs []collect.Request) {
	for _, req := range reqs {
		delete(c.pending, req.Spec)
		if req.Buf != nil {
			c.buffers.Release(req.Buf)
		}
	}
}

// acquireBuffer pops a pooled buffer of the right size for the sub-sample
// factor, or nil when the worker should allocate fresh. Buffers left over
// from another sub-sample have the wrong size and fall to the GC.
func (c *Controller) acquireBuffer(subSample int) *raster.Buffer {
	side := max(c.cfg.TileSize>>subSample, 1)
	for {
		buf, ok := c.buffers.Acquire()
		if !ok {
			return nil
		}
		if buf.Side == side {
			return buf
		}
	}
}

// sortByHilbert orders a batch along a Hilbert curve over the tile grid, so
// that consecutive requests hit spatially adjacent tiles. Sources backed by
// locality-ordered archives then read near-sequentially.
func sortByHilbert(batch []collect.Request) {
	maxCoord := 0
	for _, req := range batch {
		maxCoord = max(maxCoord, req.Spec.Row, req.Spec.Col)
	}
	side := 1
	for side <= maxCoord {
		side <<= 1
	}
	h, err := hilbert.NewHilbert(side)
	if err != nil {
		return // unsorted batch is still correct, just less local
	}

	keys := make(map[tile.Spec]int, len(batch))
	for _, req := range batch {
		d, err := h.MapInverse(req.Spec.Col, req.Spec.Row)
		if err != nil {
			return
		}
		keys[req.Spec] = d
	}
	slices.SortFunc(batch, func(a, b collect.Request) int {
		return cmp.Compare(keys[a.Spec], keys[b.Spec])
	})
}
