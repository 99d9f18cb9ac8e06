package cache

import (
	"fmt"

	"github.com/eak1mov/go-deepzoom/tile"
	"github.com/eak1mov/go-deepzoom/view"
)

// evict runs the two always-on policies after a visibility update.
//
// The exact-level prune is unconditional: tiles at the active level and
// sub-sample that the new snapshot does not cover never linger. The partial
// pass then drops other-level tiles that no longer overlap the visible
// footprint; overlapping ones are kept as placeholders so the screen is not
// blank while current-level tiles are still loading.
func (c *Controller) evict(visible *view.VisibleTiles) {
	for spec, t := range c.renderSet {
		if t.Level == visible.Level && t.SubSample == visible.SubSample {
			if !visible.Contains(t.Row, t.Col) {
				c.remove(spec)
			}
			continue
		}
		if !visible.IntersectsTile(t.Level, t.Row, t.Col) {
			c.remove(spec)
		}
	}
}

// evictAggressively runs only once the view has been idle for the debounce
// interval, and only when every tile needed at the current level and
// sub-sample is already present; otherwise the whole pass is skipped.
//
// It drops the placeholders the partial pass kept: other-level sub-sample-0
// tiles whose exact position is now covered at the current level, and
// level-0 tiles carrying a stale sub-sample factor.
func (c *Controller) evictAggressively() {
	visible := c.lastVisible
	if visible == nil {
		return
	}

	present := 0
	for _, t := range c.renderSet {
		if t.Level == visible.Level && t.SubSample == visible.SubSample {
			present++
		}
	}
	if present < visible.Count {
		return
	}

	for spec, t := range c.renderSet {
		if t.Level == visible.Level && t.SubSample == visible.SubSample {
			continue
		}
		if t.SubSample == 0 {
			covered := tile.Spec{
				Level:     visible.Level,
				Row:       t.Row,
				Col:       t.Col,
				SubSample: t.SubSample,
			}
			if _, ok := c.renderSet[covered]; ok {
				c.remove(spec)
				continue
			}
		}
		if t.Level == 0 && t.SubSample != visible.SubSample {
			c.remove(spec)
		}
	}
}

// remove takes a tile out of the render set and recycles it.
func (c *Controller) remove(spec tile.Spec) {
	t := c.renderSet[spec]
	delete(c.renderSet, spec)
	c.evicted.Add(1)
	c.recycle(t)
}

// recycle returns a tile's buffer and paint to their pools. Each removed
// tile is recycled exactly once; a second recycle is a programming error.
func (c *Controller) recycle(t *tile.Tile) {
	if t.Buf == nil {
		panic(fmt.Sprintf("deepzoom: tile %+v recycled twice", t.Spec()))
	}
	c.buffers.Release(t.Buf)
	t.Buf = nil
	if t.Paint != nil {
		c.paints.Release(t.Paint)
		t.Paint = nil
	}
}
