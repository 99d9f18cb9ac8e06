package cache

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/eak1mov/go-deepzoom/collect"
	"github.com/eak1mov/go-deepzoom/pool"
	"github.com/eak1mov/go-deepzoom/raster"
	"github.com/eak1mov/go-deepzoom/signal"
	"github.com/eak1mov/go-deepzoom/tile"
	"github.com/eak1mov/go-deepzoom/view"
)

// Controller owns the authoritative render set. All of its mutable state is
// confined to one goroutine started by New; public methods hand work to
// that goroutine and never touch shared state directly, so the render set
// and the object pools need no locks.
//
// The decode workers run in parallel and interact with the controller only
// through two unbuffered channels (requests out, tiles in), which are the
// safe hand-off points.
type Controller struct {
	cfg      Config
	resolver *view.Resolver

	requests chan collect.Request
	produced chan tile.Tile
	ops      chan func()
	viewport *signal.Cell[view.Viewport]
	stopped  chan struct{}

	// Confined state: touched only from the run goroutine.
	renderSet    map[tile.Spec]*tile.Tile
	pending      map[tile.Spec]struct{}
	lastVisible  *view.VisibleTiles
	lastViewport *view.Viewport
	buffers      *pool.Pool[*raster.Buffer]
	paints       *pool.Pool[*tile.Paint]

	gen atomic.Int64

	renderThrottle *signal.Throttler[[]*tile.Tile]
	idleDebounce   *signal.Debouncer
	snapshot       atomic.Pointer[[]*tile.Tile]

	requested atomic.Uint64
	admitted  atomic.Uint64
	discarded atomic.Uint64
	evicted   atomic.Uint64

	logger *slog.Logger
}

// New creates a controller and starts its state goroutine. Viewport and
// scale updates are accepted immediately, but no tiles load until Start
// launches the decode workers.
func New(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Controller{
		cfg: cfg,
		resolver: view.NewResolver(
			cfg.LevelCount, cfg.FullWidth, cfg.FullHeight, cfg.TileSize, cfg.MagnifyingFactor),
		requests:  make(chan collect.Request),
		produced:  make(chan tile.Tile),
		ops:       make(chan func()),
		viewport:  signal.NewCell[view.Viewport](),
		stopped:   make(chan struct{}),
		renderSet: make(map[tile.Spec]*tile.Tile),
		pending:   make(map[tile.Spec]struct{}),
		buffers:   pool.New[*raster.Buffer](),
		paints:    pool.New[*tile.Paint](),
		logger:    cfg.Logger,
	}

	c.renderThrottle = signal.Throttle(cfg.RenderInterval, func(snap []*tile.Tile) {
		c.snapshot.Store(&snap)
		if cfg.OnRender != nil {
			cfg.OnRender(snap)
		}
	})
	c.idleDebounce = signal.Debounce(cfg.IdleInterval, func() {
		c.post(func() {
			c.evictAggressively()
			c.publish()
		})
	})

	go c.run()

	return c, nil
}

// Start launches the decode workers. Cancelling ctx stops the engine;
// in-flight decodes are abandoned.
func (c *Controller) Start(ctx context.Context) {
	collector := &collect.Collector{
		Source:   c.cfg.Source,
		Decoder:  c.cfg.Decoder,
		Workers:  c.cfg.Workers,
		TileSize: c.cfg.TileSize,
		Logger:   c.logger,
	}
	go func() {
		err := collector.Run(ctx, c.requests, c.produced)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("tile collector stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		close(c.stopped)
		c.renderThrottle.Stop()
		c.idleDebounce.Stop()
	}()
}

// SetScale updates the rendering scale, re-deriving the pyramid level and
// sub-sample factor. If a viewport is known, visible tiles are re-resolved
// immediately.
func (c *Controller) SetScale(scale float64) {
	c.post(func() {
		c.resolver.SetScale(scale)
		if c.lastViewport != nil {
			c.updateViewport(*c.lastViewport)
		}
	})
}

// SetViewport records a new viewport and triggers the resolve / evict /
// request cycle. Calls conflate: under a burst of updates only the newest
// viewport is processed. SetViewport never blocks and assumes a single
// caller goroutine.
func (c *Controller) SetViewport(vp view.Viewport) {
	c.viewport.Put(vp)
}

// Clear empties the render set without recycling buffers and forgets the
// last visible snapshot and the in-flight set, so the next viewport update
// is treated as entirely new. Used when a full redraw is forced. Tiles
// still decoding fail the admission test (or arrive as duplicates of a
// reissued spec) and are discarded.
func (c *Controller) Clear() {
	c.post(func() {
		c.renderSet = make(map[tile.Spec]*tile.Tile)
		c.pending = make(map[tile.Spec]struct{})
		c.lastVisible = nil
		c.publish()
	})
}

// RenderSnapshot returns the most recent published tile list. Tiles at the
// current level and sub-sample sort after all others, biasing draw order
// towards what the user is actually looking at. The slice is replaced, not
// mutated, on each publication.
func (c *Controller) RenderSnapshot() []*tile.Tile {
	if p := c.snapshot.Load(); p != nil {
		return *p
	}
	return nil
}

// Stats are cumulative engine counters, safe to read at any time.
type Stats struct {
	Requested uint64 // specs handed to the pipeline
	Admitted  uint64 // tiles accepted into the render set
	Discarded uint64 // produced tiles rejected as no longer visible
	Evicted   uint64 // tiles removed from the render set
}

func (c *Controller) Stats() Stats {
	return Stats{
		Requested: c.requested.Load(),
		Admitted:  c.admitted.Load(),
		Discarded: c.discarded.Load(),
		Evicted:   c.evicted.Load(),
	}
}

// post hands op to the confined goroutine.
func (c *Controller) post(op func()) {
	select {
	case c.ops <- op:
	case <-c.stopped:
	}
}

func (c *Controller) run() {
	for {
		select {
		case <-c.stopped:
			return
		case op := <-c.ops:
			op()
		case vp := <-c.viewport.C():
			c.updateViewport(vp)
		case t := <-c.produced:
			c.admit(&t)
		}
	}
}

// updateViewport is the heart of the cycle: resolve visible tiles, evict
// what the move invalidated, request what is missing and schedule a
// publication.
func (c *Controller) updateViewport(vp view.Viewport) {
	c.lastViewport = &vp
	visible := c.resolver.VisibleTiles(vp)
	c.lastVisible = visible

	c.evict(visible)
	c.requestMissing(visible)
	c.publish()
	c.idleDebounce.Poke()
}

// admit decides the fate of a produced tile against the *current* visible
// snapshot, not the one active when the tile was requested: the viewport
// may have moved while the tile was decoding.
func (c *Controller) admit(t *tile.Tile) {
	spec := t.Spec()
	delete(c.pending, spec)

	if t.Buf == nil {
		// Drop notice: the pipeline could not materialize the tile. The
		// spec is simply no longer in flight; the next visibility update
		// reissues it if it is still needed.
		return
	}

	visible := c.lastVisible
	if visible == nil ||
		t.Level != visible.Level ||
		t.SubSample != visible.SubSample ||
		!visible.Contains(t.Row, t.Col) {
		c.discarded.Add(1)
		c.buffers.Release(t.Buf)
		t.Buf = nil
		return
	}
	if _, ok := c.renderSet[spec]; ok {
		// A spec can be produced twice when it is reissued while an older
		// production is still in flight (Clear resets the in-flight set).
		// Keep the resident tile and recycle the newcomer's buffer.
		c.discarded.Add(1)
		c.buffers.Release(t.Buf)
		t.Buf = nil
		return
	}

	paint, ok := c.paints.Acquire()
	if !ok {
		paint = &tile.Paint{}
	}
	*paint = tile.Paint{Options: c.tileOptions(t)}
	t.Paint = paint

	c.renderSet[spec] = t
	c.admitted.Add(1)
	c.idleDebounce.Poke()
	c.publish()
}

// publish hands an ordered copy of the render set to the render throttle.
// Bursts conflate; the sink sees the newest snapshot at most once per
// RenderInterval.
func (c *Controller) publish() {
	visible := c.lastVisible
	isCurrent := func(t *tile.Tile) int {
		if visible != nil && t.Level == visible.Level && t.SubSample == visible.SubSample {
			return 1
		}
		return 0
	}

	snap := make([]*tile.Tile, 0, len(c.renderSet))
	for _, t := range c.renderSet {
		snap = append(snap, t)
	}
	slices.SortFunc(snap, func(a, b *tile.Tile) int {
		if d := isCurrent(a) - isCurrent(b); d != 0 {
			return d
		}
		if d := cmp.Compare(a.Level, b.Level); d != 0 {
			return d
		}
		if d := cmp.Compare(a.Row, b.Row); d != 0 {
			return d
		}
		return cmp.Compare(a.Col, b.Col)
	})

	c.renderThrottle.Send(snap)
}

func (c *Controller) tileOptions(t *tile.Tile) tile.Options {
	if c.cfg.Options == nil {
		return tile.Options{}
	}
	return c.cfg.Options.TileOptions(t.Row, t.Col, t.Level)
}
