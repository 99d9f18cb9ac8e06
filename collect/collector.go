// Package collect implements the concurrent tile fetch/decode pipeline: a
// bounded worker pool turning tile specs into decoded tiles.
package collect

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/eak1mov/go-deepzoom/raster"
	"github.com/eak1mov/go-deepzoom/tile"
)

// Request is one unit of pipeline work: a tile spec plus an optional decode
// buffer acquired from the pool on the controller goroutine. Workers
// allocate a fresh buffer when Buf is nil or mismatched.
type Request struct {
	Spec tile.Spec
	Buf  *raster.Buffer
}

// Collector runs the fetch/decode workers.
//
// Both pipeline channels are expected to be unbuffered: a producer blocks
// until a worker is ready and a worker blocks until the consumer takes the
// tile. That rendezvous is the engine's backpressure mechanism; a slow
// decode stage naturally throttles how fast new specs are accepted.
type Collector struct {
	// Source supplies raw tile bytes. Required.
	Source tile.Source

	// Decoder turns bytes into pixels. Defaults to raster.ImageDecoder.
	Decoder raster.Decoder

	// Workers is the pool size; values below 1 are treated as 1.
	Workers int

	// TileSize is the buffer side for sub-sample 0; a spec with
	// sub-sample s decodes into a TileSize>>s buffer.
	TileSize int

	// Logger receives per-drop diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Run consumes requests from in and emits one tile per request on out until
// ctx is cancelled or in is closed. It blocks until all workers have
// returned.
//
// A request whose source yields no data or whose bytes fail to decode emits
// a buffer-less tile: the spec is reported back so the consumer can account
// for it, but there are no pixels and no error. The source collaborator owns
// any retry policy.
func (c *Collector) Run(ctx context.Context, in <-chan Request, out chan<- tile.Tile) error {
	g, ctx := errgroup.WithContext(ctx)
	for range max(c.Workers, 1) {
		g.Go(func() error {
			return c.work(ctx, in, out)
		})
	}
	return g.Wait()
}

func (c *Collector) work(ctx context.Context, in <-chan Request, out chan<- tile.Tile) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-in:
			if !ok {
				return nil
			}
			t, ok := c.collect(req)
			if !ok {
				// Drop notice: a buffer-less tile tells the consumer
				// the spec is no longer in flight.
				t = tile.Tile{
					Level:     req.Spec.Level,
					Row:       req.Spec.Row,
					Col:       req.Spec.Col,
					SubSample: req.Spec.SubSample,
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- t:
			}
		}
	}
}

func (c *Collector) collect(req Request) (tile.Tile, bool) {
	spec := req.Spec

	data, err := c.Source.ReadTile(spec.Row, spec.Col, spec.Level)
	if err != nil {
		c.log("tile source failed", spec, err)
		return tile.Tile{}, false
	}
	if len(data) == 0 {
		return tile.Tile{}, false
	}

	side := max(c.TileSize>>spec.SubSample, 1)
	buf := req.Buf
	if buf == nil || buf.Side != side {
		buf = raster.NewBuffer(side)
	}

	if err := c.decoder().Decode(data, buf); err != nil {
		c.log("tile decode failed", spec, err)
		return tile.Tile{}, false
	}

	return tile.Tile{
		Level:     spec.Level,
		Row:       spec.Row,
		Col:       spec.Col,
		SubSample: spec.SubSample,
		Buf:       buf,
	}, true
}

func (c *Collector) decoder() raster.Decoder {
	if c.Decoder != nil {
		return c.Decoder
	}
	return raster.ImageDecoder{}
}

func (c *Collector) log(msg string, spec tile.Spec, err error) {
	if c.Logger != nil {
		c.Logger.Debug(msg,
			"level", spec.Level, "row", spec.Row, "col", spec.Col, "err", err)
	}
}
