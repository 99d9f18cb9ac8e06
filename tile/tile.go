// Package tile defines tile identity, materialized tiles and the collaborator
// interfaces of the deep-zoom engine.
package tile

import "github.com/eak1mov/go-deepzoom/raster"

// Spec is the coordinate identity of a requested tile, independent of its
// pixel content. Level 0 is the coarsest pyramid level; SubSample is the
// extra coarsening applied when the scale drops below level 0 (see view).
//
// Spec is a value type, compared by value and used as a request key.
type Spec struct {
	Level     int
	Row       int
	Col       int
	SubSample int
}

// Tile is a materialized tile: a spec plus its decoded pixels.
//
// Buf is exclusively owned by the tile from decode until the tile is
// recycled, at which point the buffer returns to the pool and the tile is
// discarded. Paint is attached only while the tile sits in the render set.
type Tile struct {
	Level     int
	Row       int
	Col       int
	SubSample int
	Buf       *raster.Buffer
	Paint     *Paint
}

func (t *Tile) Spec() Spec {
	return Spec{t.Level, t.Row, t.Col, t.SubSample}
}

// SameSpec reports whether both tiles have identical coordinate identity.
func (t *Tile) SameSpec(o *Tile) bool {
	return t.Spec() == o.Spec()
}

// SamePosition reports whether both tiles occupy the same grid position,
// ignoring the pyramid level. Used for cross-level eviction comparisons.
func (t *Tile) SamePosition(o *Tile) bool {
	return t.Row == o.Row && t.Col == o.Col && t.SubSample == o.SubSample
}

// Source supplies raw tile bytes for grid coordinates.
//
// A missing tile is reported as an empty slice with a nil error; errors are
// reserved for the source's own failures. Either way the engine treats the
// tile as unavailable and drops the request without retrying. Sources must
// be safe for concurrent use by multiple fetch workers.
type Source interface {
	ReadTile(row, col, level int) ([]byte, error)
}

// Paint carries per-tile rendering state. Alpha starts at zero when the tile
// enters the render set and is ramped towards one by the render sink,
// producing the fade-in effect.
type Paint struct {
	Alpha   float64
	Options Options
}

// Options are per-tile rendering attributes supplied by an OptionsProvider
// and consulted once, at admission time.
type Options struct {
	// FadeInStep is added to the paint alpha on each frame until it
	// reaches one. Zero or negative disables the fade-in ramp.
	FadeInStep float64

	// Filter, when non-nil, is applied by the render sink while
	// compositing the tile.
	Filter ColorFilter
}

// ColorFilter transforms tile pixels at composite time.
type ColorFilter interface {
	Apply(rgba [4]uint8) [4]uint8
}

// OptionsProvider supplies rendering attributes keyed by tile coordinates.
type OptionsProvider interface {
	TileOptions(row, col, level int) Options
}
