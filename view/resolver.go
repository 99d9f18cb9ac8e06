package view

import "math"

// Resolver selects the pyramid level and sub-sample factor for a scale and
// computes the visible tile matrix for a viewport. It is pure and
// deterministic: identical inputs always yield identical snapshots.
//
// Levels index a power-of-two pyramid: level 0 is the coarsest, level
// levelCount-1 renders at scale 1. When the requested scale falls below the
// scale of level 0, level-0 tiles are kept and decoded sub-sampled instead.
type Resolver struct {
	levelCount int
	fullWidth  int
	fullHeight int
	tileSize   int
	magnifying int

	scale     float64
	level     int
	subSample int
}

// NewResolver creates a resolver for a pyramid of levelCount levels over
// content of fullWidth x fullHeight pixels at scale 1, cut into square tiles
// of tileSize pixels.
//
// magnifyingFactor shifts level selection: 0 (the default) always picks a
// level at least as fine as the natural one; positive values trade sharper
// tiles for lower memory use.
func NewResolver(levelCount, fullWidth, fullHeight, tileSize, magnifyingFactor int) *Resolver {
	r := &Resolver{
		levelCount: levelCount,
		fullWidth:  fullWidth,
		fullHeight: fullHeight,
		tileSize:   tileSize,
		magnifying: magnifyingFactor,
	}
	r.SetScale(1)
	return r
}

// SetScale recomputes the selected level and sub-sample factor for a scale.
func (r *Resolver) SetScale(scale float64) {
	r.scale = scale

	if coarsest := r.ScaleAtLevel(0); scale < coarsest {
		r.subSample = int(math.Ceil(math.Log2(coarsest / scale)))
	} else {
		r.subSample = 0
	}

	raw := float64(r.levelCount-1-r.magnifying) + math.Log2(scale)
	r.level = int(math.Ceil(clamp(raw, 0, float64(r.levelCount-1))))
}

// Scale returns the current scale.
func (r *Resolver) Scale() float64 { return r.scale }

// Level returns the currently selected pyramid level.
func (r *Resolver) Level() int { return r.level }

// SubSample returns the current sub-sample factor (0 unless the scale is
// below the coarsest level's scale).
func (r *Resolver) SubSample() int { return r.subSample }

// ScaleAtLevel returns the content scale a level renders at.
func (r *Resolver) ScaleAtLevel(level int) float64 {
	return math.Pow(2, -float64(r.levelCount-1-level))
}

// VisibleTiles computes the visible tile matrix for the viewport at the
// currently selected level.
func (r *Resolver) VisibleTiles(vp Viewport) *VisibleTiles {
	return r.VisibleTilesAtLevel(vp, r.level)
}

// VisibleTilesAtLevel computes the visible tile matrix for the viewport at
// an explicit level.
//
// For a rotated viewport the axis-aligned bounding box of the four rotated
// corners is used, which covers the whole rotated area at the cost of a few
// extra tiles outside the true rotated rectangle.
func (r *Resolver) VisibleTilesAtLevel(vp Viewport, level int) *VisibleTiles {
	scaleAt := r.ScaleAtLevel(level)
	scaledTileSize := float64(r.tileSize) * r.scale / scaleAt

	left, top, right, bottom := vp.Left, vp.Top, vp.Right, vp.Bottom
	if vp.Angle != 0 {
		left, top, right, bottom = rotatedBounds(vp)
	}

	maxCol := r.maxIndex(r.fullWidth, scaleAt)
	maxRow := r.maxIndex(r.fullHeight, scaleAt)

	colMin := clampInt(int(math.Floor(left/scaledTileSize)), 0, maxCol)
	colMax := clampInt(int(math.Ceil(right/scaledTileSize))-1, 0, maxCol)
	rowMin := clampInt(int(math.Floor(top/scaledTileSize)), 0, maxRow)
	rowMax := clampInt(int(math.Ceil(bottom/scaledTileSize))-1, 0, maxRow)

	matrix := make(map[int]ColRange, rowMax-rowMin+1)
	for row := rowMin; row <= rowMax; row++ {
		matrix[row] = ColRange{Min: colMin, Max: colMax}
	}

	return &VisibleTiles{
		Level:     level,
		SubSample: r.subSample,
		Matrix:    matrix,
		Count:     (rowMax - rowMin + 1) * (colMax - colMin + 1),
	}
}

func (r *Resolver) maxIndex(fullSize int, scaleAt float64) int {
	n := int(math.Ceil(float64(fullSize)*scaleAt/float64(r.tileSize))) - 1
	if n < 0 {
		return 0
	}
	return n
}

// rotatedBounds returns the axis-aligned bounding box of the viewport
// corners rotated by the viewport angle about its center.
func rotatedBounds(vp Viewport) (left, top, right, bottom float64) {
	cx, cy := vp.Center()
	sin, cos := math.Sincos(vp.Angle)

	corners := [4][2]float64{
		{vp.Left, vp.Top},
		{vp.Right, vp.Top},
		{vp.Right, vp.Bottom},
		{vp.Left, vp.Bottom},
	}

	left, top = math.Inf(1), math.Inf(1)
	right, bottom = math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		dx, dy := c[0]-cx, c[1]-cy
		x := cx + dx*cos - dy*sin
		y := cy + dx*sin + dy*cos
		left = math.Min(left, x)
		right = math.Max(right, x)
		top = math.Min(top, y)
		bottom = math.Max(bottom, y)
	}
	return left, top, right, bottom
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
