package view

// ColRange is an inclusive range of column indices.
type ColRange struct {
	Min int
	Max int
}

// VisibleTiles is the computed snapshot of tile coordinates covering a
// viewport at one pyramid level. Matrix maps each visible row to its
// inclusive column range. A snapshot is immutable once built; Count is the
// total number of (row, col) pairs and the Matrix is never empty when
// Count > 0.
type VisibleTiles struct {
	Level     int
	SubSample int
	Matrix    map[int]ColRange
	Count     int
}

// Contains reports whether the snapshot covers the given grid position at
// its own level.
func (v *VisibleTiles) Contains(row, col int) bool {
	r, ok := v.Matrix[row]
	return ok && col >= r.Min && col <= r.Max
}

// IntersectsTile reports whether a tile at an arbitrary pyramid level
// geometrically overlaps the visible footprint. Grid coordinates are
// normalized across levels: a coordinate at a coarse level expands to the
// index range it covers at a finer level.
func (v *VisibleTiles) IntersectsTile(level, row, col int) bool {
	switch {
	case level == v.Level:
		return v.Contains(row, col)

	case v.Level > level:
		// Visible grid is finer: expand the tile footprint up to the
		// visible level and look for an overlapping row range.
		n := v.Level - level
		minCol, maxCol := MinAtGreaterLevel(col, n), MaxAtGreaterLevel(col, n)
		for r := MinAtGreaterLevel(row, n); r <= MaxAtGreaterLevel(row, n); r++ {
			cr, ok := v.Matrix[r]
			if ok && minCol <= cr.Max && maxCol >= cr.Min {
				return true
			}
		}
		return false

	default:
		// Visible grid is coarser: expand each visible cell down to the
		// tile's level and test containment.
		n := level - v.Level
		for r, cr := range v.Matrix {
			if row < MinAtGreaterLevel(r, n) || row > MaxAtGreaterLevel(r, n) {
				continue
			}
			if col >= MinAtGreaterLevel(cr.Min, n) && col <= MaxAtGreaterLevel(cr.Max, n) {
				return true
			}
		}
		return false
	}
}

// MinAtGreaterLevel returns the first index covered by grid index v when
// moving n levels towards the finer end of the pyramid.
func MinAtGreaterLevel(v, n int) int {
	return v << n
}

// MaxAtGreaterLevel returns the last index covered by grid index v when
// moving n levels towards the finer end of the pyramid.
func MaxAtGreaterLevel(v, n int) int {
	return (v+1)<<n - 1
}
