package view_test

import (
	"testing"

	"github.com/eak1mov/go-deepzoom/view"
)

func TestGreaterLevelBounds(t *testing.T) {
	cases := []struct {
		v, n     int
		min, max int
	}{
		{0, 1, 0, 1},
		{1, 1, 2, 3},
		{1, 2, 4, 7},
		{3, 3, 24, 31},
		{5, 0, 5, 5},
	}
	for _, c := range cases {
		if got := view.MinAtGreaterLevel(c.v, c.n); got != c.min {
			t.Errorf("MinAtGreaterLevel(%v, %v) = %v, want %v", c.v, c.n, got, c.min)
		}
		if got := view.MaxAtGreaterLevel(c.v, c.n); got != c.max {
			t.Errorf("MaxAtGreaterLevel(%v, %v) = %v, want %v", c.v, c.n, got, c.max)
		}
	}
}

func TestContains(t *testing.T) {
	v := &view.VisibleTiles{
		Level:  2,
		Matrix: map[int]view.ColRange{1: {Min: 2, Max: 4}},
		Count:  3,
	}

	if !v.Contains(1, 2) || !v.Contains(1, 4) {
		t.Errorf("Contains rejected in-range positions")
	}
	if v.Contains(1, 1) || v.Contains(1, 5) || v.Contains(0, 3) {
		t.Errorf("Contains accepted out-of-range positions")
	}
}

func TestIntersectsTileSameLevel(t *testing.T) {
	v := &view.VisibleTiles{
		Level:  1,
		Matrix: map[int]view.ColRange{0: {Min: 0, Max: 1}, 1: {Min: 0, Max: 1}},
		Count:  4,
	}

	if !v.IntersectsTile(1, 1, 1) {
		t.Errorf("same-level contained tile reported as not intersecting")
	}
	if v.IntersectsTile(1, 2, 0) {
		t.Errorf("same-level outside tile reported as intersecting")
	}
}

func TestIntersectsTileCoarserThanVisible(t *testing.T) {
	// Visible at level 2, rows 2-3 cols 2-3 (the bottom-right quadrant of a
	// 4x4 grid). A level-1 tile covers a 2x2 block of level-2 tiles.
	v := &view.VisibleTiles{
		Level:  2,
		Matrix: map[int]view.ColRange{2: {Min: 2, Max: 3}, 3: {Min: 2, Max: 3}},
		Count:  4,
	}

	if !v.IntersectsTile(1, 1, 1) {
		t.Errorf("level-1 tile (1,1) covers level-2 rows/cols 2-3, want intersect")
	}
	if v.IntersectsTile(1, 0, 0) {
		t.Errorf("level-1 tile (0,0) covers level-2 rows/cols 0-1, want no intersect")
	}
	if !v.IntersectsTile(0, 0, 0) {
		t.Errorf("the level-0 tile covers everything, want intersect")
	}
}

func TestIntersectsTileFinerThanVisible(t *testing.T) {
	// Visible at level 1, top-left quadrant only: row 0, col 0.
	v := &view.VisibleTiles{
		Level:  1,
		Matrix: map[int]view.ColRange{0: {Min: 0, Max: 0}},
		Count:  1,
	}

	// Level-2 tiles under the visible level-1 cell: rows/cols 0-1.
	if !v.IntersectsTile(2, 0, 1) || !v.IntersectsTile(2, 1, 0) {
		t.Errorf("level-2 tiles inside the visible level-1 cell, want intersect")
	}
	if v.IntersectsTile(2, 0, 2) || v.IntersectsTile(2, 2, 2) {
		t.Errorf("level-2 tiles outside the visible level-1 cell, want no intersect")
	}
}
