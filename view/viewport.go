// Package view computes which tiles of a deep-zoom pyramid are visible in a
// rectangular, possibly rotated viewport at a given scale.
package view

// Viewport is the visible rectangle in scaled content pixels, plus the
// rotation angle in radians about the rectangle's center. It is a plain
// value updated in place by the caller and passed by value into the engine.
type Viewport struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
	Angle  float64
}

// Center returns the rotation pivot of the viewport.
func (v Viewport) Center() (x, y float64) {
	return (v.Left + v.Right) / 2, (v.Top + v.Bottom) / 2
}
