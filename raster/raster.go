// Package raster provides reusable decoded pixel buffers and the default
// tile image decoder.
package raster

import "image"

// Buffer is a square RGBA pixel buffer holding one decoded tile.
//
// A Buffer has a single owner at any time: the decode worker that fills it,
// then the tile it is attached to, then the pool it is recycled into.
type Buffer struct {
	Side int
	RGBA *image.RGBA
}

// NewBuffer allocates a zeroed buffer with the given side length in pixels.
func NewBuffer(side int) *Buffer {
	return &Buffer{
		Side: side,
		RGBA: image.NewRGBA(image.Rect(0, 0, side, side)),
	}
}
