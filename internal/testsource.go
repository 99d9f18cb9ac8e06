// Package internal holds shared test fixtures.
package internal

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// Key identifies a tile in a TestSource: (row, col, level).
type Key struct {
	Row, Col, Level int
}

// TestSource is a deterministic in-memory tile source producing solid-color
// PNG tiles, with per-tile read counting for dedup assertions. Tiles can be
// marked missing to simulate unavailable data. Safe for concurrent use.
type TestSource struct {
	TileSize int

	mu      sync.Mutex
	missing map[Key]bool
	corrupt map[Key]bool
	reads   map[Key]int
}

func NewTestSource(tileSize int) *TestSource {
	return &TestSource{
		TileSize: tileSize,
		missing:  make(map[Key]bool),
		corrupt:  make(map[Key]bool),
		reads:    make(map[Key]int),
	}
}

// SetMissing makes a tile report as absent (empty slice, nil error).
func (s *TestSource) SetMissing(row, col, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing[Key{row, col, level}] = true
}

// ClearMissing makes a previously missing tile available again.
func (s *TestSource) ClearMissing(row, col, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.missing, Key{row, col, level})
}

// SetCorrupt makes a tile return bytes that fail to decode.
func (s *TestSource) SetCorrupt(row, col, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[Key{row, col, level}] = true
}

// Reads returns how many times a tile has been requested.
func (s *TestSource) Reads(row, col, level int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[Key{row, col, level}]
}

// TotalReads returns the total number of ReadTile calls.
func (s *TestSource) TotalReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.reads {
		total += n
	}
	return total
}

func (s *TestSource) ReadTile(row, col, level int) ([]byte, error) {
	key := Key{row, col, level}

	s.mu.Lock()
	s.reads[key]++
	missing := s.missing[key]
	corrupt := s.corrupt[key]
	s.mu.Unlock()

	if missing {
		return make([]byte, 0), nil
	}
	if corrupt {
		return []byte("not an image"), nil
	}
	return EncodePNG(s.TileSize, TileColor(row, col, level)), nil
}

// TileColor derives a stable color from tile coordinates.
func TileColor(row, col, level int) color.RGBA {
	return color.RGBA{
		R: uint8(31 * (row + 1)),
		G: uint8(57 * (col + 1)),
		B: uint8(97 * (level + 1)),
		A: 255,
	}
}

// EncodePNG renders a solid-color square PNG.
func EncodePNG(side int, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
