// Package cache implements the tile cache controller: the single owner of
// the "tiles to render" set, driving the request, admission and eviction
// cycle for a deep-zoom view.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eak1mov/go-deepzoom/raster"
	"github.com/eak1mov/go-deepzoom/tile"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultTileSize       = 256
	DefaultWorkers        = 4
	DefaultRenderInterval = 17 * time.Millisecond
	DefaultIdleInterval   = 500 * time.Millisecond
)

var ErrInvalidConfig = errors.New("deepzoom: invalid configuration")

// Config describes the pyramid geometry and the engine collaborators.
type Config struct {
	// LevelCount is the number of pyramid levels; level LevelCount-1
	// renders at scale 1. Required, at least 1.
	LevelCount int

	// FullWidth and FullHeight are the content dimensions in pixels at
	// scale 1. Required.
	FullWidth  int
	FullHeight int

	// TileSize is the square tile side in pixels. Defaults to 256.
	TileSize int

	// MagnifyingFactor shifts level selection; see view.NewResolver.
	MagnifyingFactor int

	// Workers is the decode worker pool size. Defaults to 4, minimum 1.
	Workers int

	// RenderInterval is the minimum gap between render publications;
	// bursts of render-ready events conflate to the newest snapshot.
	RenderInterval time.Duration

	// IdleInterval is the quiescence period after which the view counts
	// as idle and aggressive eviction may run.
	IdleInterval time.Duration

	// Source supplies raw tile bytes. Required.
	Source tile.Source

	// Decoder turns tile bytes into pixels. Defaults to raster.ImageDecoder.
	Decoder raster.Decoder

	// Options supplies per-tile rendering attributes, consulted at
	// admission time. Optional.
	Options tile.OptionsProvider

	// OnRender receives the ordered tile list each time the render
	// throttle fires. Called from the throttle goroutine. Optional.
	OnRender func([]*tile.Tile)

	// Logger receives engine diagnostics. Nil disables logging.
	Logger *slog.Logger
}

func (cfg *Config) validate() error {
	if cfg.LevelCount < 1 {
		return fmt.Errorf("%w: LevelCount must be at least 1, got %d", ErrInvalidConfig, cfg.LevelCount)
	}
	if cfg.FullWidth <= 0 || cfg.FullHeight <= 0 {
		return fmt.Errorf("%w: content size must be positive, got %dx%d",
			ErrInvalidConfig, cfg.FullWidth, cfg.FullHeight)
	}
	if cfg.TileSize < 0 {
		return fmt.Errorf("%w: TileSize must not be negative, got %d", ErrInvalidConfig, cfg.TileSize)
	}
	if cfg.Source == nil {
		return fmt.Errorf("%w: Source is required", ErrInvalidConfig)
	}
	return nil
}

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.TileSize == 0 {
		out.TileSize = DefaultTileSize
	}
	if out.Workers < 1 {
		out.Workers = DefaultWorkers
	}
	if out.RenderInterval <= 0 {
		out.RenderInterval = DefaultRenderInterval
	}
	if out.IdleInterval <= 0 {
		out.IdleInterval = DefaultIdleInterval
	}
	if out.Decoder == nil {
		out.Decoder = raster.ImageDecoder{}
	}
	if out.Logger == nil {
		out.Logger = newNopLogger()
	}
	return out
}

// nopHandler silently discards all log records. Enabled returns false so
// callers skip message formatting entirely, making disabled logging
// effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }
