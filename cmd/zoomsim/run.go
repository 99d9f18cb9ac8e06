package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"

	"github.com/eak1mov/go-deepzoom/cache"
	"github.com/eak1mov/go-deepzoom/source/xyz"
	"github.com/eak1mov/go-deepzoom/view"
)

type runCmd struct {
	tilesPattern string
	levels       int
	fullWidth    int
	fullHeight   int
	tileSize     int
	workers      int
	steps        int
	viewWidth    int
	viewHeight   int
	seed         int64
}

func (c *runCmd) Name() string     { return "run" }
func (c *runCmd) Synopsis() string { return "replay a pan/zoom session against a tile tree" }
func (c *runCmd) Usage() string {
	return "zoomsim run -tiles <pattern> -levels <n> -width <px> -height <px> [flags]\n"
}
func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tilesPattern, "tiles", "", "Tile file pattern, e.g. ./tiles/{z}/{x}/{y}.png")
	f.IntVar(&c.levels, "levels", 1, "Pyramid level count")
	f.IntVar(&c.fullWidth, "width", 0, "Content width in pixels at scale 1")
	f.IntVar(&c.fullHeight, "height", 0, "Content height in pixels at scale 1")
	f.IntVar(&c.tileSize, "tile-size", cache.DefaultTileSize, "Tile side in pixels")
	f.IntVar(&c.workers, "workers", cache.DefaultWorkers, "Decode worker count")
	f.IntVar(&c.steps, "steps", 200, "Number of simulated interaction steps")
	f.IntVar(&c.viewWidth, "view-width", 1080, "Simulated screen width")
	f.IntVar(&c.viewHeight, "view-height", 1920, "Simulated screen height")
	f.Int64Var(&c.seed, "seed", 1, "Random seed for the interaction script")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.tilesPattern == "" || c.fullWidth <= 0 || c.fullHeight <= 0 {
		log.Print("required: -tiles, -width, -height")
		return subcommands.ExitUsageError
	}

	src, err := xyz.NewSource(c.tilesPattern)
	if err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}

	ctrl, err := cache.New(cache.Config{
		LevelCount: c.levels,
		FullWidth:  c.fullWidth,
		FullHeight: c.fullHeight,
		TileSize:   c.tileSize,
		Workers:    c.workers,
		Source:     src,
	})
	if err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctrl.Start(ctx)

	rng := rand.New(rand.NewSource(c.seed))
	scale := 1.0
	x, y := 0.0, 0.0
	angle := 0.0

	bar := progressbar.Default(int64(c.steps))
	for range c.steps {
		switch rng.Intn(4) {
		case 0: // zoom
			scale = math.Min(math.Max(scale*math.Pow(2, rng.Float64()-0.5), 0.01), 1)
			ctrl.SetScale(scale)
		case 1: // rotate
			angle += (rng.Float64() - 0.5) * math.Pi / 4
		default: // pan
			x = math.Max(0, x+(rng.Float64()-0.5)*float64(c.viewWidth))
			y = math.Max(0, y+(rng.Float64()-0.5)*float64(c.viewHeight))
		}
		ctrl.SetViewport(view.Viewport{
			Left:   x,
			Top:    y,
			Right:  x + float64(c.viewWidth),
			Bottom: y + float64(c.viewHeight),
			Angle:  angle,
		})
		bar.Add(1)
		time.Sleep(10 * time.Millisecond)
	}

	// Let in-flight decodes drain and the idle pass run.
	time.Sleep(time.Second)

	stats := ctrl.Stats()
	fmt.Printf("requested: %d\nadmitted:  %d\ndiscarded: %d\nevicted:   %d\nrendered:  %d tiles in final snapshot\n",
		stats.Requested, stats.Admitted, stats.Discarded, stats.Evicted, len(ctrl.RenderSnapshot()))

	return subcommands.ExitSuccess
}
