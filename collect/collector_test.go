package collect_test

import (
	"context"
	"testing"
	"time"

	"github.com/eak1mov/go-deepzoom/collect"
	"github.com/eak1mov/go-deepzoom/internal"
	"github.com/eak1mov/go-deepzoom/raster"
	"github.com/eak1mov/go-deepzoom/tile"
)

func startCollector(t *testing.T, src tile.Source, workers int) (chan collect.Request, chan tile.Tile, context.CancelFunc) {
	t.Helper()

	in := make(chan collect.Request)
	out := make(chan tile.Tile)
	ctx, cancel := context.WithCancel(context.Background())

	c := &collect.Collector{Source: src, Workers: workers, TileSize: 8}
	done := make(chan struct{})
	go func() {
		c.Run(ctx, in, out)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("collector did not stop after cancel")
		}
	})

	return in, out, cancel
}

func TestCollectEmitsDecodedTile(t *testing.T) {
	src := internal.NewTestSource(8)
	in, out, _ := startCollector(t, src, 1)

	in <- collect.Request{Spec: tile.Spec{Level: 1, Row: 2, Col: 3}}

	got := <-out
	if got.Level != 1 || got.Row != 2 || got.Col != 3 || got.SubSample != 0 {
		t.Errorf("tile coordinates = %+v", got)
	}
	if got.Buf == nil || got.Buf.Side != 8 {
		t.Fatalf("tile buffer = %+v, want fresh 8px buffer", got.Buf)
	}
	if want := internal.TileColor(2, 3, 1); got.Buf.RGBA.RGBAAt(4, 4) != want {
		t.Errorf("decoded pixel = %v, want %v", got.Buf.RGBA.RGBAAt(4, 4), want)
	}
}

func TestCollectReusesAttachedBuffer(t *testing.T) {
	src := internal.NewTestSource(8)
	in, out, _ := startCollector(t, src, 1)

	buf := raster.NewBuffer(8)
	in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 0, Col: 0}, Buf: buf}

	got := <-out
	if got.Buf != buf {
		t.Errorf("worker allocated a new buffer instead of reusing the attached one")
	}
}

func TestCollectSubSampleBufferSize(t *testing.T) {
	src := internal.NewTestSource(8)
	in, out, _ := startCollector(t, src, 1)

	in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 0, Col: 0, SubSample: 1}}

	got := <-out
	if got.SubSample != 1 {
		t.Errorf("SubSample = %v, want 1", got.SubSample)
	}
	if got.Buf.Side != 4 {
		t.Errorf("buffer side = %v, want 4 (8 >> 1)", got.Buf.Side)
	}
}

func TestCollectReportsDropsAsBufferlessTiles(t *testing.T) {
	src := internal.NewTestSource(8)
	src.SetMissing(0, 0, 0)
	src.SetCorrupt(1, 1, 0)
	in, out, _ := startCollector(t, src, 1)

	in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 0, Col: 0}}
	in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 1, Col: 1}}
	in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 2, Col: 2}}

	// The single worker preserves order: the missing and corrupt specs come
	// back as buffer-less notices, then the healthy tile with pixels.
	for _, want := range []tile.Spec{
		{Level: 0, Row: 0, Col: 0},
		{Level: 0, Row: 1, Col: 1},
	} {
		got := <-out
		if got.Spec() != want {
			t.Errorf("notice spec = %+v, want %+v", got.Spec(), want)
		}
		if got.Buf != nil {
			t.Errorf("dropped spec %+v carries a buffer", want)
		}
	}

	got := <-out
	if got.Row != 2 || got.Col != 2 {
		t.Errorf("produced tile = %+v, want (2,2)", got)
	}
	if got.Buf == nil {
		t.Errorf("healthy tile has no buffer")
	}
}

func TestCollectBackpressure(t *testing.T) {
	src := internal.NewTestSource(8)
	in, out, _ := startCollector(t, src, 1)

	// With one worker and nobody reading out, the worker parks on its
	// output send and a second request has no taker.
	in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 0, Col: 0}}

	select {
	case in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 0, Col: 1}}:
		t.Errorf("request accepted while the pipeline was saturated")
	case <-time.After(50 * time.Millisecond):
	}

	// Draining the output releases the pipeline.
	<-out
	select {
	case in <- collect.Request{Spec: tile.Spec{Level: 0, Row: 0, Col: 1}}:
	case <-time.After(time.Second):
		t.Errorf("request not accepted after draining")
	}
	<-out
}

func TestCollectStopsOnCancel(t *testing.T) {
	src := internal.NewTestSource(8)
	_, _, cancel := startCollector(t, src, 4)
	cancel()
	// Cleanup asserts the run loop exits.
}
