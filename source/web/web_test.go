package web_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eak1mov/go-deepzoom/source/web"
)

func TestReadTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/2/3/1.png" {
			fmt.Fprint(w, "tile231")
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	src, err := web.NewSource(server.URL+"/{z}/{x}/{y}.png", server.Client())
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}

	data, err := src.ReadTile(1, 3, 2)
	if err != nil {
		t.Fatalf("ReadTile failed: %v", err)
	}
	if !cmp.Equal(data, []byte("tile231")) {
		t.Errorf("ReadTile data mismatch: %q", data)
	}

	// 404 means "tile unavailable", not an error.
	data, err = src.ReadTile(9, 9, 9)
	if err != nil {
		t.Errorf("ReadTile(missing tile) failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("ReadTile(missing tile) expected empty tile, got %v bytes", len(data))
	}
}

func TestReadTileTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // fetches now fail to connect

	src, err := web.NewSource(server.URL+"/{z}/{x}/{y}.png", nil)
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}

	data, err := src.ReadTile(0, 0, 0)
	if err != nil {
		t.Errorf("ReadTile after server shutdown failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("ReadTile after server shutdown returned %v bytes, want 0", len(data))
	}
}

func TestNewSourceInvalidPattern(t *testing.T) {
	_, err := web.NewSource("https://tiles.example.com/{z}/{x}.png", nil)
	if !errors.Is(err, web.ErrInvalidPattern) {
		t.Errorf("NewSource error = %v, want ErrInvalidPattern", err)
	}
}
