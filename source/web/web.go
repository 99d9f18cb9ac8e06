// Package web provides a tile source fetching tiles from a slippy-map style
// HTTP endpoint with URLs like "https://host/{z}/{x}/{y}.png".
package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrInvalidPattern = errors.New("deepzoom: invalid URL pattern")

// Source implements tile.Source over an HTTP URL pattern.
//
// Fetching is best effort: a transport error or a non-200 status is treated
// as "tile unavailable" (empty slice, nil error), matching the engine's
// silent-drop policy. Callers needing timeouts set them on the client.
type Source struct {
	urlPattern string
	client     *http.Client
}

// NewSource creates a Source for the given URL pattern. The pattern must
// contain all three of the {x}, {y} and {z} placeholders. A nil client
// falls back to http.DefaultClient.
func NewSource(urlPattern string, client *http.Client) (*Source, error) {
	for _, p := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(urlPattern, p) {
			return nil, fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{urlPattern, client}, nil
}

func (s *Source) ReadTile(row, col, level int) ([]byte, error) {
	url := s.urlPattern
	url = strings.ReplaceAll(url, "{x}", fmt.Sprintf("%d", col))
	url = strings.ReplaceAll(url, "{y}", fmt.Sprintf("%d", row))
	url = strings.ReplaceAll(url, "{z}", fmt.Sprintf("%d", level))

	resp, err := s.client.Get(url)
	if err != nil {
		return make([]byte, 0), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return make([]byte, 0), nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return make([]byte, 0), nil
	}
	return data, nil
}
