// Package xyz provides a tile source reading tiles stored as individual
// files with paths like "/z/x/y.ext", where z maps to the pyramid level,
// x to the column and y to the row.
package xyz

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrInvalidPattern = errors.New("deepzoom: invalid file pattern")

// Source implements tile.Source over a file pattern
// (e.g. "/home/user/tiles/{z}/{x}/{y}.png").
type Source struct {
	filePattern string
}

// NewSource creates a Source for the given file pattern. The pattern must
// contain all three of the {x}, {y} and {z} placeholders.
func NewSource(filePattern string) (*Source, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	return &Source{filePattern}, nil
}

// ReadTile returns the tile file contents, or an empty slice with a nil
// error when the file does not exist.
func (s *Source) ReadTile(row, col, level int) ([]byte, error) {
	tileData, err := os.ReadFile(formatPattern(s.filePattern, row, col, level))
	if os.IsNotExist(err) {
		return make([]byte, 0), nil
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}

func validatePattern(pattern string) error {
	for _, p := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, row, col, level int) string {
	result := pattern
	result = strings.ReplaceAll(result, "{x}", fmt.Sprintf("%d", col))
	result = strings.ReplaceAll(result, "{y}", fmt.Sprintf("%d", row))
	result = strings.ReplaceAll(result, "{z}", fmt.Sprintf("%d", level))
	return result
}
