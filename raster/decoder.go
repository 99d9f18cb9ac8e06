package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrDecode = errors.New("deepzoom: tile decode failed")

// Decoder turns raw tile bytes into pixels, writing into a caller-owned buffer.
//
// Implementations must be safe for concurrent use: the fetch pipeline calls
// Decode from multiple workers.
type Decoder interface {
	Decode(data []byte, dst *Buffer) error
}

// ImageDecoder decodes any format registered with the image package and
// scales the result to fill dst. PNG, JPEG and GIF come from the standard
// library; WebP, BMP and TIFF are registered via golang.org/x/image.
type ImageDecoder struct{}

func (ImageDecoder) Decode(data []byte, dst *Buffer) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == dst.Side && bounds.Dy() == dst.Side {
		xdraw.Copy(dst.RGBA, image.Point{}, img, bounds, xdraw.Src, nil)
		return nil
	}

	// Sub-sampled tiles land here: the source image is larger than the
	// buffer and gets downscaled by the sub-sample factor.
	xdraw.ApproxBiLinear.Scale(dst.RGBA, dst.RGBA.Bounds(), img, bounds, xdraw.Src, nil)
	return nil
}
