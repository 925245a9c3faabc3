package imaging

import (
	"context"
	"image"
	"math"
)

// WatermarkOptions places a mark on an image.
type WatermarkOptions struct {
	// X and Y are the top-left corner of the mark on the canvas.
	X int `json:"x"`
	Y int `json:"y"`

	// Width and Height scale the mark. Zero keeps the mark's own size.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Circle cuts the mark to an ellipse before it is placed.
	Circle bool `json:"circle"`
}

// Watermark loads the mark from source (path, URL or data URI) with the
// image's Loader and composites it at (X, Y). Animated images get the mark on
// every rebuilt frame.
func (im *Image) Watermark(ctx context.Context, source string, opts WatermarkOptions) *Image {
	if im.err != nil {
		return im
	}

	mark, err := im.loader.Open(ctx, source)
	if err != nil {
		im.setErr(err)
		return im
	}

	eng := im.engine()
	pix := mark.frames[0].Pixels
	w, h := pix.Bounds().Dx(), pix.Bounds().Dy()

	if opts.Circle {
		pix = eng.RoundCorners(pix, halfRound(w), halfRound(h))
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = w
	}
	if height == 0 {
		height = h
	}
	if width != w || height != h {
		pix = eng.Scale(pix, width, height)
	}

	return im.transform("watermark", func(canvas *image.NRGBA) (*image.NRGBA, error) {
		return eng.Composite(canvas, pix, opts.X, opts.Y), nil
	})
}

func halfRound(n int) int {
	return int(math.Round(float64(n) / 2))
}
