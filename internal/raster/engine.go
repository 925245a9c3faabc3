package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

var (
	// ErrEmptyInput is returned when Decode is given no bytes.
	ErrEmptyInput = errors.New("empty image data")

	// ErrNoFrames is returned when Encode is given a picture without frames.
	ErrNoFrames = errors.New("picture has no frames")

	// ErrUnsupportedFormat is returned for formats the engine cannot encode.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrEmptyRegion is returned when a crop rectangle misses the raster.
	ErrEmptyRegion = errors.New("crop region does not intersect the image")
)

// Page is the canvas geometry a frame is drawn onto.
type Page struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// Frame is one raster plus its animation metadata.
type Frame struct {
	// Pixels is the frame raster. Its bounds always start at (0,0).
	Pixels *image.NRGBA

	// Page is the canvas rectangle the raster is drawn into.
	Page Page

	// Delay is the display time in 1/100 s.
	Delay int

	// Dispose is the GIF disposal method.
	Dispose byte

	// Palette is the source palette, reused when the frame is re-encoded
	// as GIF. Nil for non-paletted sources and for redrawn frames, which get
	// a palette quantized from their pixels instead.
	Palette color.Palette
}

// Width returns the raster width in pixels.
func (f Frame) Width() int {
	if f.Pixels == nil {
		return 0
	}
	return f.Pixels.Bounds().Dx()
}

// Height returns the raster height in pixels.
func (f Frame) Height() int {
	if f.Pixels == nil {
		return 0
	}
	return f.Pixels.Bounds().Dy()
}

// Picture is a decoded image: its format tag, frames and encoder hints.
type Picture struct {
	// Format is the lowercase format tag reported by the decoder
	// ("jpeg", "png", "gif", "bmp", "tiff").
	Format string

	// Frames holds one entry per sub-image, in display order.
	Frames []Frame

	// Quality is the JPEG compression quality (1-100). Zero means the
	// encoder default.
	Quality int

	// LoopCount is the GIF loop count, passed through verbatim.
	LoopCount int
}

// TextStyle controls how DrawText renders a string. Zero values select the
// engine defaults.
type TextStyle struct {
	// Font is a path to a TrueType/OpenType file. Empty selects the
	// built-in Go font.
	Font string

	// Size is the font size in points at 72 DPI. Zero means DefaultFontSize.
	Size float64

	// Weight is a CSS-style weight (100-900). The built-in font switches to
	// its bold face at 600 and above.
	Weight int

	// Fill is the glyph color. Nil means white.
	Fill color.Color

	// Under is painted behind the text box. Nil leaves the background alone.
	Under color.Color
}

// Engine is the closed set of raster primitives the pipeline uses.
type Engine interface {
	Decode(data []byte) (*Picture, error)
	Encode(w io.Writer, p *Picture) error

	NewCanvas(width, height int) *image.NRGBA
	Composite(dst *image.NRGBA, src image.Image, x, y int) *image.NRGBA
	Scale(src image.Image, width, height int) *image.NRGBA
	Fit(src image.Image, maxWidth, maxHeight int) *image.NRGBA
	Crop(src image.Image, rect image.Rectangle) (*image.NRGBA, error)
	RoundCorners(src image.Image, rx, ry int) *image.NRGBA
	DrawText(dst *image.NRGBA, text string, x, y int, angle float64, style TextStyle) (*image.NRGBA, error)
}

// Native implements Engine with pure Go libraries.
type Native struct {
	fonts  *fontCache
	filter imaging.ResampleFilter
}

var _ Engine = (*Native)(nil)

// NewNative creates an engine that resamples with Lanczos.
func NewNative() *Native {
	return &Native{
		fonts:  newFontCache(),
		filter: imaging.Lanczos,
	}
}

// NewCanvas allocates a fully transparent raster.
func (n *Native) NewCanvas(width, height int) *image.NRGBA {
	return imaging.New(width, height, color.NRGBA{})
}

// Composite draws src over dst with its top-left corner at (x, y) and
// returns the blended result. Pixels of src outside dst are dropped.
func (n *Native) Composite(dst *image.NRGBA, src image.Image, x, y int) *image.NRGBA {
	return imaging.Overlay(dst, src, image.Pt(x, y), 1.0)
}

// Scale resizes src to exactly width x height. A zero dimension is derived
// from the aspect ratio.
func (n *Native) Scale(src image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(src, width, height, n.filter)
}

// Fit scales src down so that it fits inside maxWidth x maxHeight while
// keeping its aspect ratio. It never enlarges. A bound <= 0 leaves that
// axis unconstrained.
func (n *Native) Fit(src image.Image, maxWidth, maxHeight int) *image.NRGBA {
	b := src.Bounds()
	if maxWidth <= 0 {
		maxWidth = b.Dx()
	}
	if maxHeight <= 0 {
		maxHeight = b.Dy()
	}
	return imaging.Clone(resize.Thumbnail(uint(maxWidth), uint(maxHeight), src, resize.Lanczos3))
}

// Crop cuts rect out of src. The rectangle is clamped to the raster; a
// rectangle that misses it entirely is an error.
func (n *Native) Crop(src image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	r := rect.Intersect(src.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("%w: %v outside %v", ErrEmptyRegion, rect, src.Bounds())
	}
	return imaging.Crop(src, r), nil
}
