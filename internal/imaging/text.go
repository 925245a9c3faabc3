package imaging

import (
	"image/color"

	"github.com/iluckin/image/internal/raster"
)

// TextOptions controls Text. Zero fields fall back to the engine defaults
// (12pt, white, no background).
type TextOptions struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Angle      float64 `json:"angle"`
	Font       string  `json:"font"`
	FontSize   float64 `json:"font_size"`
	FontWeight int     `json:"font_weight"`
	FillColor  string  `json:"fill_color"`
	UnderColor string  `json:"under_color"`
}

// DefaultTextOptions returns 25pt white text at weight 100.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		FontSize:   25,
		FontWeight: 100,
		FillColor:  "#ffffff",
	}
}

// Text draws a line of text with its baseline origin at (X, Y), rotated
// clockwise by Angle degrees. Every frame of an animated image gets the same
// text in frame coordinates.
func (im *Image) Text(text string, opts TextOptions) *Image {
	if im.err != nil {
		return im
	}

	style := raster.TextStyle{
		Font:   opts.Font,
		Size:   opts.FontSize,
		Weight: opts.FontWeight,
	}
	if style.Font == "" {
		style.Font = im.loader.fontPath
	}

	var err error
	if style.Fill, err = parseOptionalColor(opts.FillColor); err != nil {
		im.setErr(&Error{Kind: KindUnsupported, Op: "text", Err: err})
		return im
	}
	if style.Under, err = parseOptionalColor(opts.UnderColor); err != nil {
		im.setErr(&Error{Kind: KindUnsupported, Op: "text", Err: err})
		return im
	}

	eng := im.engine()
	frames := make([]Frame, len(im.frames))
	for i, f := range im.frames {
		pix, err := eng.DrawText(f.Pixels, text, opts.X, opts.Y, opts.Angle, style)
		if err != nil {
			im.setErr(&Error{Kind: KindDecode, Op: "text", Err: err})
			return im
		}
		f.Pixels = pix
		f.Palette = nil
		frames[i] = f
	}
	im.frames = frames
	return im
}

func parseOptionalColor(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := raster.ParseColor(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}
