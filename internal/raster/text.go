package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultFontSize is used when TextStyle.Size is zero.
	DefaultFontSize = 12

	// boldWeight is the lowest weight that selects the built-in bold face.
	boldWeight = 600

	builtinRegular = "builtin:regular"
	builtinBold    = "builtin:bold"
)

// fontCache keeps parsed fonts keyed by file path so that repeated
// annotations do not re-read and re-parse the font file.
type fontCache struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

func newFontCache() *fontCache {
	return &fontCache{
		fonts: make(map[string]*opentype.Font),
	}
}

// Load returns the parsed font for key, reading it on first use.
func (c *fontCache) Load(key string) (*opentype.Font, error) {
	c.mu.RLock()
	if f, ok := c.fonts[key]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	var data []byte
	switch key {
	case builtinRegular:
		data = goregular.TTF
	case builtinBold:
		data = gobold.TTF
	default:
		b, err := os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", key, err)
	}

	c.mu.Lock()
	c.fonts[key] = f
	c.mu.Unlock()

	return f, nil
}

func (n *Native) face(style TextStyle) (font.Face, error) {
	key := style.Font
	if key == "" {
		key = builtinRegular
		if style.Weight >= boldWeight {
			key = builtinBold
		}
	}

	f, err := n.fonts.Load(key)
	if err != nil {
		return nil, err
	}

	size := style.Size
	if size <= 0 {
		size = DefaultFontSize
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// DrawText draws a single line of text onto dst and returns the result.
//
// (x, y) is the baseline origin of the first glyph. A non-zero angle rotates
// the text clockwise (in degrees) around that origin. The string is
// normalized to NFC first so that combining sequences map to single glyphs
// where the font has them.
func (n *Native) DrawText(dst *image.NRGBA, text string, x, y int, angle float64, style TextStyle) (*image.NRGBA, error) {
	text = norm.NFC.String(text)
	if text == "" {
		return dst, nil
	}

	face, err := n.face(style)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	fill := style.Fill
	if fill == nil {
		fill = color.White
	}

	d := &font.Drawer{Face: face}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	width := d.MeasureString(text).Ceil()
	height := ascent + metrics.Descent.Ceil()
	if width <= 0 || height <= 0 {
		return dst, nil
	}

	layer := image.NewNRGBA(image.Rect(0, 0, width, height))
	if style.Under != nil {
		draw.Draw(layer, layer.Bounds(), image.NewUniform(style.Under), image.Point{}, draw.Src)
	}
	d.Dst = layer
	d.Src = image.NewUniform(fill)
	d.Dot = fixed.P(0, ascent)
	d.DrawString(text)

	if angle == 0 {
		return imaging.Overlay(dst, layer, image.Pt(x, y-ascent), 1.0), nil
	}

	rotated := transform.Rotate(layer, angle, &transform.RotationOptions{ResizeBounds: true})
	ax, ay := rotatedAnchor(width, height, rotated.Bounds().Dx(), rotated.Bounds().Dy(), 0, float64(ascent), angle)
	return imaging.Overlay(dst, rotated, image.Pt(x-ax, y-ay), 1.0), nil
}

// rotatedAnchor maps the point (px, py) of a w x h layer to its position in
// the rw x rh layer produced by a clockwise rotation about the centre with
// resized bounds.
func rotatedAnchor(w, h, rw, rh int, px, py, angle float64) (int, int) {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	cx, cy := float64(w)/2, float64(h)/2
	dx, dy := px-cx, py-cy

	offX := float64((rw - w) / 2)
	offY := float64((rh - h) / 2)

	return int(math.Round(cx + cos*dx - sin*dy + offX)),
		int(math.Round(cy + sin*dx + cos*dy + offY))
}
