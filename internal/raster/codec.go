package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegn"
	"github.com/soniakeys/quant/median"
)

// DefaultJPEGQuality is used when a picture carries no quality.
const DefaultJPEGQuality = 92

// Decode detects the format of data and decodes every sub-image into frames.
//
// JPEG input is decoded with EXIF auto-rotation and gets its quality
// estimated from the quantization tables. GIF input yields one frame per
// sub-image with canvas geometry, delay, disposal and palette preserved.
func (n *Native) Decode(data []byte) (*Picture, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to detect image format: %w", err)
	}

	switch format {
	case "gif":
		return decodeGIF(data)
	case "jpeg":
		img, err := jpegn.Decode(bytes.NewReader(data), &jpegn.Options{AutoRotate: true})
		if errors.Is(err, jpegn.ErrUnsupported) {
			// progressive and 12-bit files
			img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode jpeg: %w", err)
		}
		p := singleFrame(format, img)
		p.Quality = EstimateJPEGQuality(data)
		return p, nil
	default:
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", format, err)
		}
		return singleFrame(format, img), nil
	}
}

func singleFrame(format string, img image.Image) *Picture {
	pix := imaging.Clone(img)
	b := pix.Bounds()
	return &Picture{
		Format: format,
		Frames: []Frame{{
			Pixels: pix,
			Page:   Page{Width: b.Dx(), Height: b.Dy()},
		}},
	}
}

func decodeGIF(data []byte) (*Picture, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("failed to decode gif: %w", ErrNoFrames)
	}

	canvasW, canvasH := g.Config.Width, g.Config.Height
	if canvasW == 0 || canvasH == 0 {
		for _, pm := range g.Image {
			b := pm.Bounds()
			canvasW = max(canvasW, b.Max.X)
			canvasH = max(canvasH, b.Max.Y)
		}
	}

	frames := make([]Frame, len(g.Image))
	for i, pm := range g.Image {
		b := pm.Bounds()
		frames[i] = Frame{
			Pixels:  imaging.Clone(pm),
			Page:    Page{Width: canvasW, Height: canvasH, X: b.Min.X, Y: b.Min.Y},
			Palette: pm.Palette,
		}
		if i < len(g.Delay) {
			frames[i].Delay = g.Delay[i]
		}
		if i < len(g.Disposal) {
			frames[i].Dispose = g.Disposal[i]
		}
	}

	return &Picture{
		Format:    "gif",
		Frames:    frames,
		LoopCount: g.LoopCount,
	}, nil
}

// Encode writes p in its own format. GIF pictures are written as a frame
// sequence; every other format writes the first frame only.
func (n *Native) Encode(w io.Writer, p *Picture) error {
	if p == nil || len(p.Frames) == 0 {
		return ErrNoFrames
	}

	first := p.Frames[0].Pixels
	switch p.Format {
	case "gif":
		return encodeGIF(w, p)
	case "jpeg":
		q := p.Quality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return imaging.Encode(w, first, imaging.JPEG, imaging.JPEGQuality(q))
	case "png":
		return imaging.Encode(w, first, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	case "bmp":
		return imaging.Encode(w, first, imaging.BMP)
	case "tiff":
		return imaging.Encode(w, first, imaging.TIFF)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, p.Format)
	}
}

func encodeGIF(w io.Writer, p *Picture) error {
	g := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(p.Frames)),
		Delay:     make([]int, 0, len(p.Frames)),
		Disposal:  make([]byte, 0, len(p.Frames)),
		LoopCount: p.LoopCount,
	}

	var canvasW, canvasH int
	for _, f := range p.Frames {
		b := f.Pixels.Bounds()
		rect := image.Rect(f.Page.X, f.Page.Y, f.Page.X+b.Dx(), f.Page.Y+b.Dy())

		pm := image.NewPaletted(rect, gifPalette(framePalette(f)))
		draw.FloydSteinberg.Draw(pm, rect, f.Pixels, b.Min)

		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, f.Delay)
		g.Disposal = append(g.Disposal, f.Dispose)

		canvasW = max(canvasW, f.Page.Width, rect.Max.X)
		canvasH = max(canvasH, f.Page.Height, rect.Max.Y)
	}
	g.Config = image.Config{Width: canvasW, Height: canvasH}

	if err := gif.EncodeAll(w, g); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

// framePalette returns the source palette of f, or a median cut palette of
// its pixels when the frame has none. One slot is left for transparency.
func framePalette(f Frame) color.Palette {
	if len(f.Palette) > 0 {
		return f.Palette
	}
	if f.Pixels == nil {
		return palette.WebSafe
	}
	return median.Quantizer(255).Quantize(make(color.Palette, 0, 255), f.Pixels)
}

// gifPalette returns a palette with a fully transparent entry so that the
// transparent areas of rebuilt canvases survive quantization.
func gifPalette(p color.Palette) color.Palette {
	if len(p) == 0 {
		p = palette.WebSafe
	}
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a == 0 {
			return p
		}
	}

	out := make(color.Palette, 0, 256)
	if len(p) < 256 {
		out = append(out, p...)
	} else {
		out = append(out, p[:255]...)
	}
	return append(out, color.NRGBA{})
}

// stdLuminance is the Annex K luminance quantization table. Only its sum is
// used, so the order of the entries does not matter.
var stdLuminance = [64]int{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// EstimateJPEGQuality estimates the encoder quality (1-100) of a JPEG from
// its first luminance quantization table. It returns 0 when no table is
// found.
//
// Encoders derived from the IJG code scale the Annex K table by
// S = 5000/q (q < 50) or S = 200-2q, so the ratio of the table sums
// recovers S and from it q.
func EstimateJPEGQuality(data []byte) int {
	table, ok := findLuminanceTable(data)
	if !ok {
		return 0
	}

	var sum, stdSum int
	allOnes := true
	for i, v := range table {
		sum += v
		stdSum += stdLuminance[i]
		if v != 1 {
			allOnes = false
		}
	}
	if allOnes {
		return 100
	}

	scale := float64(sum) * 100 / float64(stdSum)
	var q float64
	if scale <= 100 {
		q = (200 - scale) / 2
	} else {
		q = 5000 / scale
	}
	return min(max(int(math.Round(q)), 1), 100)
}

// findLuminanceTable walks the JPEG marker segments up to the first scan and
// returns quantization table 0.
func findLuminanceTable(data []byte) ([64]int, bool) {
	var table [64]int
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return table, false
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return table, false
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == 0xDA || marker == 0xD9 {
			return table, false
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return table, false
		}

		if marker == 0xDB {
			seg := data[pos+4 : end]
			for len(seg) > 0 {
				precision, id := seg[0]>>4, seg[0]&0x0F
				size := 64
				if precision != 0 {
					size = 128
				}
				if len(seg) < 1+size {
					return table, false
				}
				if id == 0 {
					for i := 0; i < 64; i++ {
						if precision != 0 {
							table[i] = int(binary.BigEndian.Uint16(seg[1+2*i:]))
						} else {
							table[i] = int(seg[1+i])
						}
					}
					return table, true
				}
				seg = seg[1+size:]
			}
		}
		pos = end
	}
	return table, false
}
