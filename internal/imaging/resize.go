package imaging

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// ResizeMode selects how Resize interprets its target size.
type ResizeMode int

const (
	// ResizeLFit shrinks the image to fit inside the target box, keeping the
	// aspect ratio. It never enlarges.
	ResizeLFit ResizeMode = 1

	// ResizeFixed scales to exactly the target size.
	ResizeFixed ResizeMode = 2
)

func (m ResizeMode) String() string {
	switch m {
	case ResizeLFit:
		return "lfit"
	case ResizeFixed:
		return "fixed"
	default:
		return fmt.Sprintf("ResizeMode(%d)", int(m))
	}
}

// ParseResizeMode parses "lfit" or "fixed". Empty selects lfit.
func ParseResizeMode(s string) (ResizeMode, error) {
	switch strings.ToLower(s) {
	case "", "lfit":
		return ResizeLFit, nil
	case "fixed":
		return ResizeFixed, nil
	default:
		return 0, &Error{Kind: KindUnsupported, Op: "resize", Err: fmt.Errorf("unknown resize mode %q", s)}
	}
}

// LFitSize returns the size of a w x h image shrunk to fit inside
// width x height with its aspect ratio kept. A zero target leaves that axis
// unconstrained; the image is never enlarged. Both sides are at least 1.
func LFitSize(w, h, width, height int) (int, int) {
	ratio := 1.0
	switch {
	case width == 0 && height == 0:
		return w, h
	case width == 0:
		if h > height {
			ratio = float64(h) / float64(height)
		}
	case height == 0:
		if w > width {
			ratio = float64(w) / float64(width)
		}
	default:
		if w > width || h > height {
			ratio = max(float64(w)/float64(width), float64(h)/float64(height))
		}
	}
	return max(1, int(math.Round(float64(w)/ratio))), max(1, int(math.Round(float64(h)/ratio)))
}

// Resize scales the image.
//
// For GIF images every frame is rebuilt and fit into width x height whatever
// the mode. Otherwise ResizeLFit shrinks to fit (see LFitSize) and
// ResizeFixed scales to exactly width x height, deriving a zero side from
// the aspect ratio. A zero target in both axes leaves the image unchanged.
func (im *Image) Resize(width, height int, mode ResizeMode) *Image {
	if im.err != nil {
		return im
	}
	if mode != ResizeLFit && mode != ResizeFixed {
		im.setErr(&Error{Kind: KindUnsupported, Op: "resize", Err: fmt.Errorf("unknown resize mode %d", int(mode))})
		return im
	}
	if width < 0 || height < 0 {
		im.setErr(&Error{Kind: KindUnsupported, Op: "resize", Err: fmt.Errorf("negative size %dx%d", width, height)})
		return im
	}
	if width == 0 && height == 0 {
		return im
	}

	eng := im.engine()
	if im.format.Animated() {
		return im.transform("resize", func(canvas *image.NRGBA) (*image.NRGBA, error) {
			return eng.Fit(canvas, width, height), nil
		})
	}

	w, h := im.Width(), im.Height()
	if mode == ResizeLFit {
		width, height = LFitSize(w, h, width, height)
		if width == w && height == h {
			return im
		}
	}

	return im.transform("resize", func(canvas *image.NRGBA) (*image.NRGBA, error) {
		return eng.Scale(canvas, width, height), nil
	})
}
