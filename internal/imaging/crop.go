package imaging

import (
	"fmt"
	"image"
)

// DefaultCropQuality is the quality Crop sets when given zero.
const DefaultCropQuality = 80

// Crop cuts the width x height rectangle at (x, y) out of the image and
// sets the compression quality.
//
// A zero width runs to the right edge, a zero height to the bottom edge. The
// rectangle is clamped to the canvas; a rectangle entirely outside it fails
// with ErrUnsupported. Animated images are cropped frame by frame on their
// full canvas.
func (im *Image) Crop(x, y, width, height, quality int) *Image {
	if im.err != nil {
		return im
	}

	if quality == 0 {
		quality = DefaultCropQuality
	}
	im.quality = quality

	if width == 0 {
		width = im.Width() - x
	}
	if height == 0 {
		height = im.Height() - y
	}
	if width <= 0 || height <= 0 {
		im.setErr(&Error{Kind: KindUnsupported, Op: "crop", Err: fmt.Errorf("empty crop region %dx%d at (%d,%d)", width, height, x, y)})
		return im
	}

	rect := image.Rect(x, y, x+width, y+height)
	eng := im.engine()
	return im.transform("crop", func(canvas *image.NRGBA) (*image.NRGBA, error) {
		return eng.Crop(canvas, rect)
	})
}
