package imaging

import (
	"fmt"
)

// Circle masks the image with rounded corners of radii (rx, ry). Zero radii
// default to half the width and height, which cuts out an ellipse inscribed
// in the image. Pixels outside the mask become transparent.
//
// Only single-frame images can be masked. A JPEG is re-tagged as PNG.
func (im *Image) Circle(rx, ry int) *Image {
	if im.err != nil {
		return im
	}
	if len(im.frames) > 1 {
		im.setErr(&Error{Kind: KindUnsupported, Op: "circle", Err: fmt.Errorf("cannot mask %d frames", len(im.frames))})
		return im
	}
	if rx < 0 || ry < 0 {
		im.setErr(&Error{Kind: KindUnsupported, Op: "circle", Err: fmt.Errorf("negative radius %dx%d", rx, ry)})
		return im
	}

	if rx == 0 {
		rx = halfRound(im.Width())
	}
	if ry == 0 {
		ry = halfRound(im.Height())
	}

	f := im.frames[0]
	f.Pixels = im.engine().RoundCorners(f.Pixels, rx, ry)
	im.frames = []Frame{f}

	if !im.format.HasAlpha() {
		im.format = PNG
		im.quality = 0
	}
	return im
}
