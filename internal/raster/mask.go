package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// maskSamples is the supersampling grid per axis used for mask edges.
const maskSamples = 4

// RoundCorners rounds the corners of src with elliptical arcs of radius rx
// (horizontal) and ry (vertical). Pixels outside the rounded rectangle become
// transparent; edge pixels get fractional coverage. Radii larger than half
// the raster are clamped, so rx = w/2, ry = h/2 cuts out an ellipse.
func (n *Native) RoundCorners(src image.Image, rx, ry int) *image.NRGBA {
	dst := imaging.Clone(src)
	if rx <= 0 || ry <= 0 {
		return dst
	}

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	radX := min(float64(rx), float64(w)/2)
	radY := min(float64(ry), float64(h)/2)

	left, right := radX, float64(w)-radX
	top, bottom := radY, float64(h)-radY

	inside := func(px, py float64) bool {
		var dx, dy float64
		switch {
		case px < left:
			dx = (left - px) / radX
		case px > right:
			dx = (px - right) / radX
		}
		switch {
		case py < top:
			dy = (top - py) / radY
		case py > bottom:
			dy = (py - bottom) / radY
		}
		return dx*dx+dy*dy <= 1
	}

	for y := 0; y < h; y++ {
		fy := float64(y)
		inBandY := fy >= top && fy+1 <= bottom
		for x := 0; x < w; x++ {
			fx := float64(x)
			if inBandY || (fx >= left && fx+1 <= right) {
				continue
			}

			covered := 0
			for sy := 0; sy < maskSamples; sy++ {
				py := fy + (float64(sy)+0.5)/maskSamples
				for sx := 0; sx < maskSamples; sx++ {
					px := fx + (float64(sx)+0.5)/maskSamples
					if inside(px, py) {
						covered++
					}
				}
			}

			if covered == maskSamples*maskSamples {
				continue
			}
			i := dst.PixOffset(x, y) + 3
			dst.Pix[i] = uint8(int(dst.Pix[i]) * covered / (maskSamples * maskSamples))
		}
	}

	return dst
}
