package imaging

import (
	"fmt"
	"math"
)

// Quality lowers the compression quality of lossy images to level. Without
// force, a quality already at or below level is kept; with force, the
// quality is set to level exactly. Non-lossy images are left alone.
func (im *Image) Quality(level int, force bool) *Image {
	if im.err != nil || !im.format.Lossy() {
		return im
	}
	if level < 1 || level > 100 {
		im.setErr(&Error{Kind: KindUnsupported, Op: "quality", Err: fmt.Errorf("quality %d out of range 1-100", level)})
		return im
	}
	if !force && im.quality <= level {
		return im
	}
	im.quality = level
	return im
}

// Thumb shrinks JPEG, PNG and GIF images so that their shorter side is
// minSize, then lowers the quality to quality. A zero minSize skips the
// resize; a zero quality skips the quality step.
func (im *Image) Thumb(minSize, quality int) *Image {
	if im.err != nil {
		return im
	}

	if minSize > 0 && im.format.Thumbnailable() {
		w, h := im.Width(), im.Height()
		if short := min(w, h); short > minSize {
			ratio := float64(short) / float64(minSize)
			im.Resize(
				int(math.Round(float64(w)/ratio)),
				int(math.Round(float64(h)/ratio)),
				ResizeFixed,
			)
		}
	}

	if quality > 0 {
		im.Quality(quality, false)
	}
	return im
}
