package imaging

import (
	"github.com/iluckin/image/internal/raster"
)

type (
	// Frame is one raster of an Image plus its animation metadata.
	Frame = raster.Frame

	// Page is the canvas geometry a frame is drawn onto.
	Page = raster.Page
)

// Image is a loaded image moving through the pipeline.
//
// The zero value is not usable; obtain an Image from a Loader.
type Image struct {
	loader    *Loader
	format    Format
	frames    []Frame
	quality   int
	loopCount int
	err       error
}

// Info summarizes an Image.
type Info struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Frames   int    `json:"frames"`
	Quality  int    `json:"quality,omitempty"`
	Delays   []int  `json:"delays,omitempty"`
}

// Err returns the first error hit by the chain, if any.
func (im *Image) Err() error { return im.err }

func (im *Image) setErr(err error) {
	if im.err == nil {
		im.err = err
	}
}

// Format returns the current format tag.
func (im *Image) Format() Format { return im.format }

// Width returns the canvas width in pixels.
func (im *Image) Width() int {
	if len(im.frames) == 0 {
		return 0
	}
	if w := im.frames[0].Page.Width; w > 0 {
		return w
	}
	return im.frames[0].Width()
}

// Height returns the canvas height in pixels.
func (im *Image) Height() int {
	if len(im.frames) == 0 {
		return 0
	}
	if h := im.frames[0].Page.Height; h > 0 {
		return h
	}
	return im.frames[0].Height()
}

// Frames returns a copy of the frame slice. The rasters are shared, so
// callers must not modify their pixels.
func (im *Image) Frames() []Frame {
	out := make([]Frame, len(im.frames))
	copy(out, im.frames)
	return out
}

// FrameCount returns the number of frames.
func (im *Image) FrameCount() int { return len(im.frames) }

// QualityLevel returns the current compression quality (0 for formats
// without one).
func (im *Image) QualityLevel() int { return im.quality }

// LoopCount returns the GIF loop count.
func (im *Image) LoopCount() int { return im.loopCount }

// Info returns a summary of the image.
func (im *Image) Info() Info {
	info := Info{
		Width:    im.Width(),
		Height:   im.Height(),
		Format:   im.format.String(),
		MimeType: im.format.MimeType(),
		Frames:   len(im.frames),
		Quality:  im.quality,
	}
	if im.format.Animated() {
		info.Delays = make([]int, len(im.frames))
		for i, f := range im.frames {
			info.Delays[i] = f.Delay
		}
	}
	return info
}

func (im *Image) engine() raster.Engine { return im.loader.engine }

func (im *Image) picture() *raster.Picture {
	return &raster.Picture{
		Format:    im.format.String(),
		Frames:    im.frames,
		Quality:   im.quality,
		LoopCount: im.loopCount,
	}
}
