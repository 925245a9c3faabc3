package imaging

import (
	"image"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// canvasStep transforms one fully drawn canvas.
type canvasStep func(canvas *image.NRGBA) (*image.NRGBA, error)

// rebuildFrames runs step over every frame drawn onto its full page and
// returns the new frames. Frames are processed concurrently; the output keeps
// the input order. Nothing is returned unless every frame succeeds.
func (im *Image) rebuildFrames(op string, step canvasStep) ([]Frame, error) {
	eng := im.engine()
	start := time.Now()

	mapper := iter.Mapper[Frame, Frame]{MaxGoroutines: im.loader.workers}
	out, err := mapper.MapErr(im.frames, func(f *Frame) (Frame, error) {
		w := max(f.Page.Width, f.Page.X+f.Width())
		h := max(f.Page.Height, f.Page.Y+f.Height())

		canvas := eng.NewCanvas(w, h)
		canvas = eng.Composite(canvas, f.Pixels, f.Page.X, f.Page.Y)

		result, err := step(canvas)
		if err != nil {
			return Frame{}, err
		}

		b := result.Bounds()
		return Frame{
			Pixels:  result,
			Page:    Page{Width: b.Dx(), Height: b.Dy()},
			Delay:   f.Delay,
			Dispose: f.Dispose,
		}, nil
	})
	if err != nil {
		return nil, newError(KindUnsupported, op, err)
	}

	im.loader.logger.Debug("rebuilt frames",
		zap.String("op", op),
		zap.Int("frames", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// transform applies step to the image: animated images go through
// rebuildFrames, single-frame images have their only raster replaced.
func (im *Image) transform(op string, step canvasStep) *Image {
	if im.format.Animated() {
		frames, err := im.rebuildFrames(op, step)
		if err != nil {
			im.setErr(err)
			return im
		}
		im.frames = frames
		return im
	}

	f := im.frames[0]
	result, err := step(f.Pixels)
	if err != nil {
		im.setErr(newError(KindUnsupported, op, err))
		return im
	}
	b := result.Bounds()
	f.Pixels = result
	f.Page = Page{Width: b.Dx(), Height: b.Dy()}
	im.frames = []Frame{f}
	return im
}
