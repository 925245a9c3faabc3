package recipe

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iluckin/image/internal/imaging"
	"github.com/iluckin/image/internal/storage"
)

// Result describes the processed image and where it was written.
type Result struct {
	imaging.Info
	Path   string `json:"path,omitempty"`
	Key    string `json:"key,omitempty"`
	URL    string `json:"url,omitempty"`
	Base64 string `json:"base64,omitempty"`
}

// Runner applies recipes with a shared Loader and an optional storage
// Provider for uploads.
type Runner struct {
	loader *imaging.Loader
	store  storage.Provider
	logger *zap.Logger
}

// NewRunner creates a Runner. store may be nil when uploads are not needed.
func NewRunner(loader *imaging.Loader, store storage.Provider, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{loader: loader, store: store, logger: logger}
}

// Loader returns the loader recipes are opened with.
func (r *Runner) Loader() *imaging.Loader { return r.loader }

// Apply opens the recipe source and runs every step. The returned Image is
// nil only when the source could not be opened.
func (r *Runner) Apply(ctx context.Context, rc *Recipe) (*imaging.Image, error) {
	var (
		im  *imaging.Image
		err error
	)
	if rc.Base64 {
		im, err = r.loader.LoadString(rc.Source, true)
	} else {
		im, err = r.loader.Open(ctx, rc.Source)
	}
	if err != nil {
		return nil, err
	}

	for i, step := range rc.Steps {
		if err := ctx.Err(); err != nil {
			return im, err
		}
		step.apply(ctx, im)
		if err := im.Err(); err != nil {
			return im, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		r.logger.Debug("recipe step applied",
			zap.Int("step", i),
			zap.String("op", step.Op),
			zap.Int("width", im.Width()),
			zap.Int("height", im.Height()),
		)
	}
	return im, nil
}

// Run applies the recipe and writes the result to every target named in
// its Output.
func (r *Runner) Run(ctx context.Context, rc *Recipe) (*Result, error) {
	im, err := r.Apply(ctx, rc)
	if err != nil {
		return nil, err
	}
	return r.Output(ctx, im, rc.Output)
}

// Output writes im to the targets in out.
func (r *Runner) Output(ctx context.Context, im *imaging.Image, out Output) (*Result, error) {
	res := &Result{Info: im.Info()}

	if out.Path != "" {
		if err := im.Save(out.Path); err != nil {
			return nil, err
		}
		res.Path = out.Path
	}

	if out.Upload {
		if r.store == nil {
			return nil, fmt.Errorf("upload requested but no storage is configured")
		}
		data, err := im.Bytes()
		if err != nil {
			return nil, err
		}
		filename := out.Filename
		if filename == "" {
			filename = storage.ObjectKey("", "", storage.Extension(im.Format().String()))
		}
		uploaded, err := r.store.Upload(ctx, storage.UploadInput{
			Data:        bytes.NewReader(data),
			Folder:      out.Folder,
			Filename:    filename,
			ContentType: im.Format().MimeType(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		res.Key = uploaded.Key
		res.URL = uploaded.URL
		r.logger.Info("image uploaded",
			zap.String("provider", r.store.Name()),
			zap.String("key", uploaded.Key),
			zap.Int("bytes", len(data)),
		)
	}

	if out.Base64 {
		encoded, err := im.Base64(out.Header)
		if err != nil {
			return nil, err
		}
		res.Base64 = encoded
	}

	return res, nil
}

func (s Step) apply(ctx context.Context, im *imaging.Image) {
	switch s.Op {
	case OpResize:
		mode, err := imaging.ParseResizeMode(s.Mode)
		if err != nil {
			// validation already restricts Mode; keep LFIT if it slipped through
			mode = imaging.ResizeLFit
		}
		im.Resize(s.Width, s.Height, mode)
	case OpCrop:
		im.Crop(s.X, s.Y, s.Width, s.Height, intValue(s.Quality))
	case OpCircle:
		im.Circle(s.Width, s.Height)
	case OpWatermark:
		im.Watermark(ctx, s.Mark, imaging.WatermarkOptions{
			X:      s.X,
			Y:      s.Y,
			Width:  s.Width,
			Height: s.Height,
			Circle: s.Circle,
		})
	case OpText:
		im.Text(s.Text, s.TextOptions())
	case OpQuality:
		im.Quality(s.Level, s.Force)
	case OpThumb:
		im.Thumb(intValue(s.MinSize), intValue(s.Quality))
	}
}

// TextOptions converts the text fields of s.
func (s Step) TextOptions() imaging.TextOptions {
	return imaging.TextOptions{
		X:          s.X,
		Y:          s.Y,
		Angle:      s.Angle,
		Font:       s.Font,
		FontSize:   s.FontSize,
		FontWeight: s.FontWeight,
		FillColor:  s.FillColor,
		UnderColor: s.UnderColor,
	}
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
