package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/iluckin/image/internal/raster"
)

// Fetcher retrieves the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader turns paths, URLs, bytes and base64 strings into Images.
//
// A Loader is safe for concurrent use. Images it creates keep a reference to
// it so that operations such as Watermark can load further images the same
// way.
type Loader struct {
	engine   raster.Engine
	fetcher  Fetcher
	logger   *zap.Logger
	workers  int
	fontPath string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers bounds the goroutines used to rebuild animation frames.
// Values below 1 keep the default of GOMAXPROCS.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithFontPath sets the font used by Text when the call names none.
func WithFontPath(path string) LoaderOption {
	return func(l *Loader) {
		l.fontPath = path
	}
}

// NewLoader creates a Loader. A nil engine selects raster.NewNative; a nil
// fetcher makes URL sources fail with ErrFetch.
func NewLoader(engine raster.Engine, fetcher Fetcher, opts ...LoaderOption) *Loader {
	if engine == nil {
		engine = raster.NewNative()
	}
	l := &Loader{
		engine:  engine,
		fetcher: fetcher,
		logger:  zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open loads an image from a URL, a data URI or a local path.
//
// Sources starting with "http" are fetched through the Fetcher; sources
// starting with "data:" are decoded as base64; anything else is read from
// disk.
func (l *Loader) Open(ctx context.Context, source string) (*Image, error) {
	switch {
	case strings.HasPrefix(source, "http"):
		if l.fetcher == nil {
			return nil, &Error{Kind: KindFetch, Op: "open", Err: fmt.Errorf("no fetcher configured for %s", source)}
		}
		data, err := l.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, &Error{Kind: KindFetch, Op: "open", Err: fmt.Errorf("failed to fetch %s: %w", source, err)}
		}
		l.logger.Debug("fetched image", zap.String("url", source), zap.Int("bytes", len(data)))
		return l.decode("open", data)

	case strings.HasPrefix(source, "data:"):
		return l.LoadString(source, true)

	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Op: "open", Err: fmt.Errorf("failed to read image: %w", err)}
		}
		return l.decode("open", data)
	}
}

// Load decodes an image from content. With isBase64 the content is a base64
// string, optionally prefixed by a data URI header ("data:image/png;base64,").
func (l *Loader) Load(content []byte, isBase64 bool) (*Image, error) {
	if !isBase64 {
		return l.decode("load", content)
	}
	data, err := DecodeBase64(string(content))
	if err != nil {
		return nil, &Error{Kind: KindDecode, Op: "load", Err: err}
	}
	return l.decode("load", data)
}

// LoadString is Load for string content.
func (l *Loader) LoadString(content string, isBase64 bool) (*Image, error) {
	return l.Load([]byte(content), isBase64)
}

// New wraps existing frames in an Image. Frames must be non-empty.
func (l *Loader) New(format Format, frames []Frame) (*Image, error) {
	if len(frames) == 0 {
		return nil, &Error{Kind: KindDecode, Op: "new", Err: raster.ErrNoFrames}
	}
	im := &Image{loader: l, format: format, frames: make([]Frame, len(frames))}
	copy(im.frames, frames)
	if format.Lossy() {
		im.quality = 100
	}
	return im, nil
}

func (l *Loader) decode(op string, data []byte) (*Image, error) {
	pic, err := l.engine.Decode(data)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Err: fmt.Errorf("failed to decode image: %w", err)}
	}

	im := &Image{
		loader:    l,
		format:    Format(pic.Format),
		frames:    pic.Frames,
		quality:   pic.Quality,
		loopCount: pic.LoopCount,
	}
	if im.format.Lossy() && im.quality == 0 {
		im.quality = 100
	}

	l.logger.Debug("decoded image",
		zap.String("format", pic.Format),
		zap.Int("frames", len(pic.Frames)),
		zap.Int("width", im.Width()),
		zap.Int("height", im.Height()),
		zap.Int("quality", im.quality),
	)
	return im, nil
}

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeBase64 strips an optional data URI header (everything up to the
// first comma) and decodes the rest, accepting padded and unpadded standard
// or URL-safe alphabets.
func DecodeBase64(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty base64 content")
	}

	var firstErr error
	for _, enc := range base64Encodings {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("failed to decode base64: %w", firstErr)
}
