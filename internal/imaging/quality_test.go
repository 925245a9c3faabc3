package imaging

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuality(t *testing.T) {
	tests := []struct {
		name    string
		current int
		level   int
		force   bool
		want    int
	}{
		{"lowers", 90, 80, false, 80},
		{"keeps lower", 70, 80, false, 70},
		{"keeps equal", 80, 80, false, 80},
		{"force raises", 70, 80, true, 80},
		{"force lowers", 90, 30, true, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, err := newTestLoader().New(JPEG, []Frame{{Pixels: createInMemoryImage(4, 4, color.White)}})
			require.NoError(t, err)
			im.quality = tt.current

			im.Quality(tt.level, tt.force)
			require.NoError(t, im.Err())
			assert.Equal(t, tt.want, im.QualityLevel())
		})
	}
}

func TestQuality_Monotonic(t *testing.T) {
	im := mustLoad(t, newTestLoader(), encodeJPEG(t, createInMemoryImage(16, 16, color.White), 90))
	prev := im.QualityLevel()

	for _, level := range []int{95, 85, 88, 60, 75, 20, 50} {
		im.Quality(level, false)
		q := im.QualityLevel()
		if q > prev {
			t.Fatalf("Quality(%d) raised quality from %d to %d", level, prev, q)
		}
		if q > level && prev > level {
			t.Fatalf("Quality(%d) left quality at %d", level, q)
		}
		prev = q
	}
	assert.Equal(t, 20, prev)
}

func TestQuality_NonLossyNoop(t *testing.T) {
	im := mustLoad(t, newTestLoader(), encodePNG(t, createInMemoryImage(4, 4, color.White)))
	im.Quality(10, true)
	require.NoError(t, im.Err())
	assert.Equal(t, 0, im.QualityLevel())
}

func TestQuality_OutOfRange(t *testing.T) {
	im := mustLoad(t, newTestLoader(), encodeJPEG(t, createInMemoryImage(4, 4, color.White), 90))
	im.Quality(101, true)
	if !errors.Is(im.Err(), ErrUnsupported) {
		t.Errorf("got %v, want ErrUnsupported", im.Err())
	}
}

func TestQuality_EncodedResult(t *testing.T) {
	l := newTestLoader()
	im := mustLoad(t, l, encodeJPEG(t, createPatternImage(64, 64), 95))

	data, err := im.Quality(50, false).Bytes()
	require.NoError(t, err)

	back := mustLoad(t, l, data)
	assert.InDelta(t, 50, back.QualityLevel(), 2)
}

func TestThumb(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		minSize      int
		wantW, wantH int
	}{
		{"landscape", 2000, 1500, 540, 720, 540},
		{"portrait", 900, 1600, 450, 450, 800},
		{"already small", 800, 600, 1080, 800, 600},
		{"min size zero skips", 800, 600, 0, 800, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := mustLoad(t, newTestLoader(), encodePNG(t, createInMemoryImage(tt.w, tt.h, color.White)))
			im.Thumb(tt.minSize, 0)

			require.NoError(t, im.Err())
			assert.Equal(t, tt.wantW, im.Width())
			assert.Equal(t, tt.wantH, im.Height())
			if tt.minSize > 0 {
				assert.LessOrEqual(t, min(im.Width(), im.Height()), max(tt.minSize, min(tt.w, tt.h)))
			}
		})
	}
}

func TestThumb_Quality(t *testing.T) {
	im := mustLoad(t, newTestLoader(), encodeJPEG(t, createInMemoryImage(300, 200, color.White), 95))

	im.Thumb(100, 80)
	require.NoError(t, im.Err())
	assert.Equal(t, 150, im.Width())
	assert.Equal(t, 100, im.Height())
	assert.Equal(t, 80, im.QualityLevel())

	im.Thumb(0, 90)
	assert.Equal(t, 80, im.QualityLevel())
}

func TestThumb_GIF(t *testing.T) {
	im := mustLoad(t, newTestLoader(), encodeGIF(t, 200, 100, []int{10, 10, 10}))

	im.Thumb(50, 80)
	require.NoError(t, im.Err())
	assert.Equal(t, 100, im.Width())
	assert.Equal(t, 50, im.Height())
	assert.Equal(t, 3, im.FrameCount())
	assert.Equal(t, 0, im.QualityLevel())
}

func TestThumb_SkipsOtherFormats(t *testing.T) {
	im, err := newTestLoader().New(BMP, []Frame{{
		Pixels: createInMemoryImage(300, 300, color.White),
		Page:   Page{Width: 300, Height: 300},
	}})
	require.NoError(t, err)

	im.Thumb(100, 0)
	require.NoError(t, im.Err())
	assert.Equal(t, 300, im.Width())
}
