package recipe

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iluckin/image/internal/imaging"
	"github.com/iluckin/image/internal/storage"
)

func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createInMemoryImage(w, h, color.NRGBA{0, 0, 255, 255})))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, createInMemoryImage(w, h, color.NRGBA{200, 100, 50, 255}), &jpeg.Options{Quality: 95}))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func newTestRunner(t *testing.T, store storage.Provider) *Runner {
	t.Helper()
	return NewRunner(imaging.NewLoader(nil, nil), store, nil)
}

func TestParse_Defaults(t *testing.T) {
	r, err := Parse([]byte(`{
		"source": "a.png",
		"steps": [
			{"op": "thumb"},
			{"op": "crop", "x": 1},
			{"op": "text", "text": "hi"},
			{"op": "resize", "width": 10}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, r.Steps, 4)

	assert.Equal(t, 1080, intValue(r.Steps[0].MinSize))
	assert.Equal(t, 80, intValue(r.Steps[0].Quality))
	assert.Equal(t, 80, intValue(r.Steps[1].Quality))
	assert.Equal(t, 25.0, r.Steps[2].FontSize)
	assert.Equal(t, 100, r.Steps[2].FontWeight)
	assert.Equal(t, "#ffffff", r.Steps[2].FillColor)
	assert.Equal(t, "lfit", r.Steps[3].Mode)
}

func TestParse_KeepsExplicitValues(t *testing.T) {
	r, err := Parse([]byte(`{"source":"a.png","steps":[{"op":"thumb","min_size":500,"quality":60}]}`))
	require.NoError(t, err)
	assert.Equal(t, 500, intValue(r.Steps[0].MinSize))
	assert.Equal(t, 60, intValue(r.Steps[0].Quality))
}

func TestParse_ExplicitZeroSkips(t *testing.T) {
	r, err := Parse([]byte(`{"source":"a.png","steps":[{"op":"thumb","min_size":0,"quality":0}]}`))
	require.NoError(t, err)
	require.NotNil(t, r.Steps[0].MinSize)
	require.NotNil(t, r.Steps[0].Quality)
	assert.Zero(t, *r.Steps[0].MinSize)
	assert.Zero(t, *r.Steps[0].Quality)

	// normalizing again keeps the zeros
	require.NoError(t, r.Normalize())
	assert.Zero(t, *r.Steps[0].MinSize)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"not json", `{`, ""},
		{"missing source", `{"steps":[]}`, "source"},
		{"unknown op", `{"source":"a","steps":[{"op":"blur"}]}`, "steps[0].op"},
		{"bad mode", `{"source":"a","steps":[{"op":"resize","mode":"stretch"}]}`, "mode"},
		{"negative width", `{"source":"a","steps":[{"op":"resize","width":-1}]}`, "width"},
		{"quality too high", `{"source":"a","steps":[{"op":"crop","quality":101}]}`, "quality"},
		{"watermark without mark", `{"source":"a","steps":[{"op":"watermark"}]}`, "mark"},
		{"text without text", `{"source":"a","steps":[{"op":"text"}]}`, "text"},
		{"quality without level", `{"source":"a","steps":[{"op":"quality"}]}`, "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"source":"x.png"}`), 0o644))

	r, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x.png", r.Source)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRunner_Apply(t *testing.T) {
	dir := t.TempDir()
	src := writeJPEG(t, dir, "src.jpg", 2000, 1000)
	mark := writePNG(t, dir, "mark.png", 40, 40)

	r, err := Parse([]byte(`{
		"source": "` + filepath.ToSlash(src) + `",
		"steps": [
			{"op": "resize", "width": 800},
			{"op": "watermark", "mark": "` + filepath.ToSlash(mark) + `", "x": 10, "y": 10, "circle": true},
			{"op": "text", "text": "hello", "x": 5, "y": 30},
			{"op": "quality", "level": 70}
		]
	}`))
	require.NoError(t, err)

	im, err := newTestRunner(t, nil).Apply(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 800, im.Width())
	assert.Equal(t, 400, im.Height())
	assert.Equal(t, imaging.JPEG, im.Format())
	assert.Equal(t, 70, im.QualityLevel())
}

func TestRunner_ApplyBase64Source(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, createInMemoryImage(30, 20, color.White)))

	r := &Recipe{
		Source: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Base64: true,
		Steps:  []Step{{Op: OpCircle}},
	}
	require.NoError(t, r.Normalize())

	im, err := newTestRunner(t, nil).Apply(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, imaging.PNG, im.Format())
	assert.Equal(t, 30, im.Width())
}

func TestRunner_ApplyStepError(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, "src.png", 20, 20)

	r := &Recipe{
		Source: src,
		Steps: []Step{
			{Op: OpResize, Width: 10},
			{Op: OpCrop, X: 50, Y: 50},
		},
	}
	require.NoError(t, r.Normalize())

	im, err := newTestRunner(t, nil).Apply(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, imaging.ErrUnsupported)
	assert.Contains(t, err.Error(), "step 1 (crop)")
	require.NotNil(t, im)
}

func TestRunner_ApplyMissingSource(t *testing.T) {
	r := &Recipe{Source: filepath.Join(t.TempDir(), "nope.png")}
	require.NoError(t, r.Normalize())

	im, err := newTestRunner(t, nil).Apply(context.Background(), r)
	assert.Nil(t, im)
	assert.ErrorIs(t, err, imaging.ErrDecode)
}

func TestRunner_ApplyCanceled(t *testing.T) {
	src := writePNG(t, t.TempDir(), "src.png", 20, 20)
	r := &Recipe{Source: src, Steps: []Step{{Op: OpCircle}}}
	require.NoError(t, r.Normalize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRunner(t, nil).Apply(ctx, r)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, "src.png", 100, 50)
	out := filepath.Join(dir, "out", "result.png")

	store, err := storage.NewLocalProvider(filepath.Join(dir, "uploads"), "http://cdn.test")
	require.NoError(t, err)

	r := &Recipe{
		Source: src,
		Steps:  []Step{{Op: OpThumb, MinSize: intPtr(25)}},
		Output: Output{
			Path:   out,
			Base64: true,
			Header: true,
			Upload: true,
			Folder: "thumbs",
		},
	}
	require.NoError(t, r.Normalize())

	res, err := newTestRunner(t, store).Run(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, 50, res.Width)
	assert.Equal(t, 25, res.Height)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, out, res.Path)
	assert.FileExists(t, out)
	assert.True(t, strings.HasPrefix(res.Base64, "data:image/png;base64,"))
	assert.True(t, strings.HasPrefix(res.Key, "thumbs/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "http://cdn.test/"+res.Key, res.URL)

	ok, err := store.Exists(context.Background(), res.Key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunner_UploadWithoutStore(t *testing.T) {
	src := writePNG(t, t.TempDir(), "src.png", 10, 10)
	r := &Recipe{Source: src, Output: Output{Upload: true}}
	require.NoError(t, r.Normalize())

	_, err := newTestRunner(t, nil).Run(context.Background(), r)
	assert.Error(t, err)
}

func TestStep_TextOptions(t *testing.T) {
	s := Step{Op: OpText, X: 1, Y: 2, Angle: 45, FontSize: 10, FontWeight: 700, FillColor: "#000", UnderColor: "#fff"}
	opts := s.TextOptions()
	assert.Equal(t, imaging.TextOptions{X: 1, Y: 2, Angle: 45, FontSize: 10, FontWeight: 700, FillColor: "#000", UnderColor: "#fff"}, opts)
}

func intPtr(v int) *int { return &v }

func TestRunner_ThumbZeroSkips(t *testing.T) {
	dir := t.TempDir()
	src := writeJPEG(t, dir, "src.jpg", 1200, 600)
	runner := NewRunner(imaging.NewLoader(nil, nil), nil, nil)

	r, err := Parse([]byte(`{"source":` + strconv.Quote(src) + `,"steps":[{"op":"thumb","min_size":0,"quality":0}]}`))
	require.NoError(t, err)
	im, err := runner.Apply(context.Background(), r)
	require.NoError(t, err)
	kept := im.Info()
	assert.Equal(t, 1200, kept.Width)
	assert.Greater(t, kept.Quality, 80)

	r, err = Parse([]byte(`{"source":` + strconv.Quote(src) + `,"steps":[{"op":"thumb"}]}`))
	require.NoError(t, err)
	im, err = runner.Apply(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 1200, im.Width(), "shorter side 600 is under the default 1080")
	assert.Equal(t, 80, im.Info().Quality)
}
