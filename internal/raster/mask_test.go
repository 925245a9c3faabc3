package raster

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestRoundCorners_Circle(t *testing.T) {
	n := NewNative()
	src := imaging.New(100, 100, color.NRGBA{255, 0, 0, 255})

	out := n.RoundCorners(src, 50, 50)

	tests := []struct {
		name      string
		x, y      int
		wantAlpha uint8
	}{
		{"top-left corner", 0, 0, 0},
		{"bottom-right corner", 99, 99, 0},
		{"center", 50, 50, 255},
		{"left edge middle", 1, 50, 255},
		{"top edge middle", 50, 1, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a := out.NRGBAAt(tt.x, tt.y).A; a != tt.wantAlpha {
				t.Errorf("alpha at (%d,%d): got %d, want %d", tt.x, tt.y, a, tt.wantAlpha)
			}
		})
	}
}

func TestRoundCorners_AntiAliased(t *testing.T) {
	n := NewNative()
	out := n.RoundCorners(imaging.New(100, 100, color.NRGBA{0, 0, 0, 255}), 50, 50)

	// Walk the diagonal into the circle until the edge: some pixel along
	// the way must be partially covered.
	partial := false
	for i := 0; i < 50; i++ {
		a := out.NRGBAAt(i, i).A
		if a > 0 && a < 255 {
			partial = true
			break
		}
	}
	if !partial {
		t.Error("expected a partially transparent edge pixel")
	}
}

func TestRoundCorners_ZeroRadius(t *testing.T) {
	n := NewNative()
	src := imaging.New(10, 10, color.NRGBA{0, 0, 255, 255})

	out := n.RoundCorners(src, 0, 5)
	if a := out.NRGBAAt(0, 0).A; a != 255 {
		t.Errorf("corner alpha: got %d, want 255", a)
	}
	if out == src {
		t.Error("RoundCorners must not return its input")
	}
}

func TestRoundCorners_ClampsRadius(t *testing.T) {
	n := NewNative()
	out := n.RoundCorners(imaging.New(40, 20, color.NRGBA{0, 255, 0, 255}), 500, 500)

	if a := out.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha: got %d, want 0", a)
	}
	if a := out.NRGBAAt(20, 10).A; a != 255 {
		t.Errorf("center alpha: got %d, want 255", a)
	}
}
