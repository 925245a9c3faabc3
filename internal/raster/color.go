package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {},
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or one of a few color
// names into an NRGBA color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if s[0] != '#' {
		s = "#" + s
	}

	switch len(s) {
	case 4, 7:
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case 9:
		val, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return color.NRGBA{
			R: uint8(val >> 24),
			G: uint8(val >> 16),
			B: uint8(val >> 8),
			A: uint8(val),
		}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length: %q", s)
	}
}
