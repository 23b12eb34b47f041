package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a color with 0-255 channels.
type RGB struct {
	R uint8 `yaml:"r" toml:"r"`
	G uint8 `yaml:"g" toml:"g"`
	B uint8 `yaml:"b" toml:"b"`
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithAlpha attaches an alpha channel.
func (c RGB) WithAlpha(a float64) Color {
	return Color{RGB: c, Alpha: a}
}

// ParseRGB parses "#rrggbb", "#rgb" or "r,g,b".
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return RGB{}, fmt.Errorf("invalid hex color: %s", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid hex color: %s", s)
		}
		return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("invalid color %q (expected #RRGGBB or r,g,b)", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid color channel %q: %w", p, err)
		}
		ch[i] = uint8(n)
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// Color is an RGB color with an alpha channel in [0, 1].
type Color struct {
	RGB
	Alpha float64
}

// AlphaString formats alpha with two decimals.
func (c Color) AlphaString() string {
	return strconv.FormatFloat(c.Alpha, 'f', 2, 64)
}

// CSS returns the color as a CSS rgba() value.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, c.AlphaString())
}
