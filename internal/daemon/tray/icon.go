package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// iconData is a 32x32 checkmark drawn on a transparent background. Only
// alpha matters for template icons.
var iconData = drawIcon(32)

func drawIcon(size int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	ink := color.NRGBA{A: 255}

	stroke := func(x0, y0, x1, y1 int) {
		steps := max(abs(x1-x0), abs(y1-y0))
		for i := 0; i <= steps; i++ {
			x := x0 + (x1-x0)*i/steps
			y := y0 + (y1-y0)*i/steps
			for dx := -2; dx <= 2; dx++ {
				for dy := -2; dy <= 2; dy++ {
					img.SetNRGBA(x+dx, y+dy, ink)
				}
			}
		}
	}
	s := size
	stroke(s*6/32, s*17/32, s*13/32, s*24/32)
	stroke(s*13/32, s*24/32, s*26/32, s*8/32)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
