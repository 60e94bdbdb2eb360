package idm

// Color is a normalized RGBA color with every component in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB builds an opaque color from 0-255 integer components.
func RGB(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// RGBA builds a color from 0-255 integer components including alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: float64(a) / 255}
}

// ColorFromPacked decodes a packed 24-bit 0xRRGGBB integer into an opaque color.
func ColorFromPacked(v int) Color {
	return RGB(uint8(v>>16&0xFF), uint8(v>>8&0xFF), uint8(v&0xFF))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Clamped returns the color with every component forced into [0, 1].
func (c Color) Clamped() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}
