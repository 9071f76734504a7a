package color

import "math"

// HSV holds hue, saturation and value, each in [0,1]. Hue may exceed 1
// when it comes from an out-of-range wire word; HSVToRGB wraps it.
type HSV struct {
	H, S, V float64
}

// RGBToHSV uses the six-sector formula: hue comes from whichever channel
// is largest.
func RGBToHSV(c RGB) HSV {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	d := hi - lo

	var h float64
	if d != 0 {
		switch hi {
		case r:
			h = math.Mod((g-b)/d, 6)
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h /= 6
		if h < 0 {
			h++
		}
	}

	var s float64
	if hi != 0 {
		s = d / hi
	}
	return HSV{H: h, S: s, V: hi}
}

func HSVToRGB(c HSV) RGB {
	i := math.Floor(c.H * 6)
	f := c.H*6 - i
	v := c.V
	p := v * (1 - c.S)
	q := v * (1 - f*c.S)
	t := v * (1 - (1-f)*c.S)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return RGB{R: channel(r), G: channel(g), B: channel(b)}
}

func channel(x float64) uint8 {
	n := math.Round(x * 255)
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	}
	return uint8(n)
}
