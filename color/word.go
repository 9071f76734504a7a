package color

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	hueShift = 7
	hueMask  = 0x1ff
	satMask  = 0x7f

	// WordSize is the byte length of one HS word in a scheme buffer.
	WordSize = 2
)

// PackHS packs whole degrees and percent into a wire word. Values are
// clamped to the fields' bit widths.
func PackHS(hueDeg, satPct int) uint16 {
	hueDeg = clamp(hueDeg, 0, hueMask)
	satPct = clamp(satPct, 0, satMask)
	return uint16(hueDeg)<<hueShift | uint16(satPct)
}

// UnpackHS is the inverse of PackHS.
func UnpackHS(w uint16) (hueDeg, satPct int) {
	return int(w>>hueShift) & hueMask, int(w) & satMask
}

// EncodeHS converts a hex color to its HS word. Brightness is dropped.
func EncodeHS(hex string) (uint16, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return 0, err
	}
	hsv := RGBToHSV(c)
	return PackHS(int(math.Floor(hsv.H*360)), int(math.Floor(hsv.S*100))), nil
}

// DecodeHS expands a word back to a fully bright "#rrggbb".
func DecodeHS(w uint16) string {
	hue, sat := UnpackHS(w)
	return HSVToRGB(HSV{H: float64(hue) / 360, S: float64(sat) / 100, V: 1}).Hex()
}

// DecodeHSBytes reads one big-endian word from the start of b.
func DecodeHSBytes(b []byte) (string, error) {
	if len(b) < WordSize {
		return "", fmt.Errorf("%w: %d bytes", ErrShortWord, len(b))
	}
	return DecodeHS(binary.BigEndian.Uint16(b)), nil
}

// DecodeScheme decodes consecutive words. A trailing odd byte is ignored.
func DecodeScheme(b []byte) []string {
	colors := make([]string, 0, len(b)/WordSize)
	for i := 0; i+1 < len(b); i += WordSize {
		colors = append(colors, DecodeHS(binary.BigEndian.Uint16(b[i:])))
	}
	return colors
}

// EncodeScheme encodes every color, stopping at the first invalid one.
func EncodeScheme(colors []string) ([]uint16, error) {
	words := make([]uint16, len(colors))
	for i, hex := range colors {
		w, err := EncodeHS(hex)
		if err != nil {
			return nil, fmt.Errorf("color %d: %w", i, err)
		}
		words[i] = w
	}
	return words, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
