// Package color converts between #RRGGBB strings and the lamp's 16-bit
// hue/saturation word.
//
// The word carries hue in whole degrees and saturation in whole percent.
// Brightness is never transmitted, so decoding always yields a fully bright
// color and a round trip through the word is lossy for anything darker.
package color

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxSchemeColors is the most colors the lamp keeps in its scheme.
const MaxSchemeColors = 10

var (
	ErrInvalidColor  = errors.New("color: invalid color")
	ErrShortWord     = errors.New("color: short hs word")
	ErrTooManyColors = errors.New("color: too many colors")
)

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// RGB is a color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (RGB, error) {
	m := hexPattern.FindStringSubmatch(s)
	if m == nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	n, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// Hex formats c as lower-case "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scale multiplies every channel by pct/100, truncating.
func (c RGB) Scale(pct int) RGB {
	if pct >= 100 {
		return c
	}
	if pct <= 0 {
		return RGB{}
	}
	f := func(v uint8) uint8 { return uint8(int(v) * pct / 100) }
	return RGB{R: f(c.R), G: f(c.G), B: f(c.B)}
}

// ParseList splits raw on whitespace and commas and normalizes every token
// to "#rrggbb". An empty input yields an empty list.
func ParseList(raw string) ([]string, error) {
	colors := make([]string, 0, MaxSchemeColors)
	for _, tok := range splitList(raw) {
		m := hexPattern.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("%w: %q, use #RRGGBB", ErrInvalidColor, tok)
		}
		colors = append(colors, "#"+strings.ToLower(m[1]))
	}
	if len(colors) > MaxSchemeColors {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyColors, len(colors), MaxSchemeColors)
	}
	return colors, nil
}

// ParseListLenient is ParseList for previews: bad tokens are skipped and the
// result is cut to MaxSchemeColors.
func ParseListLenient(raw string) []string {
	colors := make([]string, 0, MaxSchemeColors)
	for _, tok := range splitList(raw) {
		m := hexPattern.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		colors = append(colors, "#"+strings.ToLower(m[1]))
		if len(colors) == MaxSchemeColors {
			break
		}
	}
	return colors
}

func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	})
}
