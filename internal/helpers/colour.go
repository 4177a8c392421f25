package helpers

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

const (
	chipDark  = "#000000"
	chipLight = "#FFFFFF"
)

// Colour is an sRGB colour with 8-bit channels.
type Colour [3]uint8

// ParseColour accepts #RGB or #RRGGBB, with or without the leading hash.
func ParseColour(raw string) (Colour, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return Colour{}, fmt.Errorf("colour %q: want #RGB or #RRGGBB", raw)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Colour{}, fmt.Errorf("colour %q: %w", raw, err)
	}
	return Colour{b[0], b[1], b[2]}, nil
}

// Luminance is the WCAG relative luminance, 0 for black and 1 for white.
func (c Colour) Luminance() float64 {
	weights := [3]float64{0.2126, 0.7152, 0.0722}
	var l float64
	for i, ch := range c {
		v := float64(ch) / 255
		if v <= 0.03928 {
			v /= 12.92
		} else {
			v = math.Pow((v+0.055)/1.055, 2.4)
		}
		l += weights[i] * v
	}
	return l
}

// Contrast returns the WCAG contrast ratio between c and o, from 1 to 21.
func (c Colour) Contrast(o Colour) float64 {
	hi, lo := c.Luminance(), o.Luminance()
	if hi < lo {
		hi, lo = lo, hi
	}
	return (hi + 0.05) / (lo + 0.05)
}

// ReadableTextColour picks black or white chip text for a palette colour,
// whichever contrasts more. Unparseable backgrounds get black.
func ReadableTextColour(background string) string {
	bg, err := ParseColour(background)
	if err != nil {
		return chipDark
	}
	if bg.Contrast(Colour{255, 255, 255}) > bg.Contrast(Colour{}) {
		return chipLight
	}
	return chipDark
}
