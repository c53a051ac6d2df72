package styledtext

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/photocard/pkg/textwrap"
)

// fallbackRune stands in for runes the face has no glyph for.
const fallbackRune = '?'

// advance returns the advance used for r and whether r had real metrics.
func advance(face font.Face, r rune) (fixed.Int26_6, bool) {
	if a, ok := face.GlyphAdvance(r); ok {
		return a, true
	}
	if a, ok := face.GlyphAdvance(fallbackRune); ok {
		return a, false
	}
	return face.Metrics().Height / 2, false
}

// MeasureFixed returns the advance width of s, including kerning, with
// missing glyphs measured as the fallback glyph.
func MeasureFixed(face font.Face, s string) fixed.Int26_6 {
	var width fixed.Int26_6
	prev := rune(-1)
	for _, r := range s {
		if prev >= 0 {
			width += face.Kern(prev, r)
		}
		a, _ := advance(face, r)
		width += a
		prev = r
	}
	return width
}

// Measure returns the pixel width of s rounded up.
func Measure(face font.Face, s string) int {
	return MeasureFixed(face, s).Ceil()
}

// Measurer adapts face to a textwrap.MeasureFunc so wrapping and painting
// agree on every width.
func Measurer(face font.Face) textwrap.MeasureFunc {
	return func(s string) int { return Measure(face, s) }
}

// LineHeight returns the distance between baselines for face.
func LineHeight(face font.Face, extra int) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil() + LinePadding + extra
}
