// Package styledtext paints word-wrapped, per-character colored text blocks.
//
// A Block is wrapped against its LayoutBox with real glyph metrics, centered
// in the box, and every glyph is painted with the color its offset resolves
// to in the block's colorrange.Set. Offsets count runes of the space-joined
// text (see package textbuf), so a wrap boundary consumes one offset exactly
// like the space it replaced.
package styledtext

import (
	"errors"
	"image"
	"image/color"

	"github.com/xob0t/photocard/pkg/colorrange"
	"github.com/xob0t/photocard/pkg/textwrap"
)

// LinePadding is added to the ascent+descent span of every line.
const LinePadding = 10

// ErrMeasurement tags glyphs that had no metrics and were drawn with the
// fallback glyph instead.
var ErrMeasurement = errors.New("glyph metrics unavailable")

// LayoutBox places one text block on the canvas.
type LayoutBox struct {
	X, Y        int
	MaxWidth    int
	MaxHeight   int
	FontSize    float64
	LineSpacing int // extra pixels between lines
}

// Block is a text block ready to paint.
type Block struct {
	ID     string
	Text   string
	Box    LayoutBox
	Colors colorrange.Set
}

// Glyph records one painted character.
type Glyph struct {
	Rune   rune
	Offset int // rune offset into the joined text
	Line   int
	Color  color.RGBA
	Dot    image.Point // baseline origin
}

// Result describes what Draw laid out and painted.
type Result struct {
	Lines      []textwrap.Line
	LineHeight int
	Top        int // y of the first line's top edge
	Glyphs     []Glyph
	Fallbacks  int // glyphs drawn with the fallback glyph
}
