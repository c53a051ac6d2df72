package styledtext

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/photocard/pkg/textbuf"
	"github.com/xob0t/photocard/pkg/textwrap"
)

// Draw wraps b.Text to b.Box.MaxWidth, centers the lines in the box and
// paints each glyph in the color b.Colors assigns to its offset.
//
// The block is centered vertically in MaxHeight and may overflow it; nothing
// is clipped except by dst's bounds.
func Draw(dst draw.Image, face font.Face, b Block) Result {
	buf := textbuf.New(b.Text)
	lines := textwrap.Wrap(buf.String(), Measurer(face), b.Box.MaxWidth)

	lineHeight := LineHeight(face, b.Box.LineSpacing)
	top := b.Box.Y + (b.Box.MaxHeight-lineHeight*len(lines))/2
	ascent := face.Metrics().Ascent.Ceil()

	res := Result{
		Lines:      lines,
		LineHeight: lineHeight,
		Top:        top,
		Glyphs:     make([]Glyph, 0, buf.NonSpace()),
	}

	offset := 0
	for i, line := range lines {
		if i > 0 {
			// The wrap replaced one joining space.
			offset++
		}
		text := line.Text()
		x := b.Box.X
		if b.Box.MaxWidth > 0 {
			x += (b.Box.MaxWidth - Measure(face, text)) / 2
		}
		dot := fixed.P(x, top+i*lineHeight+ascent)

		prev := rune(-1)
		for _, r := range text {
			if prev >= 0 {
				dot.X += face.Kern(prev, r)
			}
			prev = r
			adv, ok := advance(face, r)
			if r == ' ' {
				dot.X += adv
				offset++
				continue
			}

			c := b.Colors.ColorAt(offset)
			paintGlyph(dst, face, dot, r, ok, c)
			if !ok {
				res.Fallbacks++
			}
			res.Glyphs = append(res.Glyphs, Glyph{
				Rune:   r,
				Offset: offset,
				Line:   i,
				Color:  c,
				Dot:    image.Pt(dot.X.Round(), dot.Y.Round()),
			})
			dot.X += adv
			offset++
		}
	}
	return res
}

// paintGlyph draws r at dot through a uniform source of color c. Runes
// without metrics are drawn as the fallback glyph.
func paintGlyph(dst draw.Image, face font.Face, dot fixed.Point26_6, r rune, measured bool, c color.RGBA) {
	if !measured {
		r = fallbackRune
	}
	dr, mask, maskp, _, ok := face.Glyph(dot, r)
	if !ok && mask == nil {
		return
	}
	draw.DrawMask(dst, dr, image.NewUniform(c), image.Point{}, mask, maskp, draw.Over)
}
