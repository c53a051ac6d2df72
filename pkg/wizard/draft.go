// draft.go - Immutable card payload carried between wizard states.
package wizard

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/xob0t/photocard/pkg/colorrange"
	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/styledtext"
	"github.com/xob0t/photocard/pkg/template"
	"github.com/xob0t/photocard/pkg/textbuf"
)

// ErrUnknownBlock reports an edit addressed to a block the draft lacks.
var ErrUnknownBlock = errors.New("unknown block")

// Draft is everything needed to render one card. Its With methods return
// modified copies; a Draft handed out by the wizard never changes.
type Draft struct {
	Background string // image reference; empty renders the placeholder
	IconAt     *image.Point
	Date       string
	blocks     []template.ResolvedBlock
}

// NewDraft returns a draft over already resolved blocks.
func NewDraft(background string, blocks []template.ResolvedBlock) Draft {
	return Draft{Background: background, blocks: slices.Clone(blocks)}
}

// Blocks returns a copy of the draft's blocks in render order.
func (d Draft) Blocks() []template.ResolvedBlock {
	return slices.Clone(d.blocks)
}

// Block returns the block with the given ID.
func (d Draft) Block(id string) (template.ResolvedBlock, bool) {
	i := d.index(id)
	if i < 0 {
		return template.ResolvedBlock{}, false
	}
	return d.blocks[i], true
}

func (d Draft) index(id string) int {
	return slices.IndexFunc(d.blocks, func(b template.ResolvedBlock) bool { return b.ID == id })
}

// update applies fn to a copy of block id.
func (d Draft) update(id string, fn func(*template.ResolvedBlock)) (Draft, error) {
	i := d.index(id)
	if i < 0 {
		return d, fmt.Errorf("%w: %q", ErrUnknownBlock, id)
	}
	out := d
	out.blocks = slices.Clone(d.blocks)
	fn(&out.blocks[i])
	return out, nil
}

// WithText replaces a block's text and carries its colors over to the
// characters that survive the edit.
func (d Draft) WithText(id, text string) (Draft, error) {
	return d.update(id, func(b *template.ResolvedBlock) {
		old, updated := textbuf.New(b.Text), textbuf.New(text)
		b.Colors = b.Colors.Reproject(old, updated)
		b.Text = updated.String()
	})
}

// WithColor colors [start, end) of a block. Offsets are clamped to the
// block's text.
func (d Draft) WithColor(id string, start, end int, c color.RGBA) (Draft, error) {
	return d.update(id, func(b *template.ResolvedBlock) {
		b.Colors = b.Colors.Assign(start, end, c)
	})
}

// WithColors replaces a block's colors. The set must cover the block's
// current text.
func (d Draft) WithColors(id string, s colorrange.Set) (Draft, error) {
	b, ok := d.Block(id)
	if !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownBlock, id)
	}
	if n := textbuf.New(b.Text).Len(); s.Len() != n {
		return d, fmt.Errorf("%w: set covers %d runes, text has %d", colorrange.ErrInvalidRange, s.Len(), n)
	}
	return d.update(id, func(b *template.ResolvedBlock) { b.Colors = s })
}

// WithBox moves or resizes a block.
func (d Draft) WithBox(id string, box styledtext.LayoutBox) (Draft, error) {
	return d.update(id, func(b *template.ResolvedBlock) { b.Box = box })
}

// WithBackground swaps the background image reference.
func (d Draft) WithBackground(ref string) Draft {
	d.Background = ref
	return d
}

// WithIcon moves the icon.
func (d Draft) WithIcon(at image.Point) Draft {
	d.IconAt = &at
	return d
}

// Data converts the draft into the data.json form so it can be saved and
// rendered again later. Every field is written explicitly, so merging the
// result onto the same preset reproduces the draft's blocks.
func (d Draft) Data() *template.DataSpec {
	spec := &template.DataSpec{
		Background: d.Background,
		Date:       d.Date,
		Blocks:     make(map[string]template.BlockData, len(d.blocks)),
	}
	if d.IconAt != nil {
		spec.Icon = &template.IconPosition{X: d.IconAt.X, Y: d.IconAt.Y}
	}
	for _, b := range d.blocks {
		spec.Blocks[b.ID] = template.BlockData{
			Visible: template.Ptr(true),
			Text:    template.Ptr(b.Text),
			Colors:  template.SpansFromSet(b.Colors),
			Color:   generator.FormatHex(b.Colors.Default()),
			Layout:  template.OverrideFor(template.LayoutOf(b.Box)),
		}
	}
	return spec
}
