// merge.go - Merge data.json overrides onto preset defaults.
package template

import (
	"sort"

	"github.com/xob0t/photocard/pkg/colorrange"
	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/styledtext"
	"github.com/xob0t/photocard/pkg/textbuf"
)

// ResolvedBlock is a block with its final text, box and colors.
type ResolvedBlock struct {
	ID     string
	ZIndex int
	Box    styledtext.LayoutBox
	Text   string
	Colors colorrange.Set
}

// Styled converts r into the renderer's block type.
func (r ResolvedBlock) Styled() styledtext.Block {
	return styledtext.Block{ID: r.ID, Text: r.Text, Box: r.Box, Colors: r.Colors}
}

// MergeData combines preset block defaults with user-provided data overrides.
// Blocks with visible=false are excluded from the result.
func MergeData(preset *Preset, data *DataSpec) []ResolvedBlock {
	var result []ResolvedBlock

	for _, b := range preset.Blocks {
		merged := b.Defaults

		// Apply data overrides if present.
		var override BlockData
		if data != nil {
			override = data.Blocks[b.ID]
			mergeBlockData(&merged, override)
		}

		// Check visibility.
		if merged.Visible != nil && !*merged.Visible {
			continue
		}

		layout := b.Layout
		if merged.Layout != nil {
			mergeLayout(&layout, *merged.Layout)
		}

		def := generator.ParseHexRGBA(b.Color)
		if merged.Color != "" {
			def = generator.ParseHexRGBA(merged.Color)
		}

		buf := textbuf.New(merged.TextValue())
		colors := colorrange.FromRanges(buf.Len(), def, toRanges(merged.Colors))

		// New text with no new spans keeps the default spans on the
		// characters that survived the edit.
		if override.Text != nil && override.Colors == nil && len(b.Defaults.Colors) > 0 {
			old := textbuf.New(b.Defaults.TextValue())
			colors = colorrange.FromRanges(old.Len(), def, toRanges(b.Defaults.Colors)).Reproject(old, buf)
		}

		result = append(result, ResolvedBlock{
			ID:     b.ID,
			ZIndex: b.ZIndex,
			Box:    layout.Box(),
			Text:   buf.String(),
			Colors: colors,
		})
	}

	// Sort by z-index (lower renders first, higher renders on top).
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ZIndex < result[j].ZIndex
	})

	return result
}

// Box converts the JSON layout into a LayoutBox.
func (l Layout) Box() styledtext.LayoutBox {
	return styledtext.LayoutBox{
		X:           l.X,
		Y:           l.Y,
		MaxWidth:    l.MaxWidth,
		MaxHeight:   l.MaxHeight,
		FontSize:    l.FontSize,
		LineSpacing: l.LineSpacing,
	}
}

// LayoutOf is the inverse of Layout.Box.
func LayoutOf(box styledtext.LayoutBox) Layout {
	return Layout{
		X:           box.X,
		Y:           box.Y,
		MaxWidth:    box.MaxWidth,
		MaxHeight:   box.MaxHeight,
		FontSize:    box.FontSize,
		LineSpacing: box.LineSpacing,
	}
}

// mergeBlockData overlays user overrides onto defaults.
func mergeBlockData(base *BlockData, over BlockData) {
	if over.Visible != nil {
		base.Visible = over.Visible
	}
	if over.Text != nil {
		base.Text = over.Text
		base.Colors = nil
	}
	if over.Colors != nil {
		base.Colors = over.Colors // replace, not append
	}
	if over.Color != "" {
		base.Color = over.Color
	}
	if over.Layout != nil {
		base.Layout = stackOverrides(base.Layout, over.Layout)
	}
}

// stackOverrides returns base with over's present fields on top.
func stackOverrides(base, over *LayoutOverride) *LayoutOverride {
	if base == nil {
		return over
	}
	l := *base
	pick(&l.X, over.X)
	pick(&l.Y, over.Y)
	pick(&l.MaxWidth, over.MaxWidth)
	pick(&l.MaxHeight, over.MaxHeight)
	pick(&l.FontSize, over.FontSize)
	pick(&l.LineSpacing, over.LineSpacing)
	return &l
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// mergeLayout applies the fields present in over.
func mergeLayout(base *Layout, over LayoutOverride) {
	if over.X != nil {
		base.X = *over.X
	}
	if over.Y != nil {
		base.Y = *over.Y
	}
	if over.MaxWidth != nil {
		base.MaxWidth = *over.MaxWidth
	}
	if over.MaxHeight != nil {
		base.MaxHeight = *over.MaxHeight
	}
	if over.FontSize != nil && *over.FontSize > 0 {
		base.FontSize = *over.FontSize
	}
	if over.LineSpacing != nil {
		base.LineSpacing = *over.LineSpacing
	}
}

func toRanges(spans []ColorSpan) []colorrange.Range {
	ranges := make([]colorrange.Range, 0, len(spans))
	for _, sp := range spans {
		ranges = append(ranges, colorrange.Range{Start: sp.Start, End: sp.End, Color: generator.ParseHexRGBA(sp.Color)})
	}
	return ranges
}

// SpansFromSet converts a Set back into its JSON form, omitting ranges in
// the default color. The result is never nil, so a set with no colored
// ranges still overrides inherited spans.
func SpansFromSet(s colorrange.Set) []ColorSpan {
	spans := []ColorSpan{}
	for _, r := range s.Ranges() {
		if r.Color == s.Default() {
			continue
		}
		spans = append(spans, ColorSpan{Start: r.Start, End: r.End, Color: generator.FormatHex(r.Color)})
	}
	return spans
}
