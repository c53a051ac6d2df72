// Package template provides JSON-driven photocard rendering via presets and
// per-card data.
package template

// ── Preset types ──

// Preset is the top-level structure of a preset.json file. It fixes the
// card's layers and the default placement of every text block.
type Preset struct {
	Meta       Meta       `json:"meta"`
	Background Background `json:"background"`
	Overlay    Overlay    `json:"overlay"`
	Icon       Icon       `json:"icon"`
	Font       FontConfig `json:"font"`
	Date       DateConfig `json:"date"`
	Blocks     []Block    `json:"blocks"`
	Schema     Schema     `json:"schema"`
}

// Meta holds preset metadata.
type Meta struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// Background defines the photo layer and the colors around it.
type Background struct {
	Source   string `json:"source"`   // path or asset ID; data.json may override
	Color    string `json:"color"`    // placeholder when the photo is missing
	Backdrop string `json:"backdrop"` // fills the canvas below a short photo
}

// Overlay is the transparent template composited over the background.
type Overlay struct {
	Source string `json:"source"`
}

// Icon is the logo layer.
type Icon struct {
	Source string `json:"source"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// FontConfig specifies the font source.
type FontConfig struct {
	Path     string `json:"path"`     // custom TTF/OTF path (resolved from assets)
	Fallback string `json:"fallback"` // "embedded" for default
}

// DateConfig places the bottom-right date stamp.
type DateConfig struct {
	Visible      *bool   `json:"visible,omitempty"` // nil = true
	FontSize     float64 `json:"fontSize"`
	Color        string  `json:"color"`
	MarginRight  int     `json:"marginRight"`
	MarginBottom int     `json:"marginBottom"`
}

// ── Block types ──

// Block is one independently wrapped and colored text region, such as the
// headline or the custom message.
type Block struct {
	ID       string    `json:"id"`
	Layout   Layout    `json:"layout"`
	Color    string    `json:"color"`  // color of characters no span covers
	ZIndex   int       `json:"zIndex"` // rendering order (higher = on top)
	Defaults BlockData `json:"defaults"`
}

// Layout is the JSON form of a LayoutBox. Coordinates are absolute pixels
// on the 1080×1280 canvas.
type Layout struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	MaxWidth    int     `json:"maxWidth"`
	MaxHeight   int     `json:"maxHeight"`
	FontSize    float64 `json:"fontSize"`
	LineSpacing int     `json:"lineSpacing"`
}

// BlockData holds the content of a block. Used both as defaults in
// preset.json and as overrides in data.json. Nil fields inherit; a non-nil
// empty Colors clears the inherited spans.
type BlockData struct {
	Visible *bool           `json:"visible,omitempty"` // nil = inherit default (true)
	Text    *string         `json:"text,omitempty"`
	Colors  []ColorSpan     `json:"colors"`
	Color   string          `json:"color,omitempty"`  // default color override
	Layout  *LayoutOverride `json:"layout,omitempty"` // present fields override
}

// TextValue returns the block text, or "" when unset.
func (d BlockData) TextValue() string {
	if d.Text == nil {
		return ""
	}
	return *d.Text
}

// LayoutOverride moves or resizes a block. Fields left out of the JSON keep
// the preset's value; present fields apply even when zero.
type LayoutOverride struct {
	X           *int     `json:"x,omitempty"`
	Y           *int     `json:"y,omitempty"`
	MaxWidth    *int     `json:"maxWidth,omitempty"`
	MaxHeight   *int     `json:"maxHeight,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"` // ignored unless positive
	LineSpacing *int     `json:"lineSpacing,omitempty"`
}

// OverrideFor returns an override that sets every field to l's value.
func OverrideFor(l Layout) *LayoutOverride {
	return &LayoutOverride{
		X:           Ptr(l.X),
		Y:           Ptr(l.Y),
		MaxWidth:    Ptr(l.MaxWidth),
		MaxHeight:   Ptr(l.MaxHeight),
		FontSize:    Ptr(l.FontSize),
		LineSpacing: Ptr(l.LineSpacing),
	}
}

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T { return &v }

// ColorSpan colors the runes [Start, End) of the block's text, counted after
// whitespace has been collapsed to single spaces.
type ColorSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Color string `json:"color"`
}

// ── Data types ──

// DataSpec is the top-level structure of data.json.
type DataSpec struct {
	Background string               `json:"background,omitempty"` // photo override
	Icon       *IconPosition        `json:"icon,omitempty"`
	Date       string               `json:"date,omitempty"` // fixed date text
	Blocks     map[string]BlockData `json:"blocks"`
}

// IconPosition moves the icon for one card.
type IconPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ── Schema types (self-documenting presets) ──

// Schema documents the expected data.json format for this preset.
type Schema struct {
	Description string                 `json:"description"`
	Blocks      map[string]SchemaBlock `json:"blocks"`
}

// SchemaBlock documents one block's editable fields.
type SchemaBlock struct {
	Description string            `json:"description"`
	Fields      map[string]string `json:"fields"` // field name → description
}
