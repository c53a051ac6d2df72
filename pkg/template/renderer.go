// renderer.go - Preset rendering: resolves a preset and its data into
// compositor layers and composes the final card.
// Missing assets never fail a render; they are logged and replaced by the
// placeholder background or skipped.
package template

import (
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/pkg/compositor"
	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/logging"
	"github.com/xob0t/photocard/pkg/styledtext"
)

// Renderer handles image composition from presets.
type Renderer struct {
	fontManager *FontManager
	resolve     AssetResolver
	now         func() time.Time
	log         *zap.Logger
}

// NewRenderer creates a new preset renderer using the font at fontPath.
func NewRenderer(fontPath string, log *zap.Logger) (*Renderer, error) {
	fm, err := NewFontManager(fontPath, log)
	if err != nil {
		return nil, err
	}
	return newRenderer(fm, log), nil
}

// NewRendererFromBytes creates a renderer from in-memory font data. Empty
// data selects the embedded font.
func NewRendererFromBytes(fontData []byte, log *zap.Logger) (*Renderer, error) {
	fm, err := NewFontManagerFromBytes(fontData, log)
	if err != nil {
		return nil, err
	}
	return newRenderer(fm, log), nil
}

// NewRendererForPreset loads the preset's font through resolve.
func NewRendererForPreset(preset *Preset, resolve AssetResolver, log *zap.Logger) (*Renderer, error) {
	var fontData []byte
	if preset.Font.Path != "" {
		data, err := readAsset(preset.Font.Path, resolve)
		if err != nil {
			logging.OrNop(log).Warn("could not load custom font, using default",
				zap.String("path", preset.Font.Path), zap.Error(err))
		}
		fontData = data
	}
	r, err := NewRendererFromBytes(fontData, log)
	if err != nil {
		return nil, err
	}
	r.SetAssetResolver(resolve)
	return r, nil
}

func newRenderer(fm *FontManager, log *zap.Logger) *Renderer {
	return &Renderer{
		fontManager: fm,
		now:         time.Now,
		log:         logging.OrNop(log),
	}
}

// SetAssetResolver makes asset IDs resolvable from memory. References the
// resolver does not know are read from disk.
func (r *Renderer) SetAssetResolver(fn AssetResolver) { r.resolve = fn }

// SetClock overrides the time used for the date stamp.
func (r *Renderer) SetClock(now func() time.Time) { r.now = now }

// Faces exposes the font source used for text blocks.
func (r *Renderer) Faces() compositor.FaceSource { return r.fontManager }

// RenderPreset merges data onto preset and composes the card.
func (r *Renderer) RenderPreset(preset *Preset, data *DataSpec) (*image.RGBA, error) {
	return r.Render(preset, data, nil)
}

// Render is RenderPreset with blocks already resolved by the caller. A nil
// blocks slice merges data onto the preset defaults.
func (r *Renderer) Render(preset *Preset, data *DataSpec, blocks []ResolvedBlock) (*image.RGBA, error) {
	if blocks == nil {
		blocks = MergeData(preset, data)
	}
	layers := r.Layers(preset, data, blocks)

	c := compositor.New(r.fontManager, r.log)
	c.Placeholder = generator.ParseHexRGBA(preset.Background.Color)
	c.Backdrop = generator.ParseHexRGBA(preset.Background.Backdrop)
	c.Now = r.now

	img, err := c.Compose(layers)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", preset.Meta.Name, err)
	}
	return img, nil
}

// Layers loads every raster the preset references and assembles the
// compositor input. Assets that fail to load are logged and left nil.
func (r *Renderer) Layers(preset *Preset, data *DataSpec, blocks []ResolvedBlock) compositor.Layers {
	bgSource := preset.Background.Source
	iconAt := image.Pt(preset.Icon.X, preset.Icon.Y)
	var dateText string
	if data != nil {
		if data.Background != "" {
			bgSource = data.Background
		}
		if data.Icon != nil {
			iconAt = image.Pt(data.Icon.X, data.Icon.Y)
		}
		dateText = data.Date
	}

	styled := make([]styledtext.Block, 0, len(blocks))
	for _, b := range blocks {
		styled = append(styled, b.Styled())
	}

	d := preset.Date
	return compositor.Layers{
		Background: r.loadLayer("background", bgSource),
		Overlay:    r.loadLayer("overlay", preset.Overlay.Source),
		Icon:       r.loadLayer("icon", preset.Icon.Source),
		IconAt:     iconAt,
		Date: compositor.DateStamp{
			Hidden:       d.Visible != nil && !*d.Visible,
			Text:         dateText,
			FontSize:     d.FontSize,
			Color:        generator.ParseHexRGBA(d.Color),
			MarginRight:  d.MarginRight,
			MarginBottom: d.MarginBottom,
		},
		Blocks: styled,
	}
}

// loadLayer loads one layer, logging and skipping it on failure.
func (r *Renderer) loadLayer(layer, ref string) image.Image {
	img, err := loadImage(ref, r.resolve)
	if err != nil {
		r.log.Warn("layer unavailable, skipping",
			zap.String("layer", layer),
			zap.String("source", ref),
			zap.Error(err))
		return nil
	}
	return img
}
