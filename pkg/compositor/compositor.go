// compositor.go - Assemble the canonical 1080×1280 card from its layers.
// Layer order: backdrop -> scaled background -> overlay template -> icon ->
// date stamp -> text blocks. Layers are clipped to the canvas at the origin.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/logging"
	"github.com/xob0t/photocard/pkg/styledtext"
)

// Canonical output size.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1280
)

// ErrComposition reports a render that could not be completed, such as a
// raster with empty bounds or a font face that could not be built.
var ErrComposition = errors.New("composition failed")

// FaceSource provides font faces by point size.
type FaceSource interface {
	GetFace(size float64, dpi float64) (font.Face, error)
}

// Layers is everything one card is built from.
type Layers struct {
	Background image.Image // nil renders the placeholder color
	Overlay    image.Image // optional transparent template
	Icon       image.Image // optional
	IconAt     image.Point
	Date       DateStamp
	Blocks     []styledtext.Block // painted in order
}

// Compositor renders Layers onto a fresh canvas. It keeps no state between
// calls.
type Compositor struct {
	faces FaceSource
	log   *zap.Logger

	Backdrop    color.RGBA // fills whatever the background does not cover
	Placeholder color.RGBA // substitutes a missing background
	DPI         float64
	Now         func() time.Time
}

// New returns a compositor drawing text with faces from fs.
func New(fs FaceSource, log *zap.Logger) *Compositor {
	return &Compositor{
		faces:       fs,
		log:         logging.OrNop(log),
		Backdrop:    color.RGBA{A: 255},
		Placeholder: generator.ParseHexRGBA("#1a1a2e"),
		DPI:         72,
		Now:         time.Now,
	}
}

// Compose renders l and returns an image of exactly CanvasWidth×CanvasHeight
// with its origin at (0,0).
func (c *Compositor) Compose(l Layers) (*image.RGBA, error) {
	bg := l.Background
	if bg == nil {
		c.log.Warn("background missing, using placeholder",
			zap.String("color", generator.FormatHex(c.Placeholder)))
		bg = generator.NewSolidImage(CanvasWidth, CanvasHeight, c.Placeholder)
	}
	if bg.Bounds().Empty() {
		return nil, fmt.Errorf("%w: background has empty bounds %v", ErrComposition, bg.Bounds())
	}

	if l.Overlay != nil && l.Overlay.Bounds().Empty() {
		return nil, fmt.Errorf("%w: overlay has empty bounds %v", ErrComposition, l.Overlay.Bounds())
	}

	// Everything outside the canonical rectangle at the origin is cropped,
	// so layers are drawn clipped to it.
	canvas := generator.NewSolidImage(CanvasWidth, CanvasHeight, c.Backdrop)
	drawBackground(canvas, bg)

	if l.Overlay != nil {
		paste(canvas, l.Overlay, image.Point{})
	}
	if l.Icon != nil {
		if l.Icon.Bounds().Empty() {
			return nil, fmt.Errorf("%w: icon has empty bounds %v", ErrComposition, l.Icon.Bounds())
		}
		paste(canvas, l.Icon, l.IconAt)
	}

	faces := newFaceCache(c.faces, c.DPI)
	defer faces.close()

	if !l.Date.Hidden {
		if err := c.drawDate(canvas, faces, l.Date); err != nil {
			return nil, err
		}
	}

	for _, b := range l.Blocks {
		face, err := faces.get(b.Box.FontSize)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.ID, err)
		}
		res := styledtext.Draw(canvas, face, b)
		if res.Fallbacks > 0 {
			c.log.Warn("substituted fallback glyphs",
				zap.String("block", b.ID),
				zap.Int("count", res.Fallbacks),
				zap.Error(styledtext.ErrMeasurement))
		}
	}

	return canvas, nil
}

// scaledHeight returns the height of b scaled to width, keeping aspect.
func scaledHeight(b image.Rectangle, width int) int {
	return max(int(float64(b.Dy())*float64(width)/float64(b.Dx())), 1)
}

// paste alpha-composites src with its top-left corner at at.
func paste(dst draw.Image, src image.Image, at image.Point) {
	sb := src.Bounds()
	draw.Draw(dst, sb.Sub(sb.Min).Add(at), src, sb.Min, draw.Over)
}

// drawBackground scales bg to CanvasWidth, keeping aspect, and draws it
// at the origin. Only the source rows that land above CanvasHeight are
// scaled, so the scaler's buffers stay bounded for very tall sources.
func drawBackground(dst draw.Image, bg image.Image) {
	sr := bg.Bounds()
	dr := image.Rect(0, 0, CanvasWidth, scaledHeight(sr, CanvasWidth))
	if dr.Dy() > CanvasHeight {
		// Two extra rows feed the Catmull-Rom kernel at the bottom edge.
		rows := min(ceilDiv(CanvasHeight*sr.Dy(), dr.Dy())+2, sr.Dy())
		scale := float64(dr.Dy()) / float64(sr.Dy())
		sr.Max.Y = sr.Min.Y + rows
		dr.Max.Y = max(int(float64(rows)*scale), 1)
	}
	xdraw.CatmullRom.Scale(dst, dr, bg, sr, xdraw.Over, nil)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// faceCache builds each face size once per Compose call.
type faceCache struct {
	src   FaceSource
	dpi   float64
	faces map[float64]font.Face
}

func newFaceCache(src FaceSource, dpi float64) *faceCache {
	return &faceCache{src: src, dpi: dpi, faces: make(map[float64]font.Face)}
}

func (fc *faceCache) get(size float64) (font.Face, error) {
	if f, ok := fc.faces[size]; ok {
		return f, nil
	}
	if fc.src == nil {
		return nil, fmt.Errorf("%w: no font source", ErrComposition)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: font size %v", ErrComposition, size)
	}
	f, err := fc.src.GetFace(size, fc.dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComposition, err)
	}
	fc.faces[size] = f
	return f, nil
}

func (fc *faceCache) close() {
	for _, f := range fc.faces {
		f.Close()
	}
}
