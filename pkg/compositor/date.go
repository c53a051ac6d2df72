// date.go - Bottom-right date stamp.
package compositor

import (
	"image"
	"image/color"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xob0t/photocard/pkg/styledtext"
)

// DateStamp is a single-line, single-color label anchored to the
// bottom-right corner of the canonical canvas.
type DateStamp struct {
	Hidden       bool
	Text         string // empty means FormatDate(now)
	FontSize     float64
	Color        color.RGBA
	MarginRight  int
	MarginBottom int
}

// Date stamp defaults.
const (
	DefaultDateFontSize     = 24
	DefaultDateMarginRight  = 30
	DefaultDateMarginBottom = 20
)

// FormatDate renders t as "DD MONTH, YYYY" in upper case, e.g.
// "11 JULY, 2025".
func FormatDate(t time.Time) string {
	return cases.Upper(language.English).String(t.Format("02 January, 2006"))
}

// DateOrigin returns the baseline origin for text so that its bounding box
// sits MarginRight/MarginBottom pixels inside the canvas corner.
func DateOrigin(face font.Face, text string, d DateStamp) image.Point {
	m := face.Metrics()
	w := styledtext.Measure(face, text)
	h := (m.Ascent + m.Descent).Ceil()
	x := CanvasWidth - w - d.MarginRight
	top := CanvasHeight - h - d.MarginBottom
	return image.Pt(x, top+m.Ascent.Ceil())
}

func (c *Compositor) drawDate(dst *image.RGBA, faces *faceCache, d DateStamp) error {
	if d.FontSize <= 0 {
		d.FontSize = DefaultDateFontSize
	}
	if d.Color == (color.RGBA{}) {
		d.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	text := d.Text
	if text == "" {
		text = FormatDate(c.Now())
	}

	face, err := faces.get(d.FontSize)
	if err != nil {
		return err
	}
	at := DateOrigin(face, text, d)
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(d.Color),
		Face: face,
		Dot:  fixed.P(at.X, at.Y),
	}
	drawer.DrawString(text)
	return nil
}
