// fonts.go - Font management with custom TTF support and embedded fallback font.
// Uses golang.org/x/image/font for OpenType rendering. Defaults to Go Regular
// font when no custom font is specified or when custom font loading fails.
package template

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/xob0t/photocard/pkg/logging"
)

// FontManager handles font loading with fallback.
type FontManager struct {
	parsed   *opentype.Font
	fallback bool
}

// NewFontManager creates a font manager with the specified font.
// If customPath is empty or invalid, uses embedded Go font.
func NewFontManager(customPath string, log *zap.Logger) (*FontManager, error) {
	var fontData []byte

	// Try custom font first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			logging.OrNop(log).Warn("could not load custom font, using default",
				zap.String("path", customPath),
				zap.Error(fmt.Errorf("%w: %v", ErrResourceMissing, err)))
		}
		fontData = data
	}

	return NewFontManagerFromBytes(fontData, log)
}

// NewFontManagerFromBytes parses fontData, falling back to the embedded Go
// font when fontData is empty or not a usable font.
func NewFontManagerFromBytes(fontData []byte, log *zap.Logger) (*FontManager, error) {
	if len(fontData) > 0 {
		parsed, err := opentype.Parse(fontData)
		if err == nil {
			return &FontManager{parsed: parsed}, nil
		}
		logging.OrNop(log).Warn("could not parse custom font, using default", zap.Error(err))
	}

	// Fallback to embedded Go font
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &FontManager{parsed: parsed, fallback: true}, nil
}

// Fallback reports whether the embedded font is in use.
func (fm *FontManager) Fallback() bool { return fm.fallback }

// GetFace returns a font.Face at the specified size.
func (fm *FontManager) GetFace(size float64, dpi float64) (font.Face, error) {
	if dpi <= 0 {
		dpi = 72
	}

	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return face, nil
}
