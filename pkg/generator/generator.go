// Package generator writes rendered cards to lossless raster files.
//
// The format is chosen by file extension: PNG, BMP or TIFF.
package generator

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Config holds parameters for output generation.
type Config struct {
	Image image.Image // rendered card
}

// Formats lists the supported output extensions.
var Formats = []string{".png", ".bmp", ".tif", ".tiff"}

// Generate writes cfg.Image to output. The format is inferred from the file
// extension:
//   - ".png" → PNG image
//   - ".bmp" → 32-bit BMP image
//   - ".tif", ".tiff" → Deflate-compressed TIFF image
func Generate(output string, cfg Config) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := GenerateToWriter(f, filepath.Ext(output), cfg); err != nil {
		return err
	}
	return f.Sync()
}

// GenerateToWriter writes the image to an io.Writer in the format named by
// ext. This is useful for in-memory generation (HTTP responses, WASM).
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	if cfg.Image == nil {
		return fmt.Errorf("no image to write")
	}

	switch strings.ToLower(ext) {
	case ".png":
		return writePNG(w, cfg.Image)
	case ".bmp":
		return writeBMP(w, cfg.Image)
	case ".tif", ".tiff":
		return writeTIFF(w, cfg.Image)
	default:
		return fmt.Errorf("unsupported format %q: use %s", ext, strings.Join(Formats, ", "))
	}
}

// OutputName derives a file name from a headline: the first 50 characters
// with spaces turned into underscores and path separators into dashes.
func OutputName(title, ext string) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > 50 {
		title = string([]rune(title)[:50])
	}
	name := strings.NewReplacer(" ", "_", "/", "-", "\\", "-").Replace(title)
	if name == "" {
		name = "photocard"
	}
	if ext == "" {
		ext = ".png"
	}
	return name + ext
}
