// png.go - PNG encoder.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"io"
)

// writePNG encodes img as PNG with default compression.
func writePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}
