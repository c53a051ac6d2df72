// assets.go - Decode background, overlay and icon rasters from asset
// references (in-memory asset IDs or file paths).
package template

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // decoder registration
	_ "golang.org/x/image/tiff" // decoder registration
	_ "golang.org/x/image/webp" // decoder registration
)

// ErrResourceMissing reports a configured asset that could not be read or
// decoded. Rendering continues with a placeholder.
var ErrResourceMissing = errors.New("resource missing")

// AssetResolver returns the bytes for an asset ID, or nil when ref is not a
// known ID and should be treated as a file path.
type AssetResolver func(ref string) []byte

// openAsset returns a reader for ref.
func openAsset(ref string, resolve AssetResolver) (io.ReadCloser, error) {
	if resolve != nil {
		if data := resolve(ref); data != nil {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}
	return os.Open(ref)
}

// readAsset returns the full contents of ref.
func readAsset(ref string, resolve AssetResolver) ([]byte, error) {
	rc, err := openAsset(ref, resolve)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceMissing, ref, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceMissing, ref, err)
	}
	return data, nil
}

// loadImage decodes the raster behind ref. An empty ref returns nil, nil.
func loadImage(ref string, resolve AssetResolver) (image.Image, error) {
	if ref == "" {
		return nil, nil
	}
	rc, err := openAsset(ref, resolve)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceMissing, ref, err)
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrResourceMissing, ref, err)
	}
	return img, nil
}
