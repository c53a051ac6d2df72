// loader.go - Load .cardpack (ZIP) bundles and parse preset.json / data.json.
package template

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/photocard/pkg/compositor"
)

// Preset defaults.
const (
	DefaultBlockFontSize = 36
	DefaultTextColor     = "#ffffff"
	DefaultPlaceholder   = "#1a1a2e"
	DefaultBackdrop      = "#000000"
)

// LoadPreset opens a .cardpack ZIP, extracts it to a temp directory,
// parses preset.json, resolves all asset paths, and returns the preset.
// The returned cleanup function removes the temp directory.
func LoadPreset(path string) (*Preset, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	// Extract to temp dir.
	tmpDir, err := os.MkdirTemp("", "cardpack-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(&r.Reader, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "preset.json"))
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("read preset.json: %w", err)
	}

	preset, err := ParsePreset(data)
	if err != nil {
		cleanup()
		return nil, noop, err
	}

	// Resolve asset paths relative to tmpDir.
	resolveAssetPaths(preset, tmpDir)

	return preset, cleanup, nil
}

// ParsePreset decodes preset.json content and applies defaults.
func ParsePreset(data []byte) (*Preset, error) {
	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("parse preset.json: %w", err)
	}
	Normalize(&preset)
	return &preset, nil
}

// LoadData reads and parses a data.json file. Returns warnings for issues.
func LoadData(path string) (*DataSpec, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read data.json: %w", err)
	}
	spec, warnings := ParseData(data)
	return spec, warnings, nil
}

// ParseData decodes data.json content. Malformed input degrades to an
// empty spec plus a warning so the preset defaults still render.
func ParseData(data []byte) (*DataSpec, []string) {
	var spec DataSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return &DataSpec{Blocks: make(map[string]BlockData)},
			[]string{fmt.Sprintf("malformed data.json: %v, using all defaults", err)}
	}
	if spec.Blocks == nil {
		spec.Blocks = make(map[string]BlockData)
	}
	return &spec, nil
}

// Normalize fills every unset preset field with its default.
func Normalize(preset *Preset) {
	if preset.Background.Color == "" {
		preset.Background.Color = DefaultPlaceholder
	}
	if preset.Background.Backdrop == "" {
		preset.Background.Backdrop = DefaultBackdrop
	}

	d := &preset.Date
	if d.Visible == nil {
		d.Visible = Ptr(true)
	}
	if d.FontSize <= 0 {
		d.FontSize = compositor.DefaultDateFontSize
	}
	if d.Color == "" {
		d.Color = DefaultTextColor
	}
	if d.MarginRight <= 0 {
		d.MarginRight = compositor.DefaultDateMarginRight
	}
	if d.MarginBottom <= 0 {
		d.MarginBottom = compositor.DefaultDateMarginBottom
	}

	for i := range preset.Blocks {
		applyBlockDefaults(&preset.Blocks[i])
	}
}

// applyBlockDefaults sets sane fallbacks for block fields.
func applyBlockDefaults(b *Block) {
	if b.Layout.FontSize <= 0 {
		b.Layout.FontSize = DefaultBlockFontSize
	}
	if b.Color == "" {
		b.Color = DefaultTextColor
	}

	// Default visibility = true.
	if b.Defaults.Visible == nil {
		b.Defaults.Visible = Ptr(true)
	}
}

// resolveAssetPaths makes all relative asset paths absolute using baseDir.
func resolveAssetPaths(preset *Preset, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	preset.Font.Path = resolve(preset.Font.Path)
	preset.Background.Source = resolve(preset.Background.Source)
	preset.Overlay.Source = resolve(preset.Overlay.Source)
	preset.Icon.Source = resolve(preset.Icon.Source)
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.Reader, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		// Ensure parent directory exists.
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes a single zip entry to disk.
func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
