package template

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func examplePreset(t *testing.T) *Preset {
	t.Helper()
	presetJSON, _ := GetExampleJSON()
	p, err := ParsePreset([]byte(presetJSON))
	if err != nil {
		t.Fatalf("ParsePreset(example): %v", err)
	}
	return p
}

func exampleData(t *testing.T) *DataSpec {
	t.Helper()
	_, dataJSON := GetExampleJSON()
	d, warnings := ParseData([]byte(dataJSON))
	if len(warnings) > 0 {
		t.Fatalf("ParseData(example) warnings: %v", warnings)
	}
	return d
}

func TestParsePresetAppliesDefaults(t *testing.T) {
	p, err := ParsePreset([]byte(`{"blocks":[{"id":"title","layout":{"x":100,"y":880,"maxWidth":880,"maxHeight":300}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Background.Color != DefaultPlaceholder || p.Background.Backdrop != DefaultBackdrop {
		t.Errorf("background = %+v", p.Background)
	}
	wantDate := DateConfig{Visible: Ptr(true), FontSize: 24, Color: "#ffffff", MarginRight: 30, MarginBottom: 20}
	if diff := cmp.Diff(wantDate, p.Date); diff != "" {
		t.Errorf("date defaults (-want +got):\n%s", diff)
	}
	b := p.Blocks[0]
	if b.Layout.FontSize != DefaultBlockFontSize || b.Color != DefaultTextColor {
		t.Errorf("block defaults = %+v", b)
	}
	if b.Defaults.Visible == nil || !*b.Defaults.Visible {
		t.Error("block should default to visible")
	}
}

func TestParsePresetKeepsExplicitValues(t *testing.T) {
	p := examplePreset(t)
	if len(p.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(p.Blocks))
	}
	want := Layout{X: 100, Y: 880, MaxWidth: 880, MaxHeight: 300, FontSize: 36}
	if diff := cmp.Diff(want, p.Blocks[0].Layout); diff != "" {
		t.Errorf("title layout (-want +got):\n%s", diff)
	}
	if *p.Blocks[1].Defaults.Visible {
		t.Error("message block should stay hidden by default")
	}
}

func TestParsePresetRejectsMalformedJSON(t *testing.T) {
	if _, err := ParsePreset([]byte(`{"blocks":`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseDataMalformedDegrades(t *testing.T) {
	d, warnings := ParseData([]byte(`not json`))
	if len(warnings) != 1 || !strings.Contains(warnings[0], "malformed data.json") {
		t.Fatalf("warnings = %v", warnings)
	}
	if d.Blocks == nil || len(d.Blocks) != 0 {
		t.Fatalf("blocks = %v, want empty map", d.Blocks)
	}
}

func TestLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"date":"01 MAY, 2025"}`), 0644); err != nil {
		t.Fatal(err)
	}
	d, warnings, err := LoadData(path)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("LoadData: %v %v", err, warnings)
	}
	if d.Date != "01 MAY, 2025" || d.Blocks == nil {
		t.Fatalf("data = %+v", d)
	}

	if _, _, err := LoadData(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writeZip(t *testing.T, files map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.cardpack")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPresetResolvesAssets(t *testing.T) {
	path := writeZip(t, map[string][]byte{
		"preset.json":      []byte(`{"background":{"source":"assets/bg.png"},"overlay":{"source":"assets/frame.png"},"blocks":[]}`),
		"assets/bg.png":    encodePNG(t, 4, 4, red),
		"assets/frame.png": encodePNG(t, 4, 4, red),
	})

	p, cleanup, err := LoadPreset(path)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(p.Background.Source) {
		t.Fatalf("background source %q not absolute", p.Background.Source)
	}
	if _, err := os.Stat(p.Overlay.Source); err != nil {
		t.Fatalf("overlay not extracted: %v", err)
	}
	if p.Background.Color != DefaultPlaceholder {
		t.Errorf("defaults not applied: %+v", p.Background)
	}

	cleanup()
	if _, err := os.Stat(p.Background.Source); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cleanup left %s behind: %v", p.Background.Source, err)
	}
}

func TestLoadPresetRejectsZipSlip(t *testing.T) {
	path := writeZip(t, map[string][]byte{
		"preset.json":  []byte(`{}`),
		"../evil.json": []byte(`{}`),
	})
	if _, _, err := LoadPreset(path); err == nil || !strings.Contains(err.Error(), "illegal path") {
		t.Fatalf("err = %v, want illegal path", err)
	}
}

func TestLoadPresetMissingPresetJSON(t *testing.T) {
	path := writeZip(t, map[string][]byte{"assets/bg.png": encodePNG(t, 1, 1, red)})
	if _, _, err := LoadPreset(path); err == nil {
		t.Fatal("expected error without preset.json")
	}
}
