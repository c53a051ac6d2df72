package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/image/bmp"

	"github.com/xob0t/photocard/pkg/template"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := NewHandler(zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func exampleBody(t *testing.T, background string) []byte {
	t.Helper()
	p, d := template.GetExampleJSON()
	var data map[string]any
	if err := json.Unmarshal([]byte(d), &data); err != nil {
		t.Fatal(err)
	}
	data["background"] = background
	body, err := json.Marshal(map[string]any{"preset": json.RawMessage(p), "data": data})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func upload(t *testing.T, ts *httptest.Server, path, name string, content []byte) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	res, err := http.Post(ts.URL+path, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d", res.StatusCode)
	}
	var out struct{ ID string }
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out.ID
}

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRenderUsesUploadedBackground(t *testing.T) {
	ts := newTestServer(t)
	id := upload(t, ts, "/api/upload/image", "bg.png", solidPNG(t, 8, 10, color.RGBA{0, 200, 0, 255}))

	res, err := http.Post(ts.URL+"/api/render", "application/json", bytes.NewReader(exampleBody(t, id)))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("status = %d: %s", res.StatusCode, b)
	}
	if ct := res.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1080 || b.Dy() != 1280 {
		t.Fatalf("bounds = %v", b)
	}
	// Left of the text blocks the background shows through.
	r, g, b, _ := img.At(20, 600).RGBA()
	if r>>8 != 0 || g>>8 != 200 || b>>8 != 0 {
		t.Errorf("background pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestExportBMP(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Post(ts.URL+"/api/export/bmp?title=Metro+news", "application/json", bytes.NewReader(exampleBody(t, "")))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, "Metro_news.bmp") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if _, err := bmp.Decode(res.Body); err != nil {
		t.Fatal(err)
	}
}

func TestRenderRejectsBadPreset(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []string{`not json`, `{}`, `{"preset": "nope"}`} {
		res, err := http.Post(ts.URL+"/api/render", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d", body, res.StatusCode)
		}
	}
}

func TestValidateReturnsWarnings(t *testing.T) {
	ts := newTestServer(t)
	p, _ := template.GetExampleJSON()
	body, _ := json.Marshal(map[string]any{
		"preset": json.RawMessage(p),
		"data":   map[string]any{"blocks": map[string]any{"subtitle": map[string]any{"text": "x"}}},
	})
	res, err := http.Post(ts.URL+"/api/validate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var out struct {
		Warnings []string
		Schema   string
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Warnings) != 1 || !strings.Contains(out.Warnings[0], `"subtitle"`) {
		t.Errorf("warnings = %q", out.Warnings)
	}
	if !strings.Contains(out.Schema, "[title]") {
		t.Errorf("schema = %q", out.Schema)
	}
}

func TestAssetLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := upload(t, ts, "/api/upload/font", "brand.ttf", []byte("not really a font"))

	res, err := http.Get(ts.URL + "/api/assets/" + id)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if string(got) != "not really a font" || res.Header.Get("Content-Type") != "font/ttf" {
		t.Errorf("asset = %q (%s)", got, res.Header.Get("Content-Type"))
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/assets/"+id, nil)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/api/assets/" + id)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("after delete status = %d", res.StatusCode)
	}
}

func TestCardpackRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	upload(t, ts, "/api/upload/image", "overlay.png", solidPNG(t, 4, 4, color.RGBA{255, 0, 0, 128}))

	p, _ := template.GetExampleJSON()
	body, _ := json.Marshal(map[string]any{"preset": json.RawMessage(p)})
	res, err := http.Post(ts.URL+"/api/export/cardpack", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	pack, _ := io.ReadAll(res.Body)
	res.Body.Close()

	zr, err := zip.NewReader(bytes.NewReader(pack), int64(len(pack)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("cardpack has %d entries", len(zr.File))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "preset.cardpack")
	fw.Write(pack)
	mw.Close()
	res, err = http.Post(ts.URL+"/api/import/cardpack", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var out struct {
		Preset json.RawMessage
		Assets []importedAsset
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Assets) != 1 || !strings.HasPrefix(out.Assets[0].OriginalPath, "assets/") {
		t.Errorf("assets = %+v", out.Assets)
	}
	preset, err := template.ParsePreset(out.Preset)
	if err != nil {
		t.Fatal(err)
	}
	if preset.Meta.Name != "News Card" {
		t.Errorf("name = %q", preset.Meta.Name)
	}
}

func TestServesIndex(t *testing.T) {
	ts := newTestServer(t)
	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "/api/render") {
		t.Error("index does not reference the render API")
	}
}
