// Package server provides the photocard web UI editor and HTTP API.
package server

import (
	"archive/zip"
	"bytes"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/logging"
	"github.com/xob0t/photocard/pkg/template"
)

//go:embed web/*
var webContent embed.FS

// ── Asset Manager ──

type asset struct {
	Name string
	Data []byte
	Mime string
}

type assetManager struct {
	mu     sync.RWMutex
	assets map[string]*asset
}

func newAssetManager() *assetManager {
	return &assetManager{assets: make(map[string]*asset)}
}

func (am *assetManager) add(name string, data []byte, mimeType string) string {
	id := randomID()
	am.mu.Lock()
	am.assets[id] = &asset{Name: name, Data: data, Mime: mimeType}
	am.mu.Unlock()
	return id
}

func (am *assetManager) get(id string) (*asset, bool) {
	am.mu.RLock()
	a, ok := am.assets[id]
	am.mu.RUnlock()
	return a, ok
}

// resolve implements template.AssetResolver.
func (am *assetManager) resolve(id string) []byte {
	if a, ok := am.get(id); ok {
		return a.Data
	}
	return nil
}

type assetInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int    `json:"size"`
}

func (am *assetManager) listAll() []assetInfo {
	am.mu.RLock()
	defer am.mu.RUnlock()
	result := make([]assetInfo, 0, len(am.assets))
	for id, a := range am.assets {
		result = append(result, assetInfo{ID: id, Name: a.Name, Mime: a.Mime, Size: len(a.Data)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (am *assetManager) remove(id string) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	if _, ok := am.assets[id]; !ok {
		return false
	}
	delete(am.assets, id)
	return true
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ── Server ──

type srv struct {
	assets *assetManager
	log    *zap.Logger
	now    func() time.Time
}

// NewHandler returns the API and static UI routes.
func NewHandler(log *zap.Logger) (http.Handler, error) {
	s := &srv{
		assets: newAssetManager(),
		log:    logging.OrNop(log),
		now:    time.Now,
	}
	return s.routes()
}

func (s *srv) routes() (http.Handler, error) {
	webFS, err := fs.Sub(webContent, "web")
	if err != nil {
		return nil, fmt.Errorf("embed web: %w", err)
	}

	mux := http.NewServeMux()

	// API routes.
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("POST /api/export/png", s.handleExport(".png", "image/png"))
	mux.HandleFunc("POST /api/export/bmp", s.handleExport(".bmp", "image/bmp"))
	mux.HandleFunc("POST /api/export/tiff", s.handleExport(".tiff", "image/tiff"))
	mux.HandleFunc("POST /api/export/cardpack", s.handleExportCardpack)
	mux.HandleFunc("POST /api/export/json", s.handleExportJSON)
	mux.HandleFunc("POST /api/upload/font", s.handleUpload("font/ttf"))
	mux.HandleFunc("POST /api/upload/image", s.handleUpload(""))
	mux.HandleFunc("POST /api/import/cardpack", s.handleImportCardpack)
	mux.HandleFunc("GET /api/example", s.handleExample)
	mux.HandleFunc("GET /api/assets/{id}", s.handleGetAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)

	// Static files.
	mux.Handle("/", http.FileServer(http.FS(webFS)))

	return mux, nil
}

// RunServe starts the web UI server on the given port.
func RunServe(args []string, log *zap.Logger) error {
	log = logging.OrNop(log)
	port := "8080"
	noBrowser := false
	for i, a := range args {
		if (a == "--port" || a == "-p") && i+1 < len(args) {
			port = args[i+1]
		}
		if a == "--no-browser" {
			noBrowser = true
		}
	}

	h, err := NewHandler(log)
	if err != nil {
		return err
	}

	addr := ":" + port
	log.Info("photocard UI listening", zap.String("url", "http://localhost"+addr))

	// Open browser.
	if !noBrowser {
		go openBrowser("http://localhost"+addr, log)
	}

	return http.ListenAndServe(addr, h)
}

// ── Render (core) ──

type renderRequest struct {
	Preset json.RawMessage `json:"preset"`
	Data   json.RawMessage `json:"data"`
}

// decodeRequest parses the preset and optional data of a render request.
func decodeRequest(body []byte) (*template.Preset, *template.DataSpec, []string, error) {
	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, nil, fmt.Errorf("decode request: %w", err)
	}
	if len(req.Preset) == 0 {
		return nil, nil, nil, fmt.Errorf("request has no preset")
	}
	preset, err := template.ParsePreset(req.Preset)
	if err != nil {
		return nil, nil, nil, err
	}

	var data *template.DataSpec
	var warnings []string
	if len(req.Data) > 0 && string(req.Data) != "null" {
		data, warnings = template.ParseData(req.Data)
	}
	warnings = append(warnings, template.ValidatePreset(preset)...)
	warnings = append(warnings, template.ValidateData(data, preset)...)
	return preset, data, warnings, nil
}

func (s *srv) renderImage(body []byte, ext string) ([]byte, error) {
	preset, data, warnings, err := decodeRequest(body)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.log.Warn(w)
	}

	renderer, err := template.NewRendererForPreset(preset, s.assets.resolve, s.log)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	renderer.SetClock(s.now)

	img, err := renderer.RenderPreset(preset, data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ext, generator.Config{Image: img}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *srv) handleRender(w http.ResponseWriter, r *http.Request) {
	s.handleExport(".png", "image/png")(w, r)
}

// ── Export ──

// handleExport renders the request and returns it as an image. Attachment
// headers are added for /api/export routes.
func (s *srv) handleExport(ext, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := s.renderImage(body, ext)
		if err != nil {
			s.log.Warn("render failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if strings.HasPrefix(r.URL.Path, "/api/export/") {
			name := generator.OutputName(r.URL.Query().Get("title"), ext)
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name))
		}
		w.Write(data)
	}
}

func (s *srv) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	preset, _, warnings, err := decodeRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, map[string]any{
		"warnings": warnings,
		"schema":   template.FormatSchema(preset),
	})
}

func (s *srv) handleExample(w http.ResponseWriter, r *http.Request) {
	p, d := template.GetExampleJSON()
	writeJSON(w, map[string]json.RawMessage{"preset": json.RawMessage(p), "data": json.RawMessage(d)})
}

func (s *srv) handleExportCardpack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Preset json.RawMessage `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var prettyPreset bytes.Buffer
	if err := json.Indent(&prettyPreset, req.Preset, "", "  "); err != nil {
		http.Error(w, "invalid preset: "+err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// Write preset.json (pretty-printed).
	if err := writeZipEntry(zw, "preset.json", prettyPreset.Bytes()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Write all uploaded assets.
	s.assets.mu.RLock()
	for id, a := range s.assets.assets {
		if err := writeZipEntry(zw, "assets/"+id+extensionForMime(a.Mime), a.Data); err != nil {
			s.assets.mu.RUnlock()
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	s.assets.mu.RUnlock()

	if err := zw.Close(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="preset.cardpack"`)
	w.Write(buf.Bytes())
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip %s: %w", name, err)
	}
	_, err = fw.Write(data)
	return err
}

func (s *srv) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Type != "preset" && req.Type != "data" {
		http.Error(w, "type must be preset or data", http.StatusBadRequest)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, req.Content, "", "  "); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, req.Type))
	w.Write(pretty.Bytes())
}

// ── Import ──

type importedAsset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OriginalPath string `json:"originalPath"`
	URL          string `json:"url"`
}

func (s *srv) handleImportCardpack(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(50 << 20)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		http.Error(w, "invalid ZIP: "+err.Error(), http.StatusBadRequest)
		return
	}

	var presetJSON json.RawMessage
	imported := make([]importedAsset, 0)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		fdata, err := readZipEntry(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if f.Name == "preset.json" {
			presetJSON = fdata
			continue
		}
		mimeType := mime.TypeByExtension(filepath.Ext(f.Name))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		id := s.assets.add(filepath.Base(f.Name), fdata, mimeType)
		imported = append(imported, importedAsset{
			ID:           id,
			Name:         filepath.Base(f.Name),
			OriginalPath: f.Name,
			URL:          "/api/assets/" + id,
		})
	}

	if presetJSON == nil {
		http.Error(w, "no preset.json found in archive", http.StatusBadRequest)
		return
	}

	s.log.Info("imported cardpack", zap.Int("assets", len(imported)))
	writeJSON(w, map[string]any{
		"preset": presetJSON,
		"assets": imported,
	})
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ── Upload ──

// handleUpload stores a multipart "file" field. An empty mimeType is
// inferred from the file name.
func (s *srv) handleUpload(mimeType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mt := mimeType
		if mt == "" {
			mt = mime.TypeByExtension(filepath.Ext(header.Filename))
		}
		if mt == "" {
			mt = "image/png"
		}
		id := s.assets.add(header.Filename, data, mt)
		s.log.Debug("asset uploaded", zap.String("id", id), zap.String("name", header.Filename), zap.Int("size", len(data)))

		writeJSON(w, map[string]string{
			"id":   id,
			"name": header.Filename,
			"url":  "/api/assets/" + id,
		})
	}
}

// ── Asset serving ──

func (s *srv) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assets.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.Mime)
	w.Write(a.Data)
}

func (s *srv) handleListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.assets.listAll())
}

func (s *srv) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.assets.remove(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted", "id": id})
}

// ── Helpers ──

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func extensionForMime(m string) string {
	switch {
	case strings.Contains(m, "ttf"), strings.Contains(m, "font"):
		return ".ttf"
	case strings.Contains(m, "png"):
		return ".png"
	case strings.Contains(m, "jpeg"), strings.Contains(m, "jpg"):
		return ".jpg"
	case strings.Contains(m, "webp"):
		return ".webp"
	case strings.Contains(m, "gif"):
		return ".gif"
	case strings.Contains(m, "bmp"):
		return ".bmp"
	case strings.Contains(m, "tiff"):
		return ".tiff"
	default:
		return ""
	}
}

func openBrowser(url string, log *zap.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Debug("could not open browser", zap.Error(err))
	}
}
