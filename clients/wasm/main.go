//go:build js && wasm

// photocard WASM - Client-side renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o photocard.wasm ./clients/wasm/
package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
	"sync"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/template"
)

// In-memory asset store (replaces server-side asset manager).
var (
	assetsMu sync.RWMutex
	assets   = make(map[string]assetEntry)
	log      = zap.NewNop()
)

type assetEntry struct {
	Data []byte
	Mime string
}

func main() {
	if l, err := zap.NewDevelopment(); err == nil {
		log = l
	}
	log.Info("photocard WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goRenderImage", js.FuncOf(renderImage))
	js.Global().Set("goExportImage", js.FuncOf(exportImage))
	js.Global().Set("goValidate", js.FuncOf(validate))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// resolveAsset returns the bytes of a registered asset, or nil for
// references that are not asset IDs.
func resolveAsset(id string) []byte {
	assetsMu.RLock()
	defer assetsMu.RUnlock()
	if a, ok := assets[id]; ok {
		return a.Data
	}
	return nil
}

// goRegisterAsset(id, base64Data, mime) - store an asset in Go memory.
func registerAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("error: need id, base64Data, mime")
	}
	id := args[0].String()
	b64 := args[1].String()
	mimeType := args[2].String()

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}

	assetsMu.Lock()
	assets[id] = assetEntry{Data: data, Mime: mimeType}
	assetsMu.Unlock()
	return js.ValueOf("ok")
}

// goRemoveAsset(id)
func removeAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need id")
	}
	assetsMu.Lock()
	delete(assets, args[0].String())
	assetsMu.Unlock()
	return js.ValueOf("ok")
}

// render parses presetJSON and the optional dataJSON and composes the card.
func render(args []js.Value) (image.Image, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("need presetJSON")
	}
	preset, err := template.ParsePreset([]byte(args[0].String()))
	if err != nil {
		return nil, err
	}

	var data *template.DataSpec
	if len(args) > 1 && args[1].Type() == js.TypeString && args[1].String() != "" {
		var warnings []string
		data, warnings = template.ParseData([]byte(args[1].String()))
		for _, w := range warnings {
			log.Warn(w)
		}
	}

	renderer, err := template.NewRendererForPreset(preset, resolveAsset, log)
	if err != nil {
		return nil, err
	}
	return renderer.RenderPreset(preset, data)
}

func encode(img image.Image, ext string) (js.Value, error) {
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ext, generator.Config{Image: img}); err != nil {
		return js.Undefined(), err
	}
	out := js.Global().Get("Uint8Array").New(buf.Len())
	js.CopyBytesToJS(out, buf.Bytes())
	return out, nil
}

func errorResult(err error) interface{} {
	return map[string]interface{}{"error": err.Error()}
}

// goRenderImage(presetJSON, dataJSON?) - returns {png: Uint8Array} or {error}.
func renderImage(this js.Value, args []js.Value) interface{} {
	img, err := render(args)
	if err != nil {
		return errorResult(err)
	}
	out, err := encode(img, ".png")
	if err != nil {
		return errorResult(err)
	}
	return map[string]interface{}{"png": out}
}

// goExportImage(presetJSON, dataJSON, ext) - returns {data: Uint8Array} or {error}.
func exportImage(this js.Value, args []js.Value) interface{} {
	ext := ".png"
	if len(args) > 2 {
		ext = "." + strings.TrimPrefix(strings.ToLower(args[2].String()), ".")
	}
	img, err := render(args)
	if err != nil {
		return errorResult(err)
	}
	out, err := encode(img, ext)
	if err != nil {
		return errorResult(err)
	}
	return map[string]interface{}{"data": out}
}

// goValidate(presetJSON, dataJSON?) - returns {warnings: [...]} or {error}.
func validate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult(fmt.Errorf("need presetJSON"))
	}
	preset, err := template.ParsePreset([]byte(args[0].String()))
	if err != nil {
		return errorResult(err)
	}
	warnings := template.ValidatePreset(preset)
	if len(args) > 1 && args[1].Type() == js.TypeString && args[1].String() != "" {
		data, parseWarnings := template.ParseData([]byte(args[1].String()))
		warnings = append(warnings, parseWarnings...)
		warnings = append(warnings, template.ValidateData(data, preset)...)
	}
	list := make([]interface{}, len(warnings))
	for i, w := range warnings {
		list[i] = w
	}
	return map[string]interface{}{"warnings": list}
}
