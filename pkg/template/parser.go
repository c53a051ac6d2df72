// parser.go - Standalone JSON parsing and example generation.
package template

import (
	"fmt"
	"os"
)

// GetExampleJSON returns a sample preset.json and data.json for photocard init.
func GetExampleJSON() (presetJSON, dataJSON string) {
	presetJSON = `{
  "meta": {
    "name": "News Card",
    "version": "1.0",
    "author": "photocard",
    "description": "Headline over a photo with a dated footer"
  },
  "background": {
    "color": "#1a1a2e",
    "backdrop": "#000000"
  },
  "overlay": {},
  "icon": { "x": 40, "y": 40 },
  "font": { "fallback": "embedded" },
  "date": {
    "fontSize": 24,
    "color": "#ffffff",
    "marginRight": 30,
    "marginBottom": 20
  },
  "blocks": [
    {
      "id": "title",
      "layout": { "x": 100, "y": 880, "maxWidth": 880, "maxHeight": 300, "fontSize": 36 },
      "color": "#ffffff",
      "zIndex": 1,
      "defaults": {
        "text": "Bangladesh to build 100 cold storages",
        "colors": [{ "start": 0, "end": 10, "color": "#ffcc00" }]
      }
    },
    {
      "id": "message",
      "layout": { "x": 100, "y": 60, "maxWidth": 880, "maxHeight": 120, "fontSize": 28, "lineSpacing": 4 },
      "color": "#e0e0e0",
      "zIndex": 2,
      "defaults": {
        "visible": false
      }
    }
  ],
  "schema": {
    "description": "Override text, colors and placement via data.json",
    "blocks": {
      "title": {
        "description": "Headline, centered above the date",
        "fields": {
          "text": "string, words separated by whitespace",
          "colors": "array of {start, end, color}, rune offsets into the text",
          "color": "hex color for uncolored characters",
          "layout": "object, non-zero fields move or resize the box"
        }
      },
      "message": {
        "description": "Optional custom text near the top",
        "fields": {
          "visible": "boolean, show/hide",
          "text": "string"
        }
      }
    }
  }
}`

	dataJSON = `{
  "background": "photo.jpg",
  "blocks": {
    "title": {
      "text": "Dhaka metro extends evening service",
      "colors": [{ "start": 0, "end": 5, "color": "#ff3b30" }]
    },
    "message": {
      "visible": true,
      "text": "Breaking"
    }
  }
}`
	return
}

// ParsePresetFile loads a standalone preset JSON file (for testing without ZIP).
func ParsePresetFile(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}
