// validator.go - Validate data.json against a preset's blocks and schema.
package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xob0t/photocard/pkg/colorrange"
	"github.com/xob0t/photocard/pkg/generator"
	"github.com/xob0t/photocard/pkg/textbuf"
)

// ValidateData checks that data.json references only known block IDs and
// that its colors and spans are usable.
// Returns warnings (never fatal errors) for graceful degradation.
func ValidateData(data *DataSpec, preset *Preset) []string {
	if data == nil {
		return nil
	}

	// Build block index from preset blocks.
	known := make(map[string]Block, len(preset.Blocks))
	for _, b := range preset.Blocks {
		known[b.ID] = b
	}

	var warnings []string
	for _, id := range sortedKeys(data.Blocks) {
		b, ok := known[id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("data references unknown block %q, ignored", id))
			continue
		}
		merged := b.Defaults
		mergeBlockData(&merged, data.Blocks[id])
		warnings = append(warnings, validateBlockData(id, merged, data.Blocks[id])...)
	}

	return warnings
}

// ValidatePreset reports unusable colors and spans in the preset itself.
func ValidatePreset(preset *Preset) []string {
	var warnings []string
	for _, c := range []struct{ field, value string }{
		{"background.color", preset.Background.Color},
		{"background.backdrop", preset.Background.Backdrop},
		{"date.color", preset.Date.Color},
	} {
		if c.value == "" {
			continue
		}
		if _, err := generator.ParseColor(c.value); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using white", c.field, err))
		}
	}

	seen := make(map[string]bool, len(preset.Blocks))
	for _, b := range preset.Blocks {
		if seen[b.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate block id %q", b.ID))
		}
		seen[b.ID] = true
		if _, err := generator.ParseColor(b.Color); b.Color != "" && err != nil {
			warnings = append(warnings, fmt.Sprintf("block %q color: %v, using white", b.ID, err))
		}
		warnings = append(warnings, validateBlockData(b.ID, b.Defaults, b.Defaults)...)
	}
	return warnings
}

// validateBlockData checks merged against the text it will render. Only
// spans present in source are reported so defaults are not blamed twice.
func validateBlockData(id string, merged, source BlockData) []string {
	var warnings []string
	if merged.Color != "" {
		if _, err := generator.ParseColor(merged.Color); err != nil {
			warnings = append(warnings, fmt.Sprintf("block %q color: %v, using white", id, err))
		}
	}

	set := colorrange.New(textbuf.New(merged.TextValue()).Len())
	for i, sp := range source.Colors {
		if err := set.Check(sp.Start, sp.End); err != nil {
			warnings = append(warnings, fmt.Sprintf("block %q span %d: %v, clamped", id, i, err))
		}
		if _, err := generator.ParseColor(sp.Color); err != nil {
			warnings = append(warnings, fmt.Sprintf("block %q span %d color: %v, using white", id, i, err))
		}
	}
	return warnings
}

// FormatSchema returns a human-readable description of the preset's schema.
func FormatSchema(preset *Preset) string {
	if preset.Schema.Description == "" && len(preset.Schema.Blocks) == 0 {
		return "This preset has no schema documentation.\n"
	}

	var s strings.Builder
	fmt.Fprintf(&s, "Preset: %s (v%s) by %s\n", preset.Meta.Name, preset.Meta.Version, preset.Meta.Author)
	if preset.Meta.Description != "" {
		s.WriteString(preset.Meta.Description + "\n")
	}
	s.WriteString("\n")

	if preset.Schema.Description != "" {
		s.WriteString(preset.Schema.Description + "\n\n")
	}

	s.WriteString("Blocks:\n")
	for _, id := range sortedKeys(preset.Schema.Blocks) {
		sb := preset.Schema.Blocks[id]
		fmt.Fprintf(&s, "\n  [%s] %s\n", id, sb.Description)
		for _, field := range sortedKeys(sb.Fields) {
			fmt.Fprintf(&s, "    %-12s %s\n", field+":", sb.Fields[field])
		}
	}

	return s.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
