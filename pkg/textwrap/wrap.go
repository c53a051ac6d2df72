// Package textwrap breaks text into lines that fit a pixel width.
package textwrap

import "strings"

// MeasureFunc returns the rendered width of s in pixels.
type MeasureFunc func(s string) int

// Line is one wrapped line of words.
type Line struct {
	Words []string
}

// Text returns the line's words joined by single spaces.
func (l Line) Text() string { return strings.Join(l.Words, " ") }

// Join rebuilds the space-joined text the lines were cut from.
func Join(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if len(l.Words) > 0 {
			parts = append(parts, l.Text())
		}
	}
	return strings.Join(parts, " ")
}

// Wrap greedily packs the words of text into lines no wider than maxWidth.
// A word wider than maxWidth on its own gets a line to itself; words are
// never broken. Empty text yields a single empty line. A non-positive
// maxWidth disables wrapping.
func Wrap(text string, measure MeasureFunc, maxWidth int) []Line {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []Line{{}}
	}
	if maxWidth <= 0 {
		return []Line{{Words: words}}
	}

	var lines []Line
	current := []string{words[0]}
	currentText := words[0]
	for _, word := range words[1:] {
		testLine := currentText + " " + word
		if measure(testLine) > maxWidth {
			lines = append(lines, Line{Words: current})
			current = []string{word}
			currentText = word
			continue
		}
		current = append(current, word)
		currentText = testLine
	}
	lines = append(lines, Line{Words: current})

	return lines
}
