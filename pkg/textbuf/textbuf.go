// Package textbuf holds the immutable text snapshot that color ranges and
// wrapped lines index into.
//
// A Buffer is built by splitting raw text on Unicode whitespace and joining
// the words back with single spaces. Offsets everywhere in photocard are rune
// indices into that joined form, so an offset selected in an editing view
// lines up with the glyph painted for it after word wrap.
package textbuf

import "strings"

// Buffer is an immutable, word-joined rune sequence.
type Buffer struct {
	joined string
	runes  []rune
	words  []string
}

// New normalizes text into a Buffer. Runs of whitespace (including newlines)
// collapse to one space, and leading/trailing whitespace is dropped.
func New(text string) Buffer {
	words := strings.Fields(text)
	joined := strings.Join(words, " ")
	return Buffer{
		joined: joined,
		runes:  []rune(joined),
		words:  words,
	}
}

// Len returns the buffer length in runes.
func (b Buffer) Len() int { return len(b.runes) }

// String returns the joined text.
func (b Buffer) String() string { return b.joined }

// Words returns a copy of the buffer's words.
func (b Buffer) Words() []string {
	out := make([]string, len(b.words))
	copy(out, b.words)
	return out
}

// Runes returns a copy of the buffer's runes.
func (b Buffer) Runes() []rune {
	out := make([]rune, len(b.runes))
	copy(out, b.runes)
	return out
}

// RuneAt returns the rune at offset, or false when offset is out of range.
func (b Buffer) RuneAt(offset int) (rune, bool) {
	if offset < 0 || offset >= len(b.runes) {
		return 0, false
	}
	return b.runes[offset], true
}

// NonSpace counts the runes that are not the joining space.
func (b Buffer) NonSpace() int {
	n := 0
	for _, w := range b.words {
		n += len([]rune(w))
	}
	return n
}
