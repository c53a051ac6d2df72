// Package colorrange maintains per-character foreground colors as a
// normalized set of half-open rune intervals.
//
// A Set is a value: every operation returns a new Set and the receiver is
// never modified.
package colorrange

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
)

// ErrInvalidRange reports an empty, inverted or out-of-bounds interval.
var ErrInvalidRange = errors.New("invalid color range")

// White is the color of every offset no range covers.
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Range colors the runes in [Start, End).
type Range struct {
	Start int
	End   int
	Color color.RGBA
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d #%02x%02x%02x%02x)", r.Start, r.End, r.Color.R, r.Color.G, r.Color.B, r.Color.A)
}

// Set is a sorted list of non-overlapping ranges over a buffer of a fixed
// length. Adjacent ranges never share a color. The zero Set colors every
// offset White.
type Set struct {
	length int
	def    color.RGBA
	hasDef bool
	ranges []Range
}

// New returns a set over a buffer of n runes, covered by one white range.
func New(n int) Set {
	return NewWithDefault(n, White)
}

// NewWithDefault is New with a caller-chosen default color.
func NewWithDefault(n int, def color.RGBA) Set {
	s := Set{length: max(n, 0), def: def, hasDef: true}
	if s.length > 0 {
		s.ranges = []Range{{Start: 0, End: s.length, Color: def}}
	}
	return s
}

// FromRanges builds a set by assigning ranges in order onto an otherwise
// uncovered buffer; later ranges win where they overlap earlier ones.
// Ranges that are empty after clamping are skipped.
func FromRanges(n int, def color.RGBA, ranges []Range) Set {
	s := Set{length: max(n, 0), def: def, hasDef: true}
	for _, r := range ranges {
		s = s.Assign(r.Start, r.End, r.Color)
	}
	return s
}

// Len returns the length of the buffer the set was built for.
func (s Set) Len() int { return s.length }

// Default returns the color of uncovered offsets.
func (s Set) Default() color.RGBA {
	if !s.hasDef {
		return White
	}
	return s.def
}

// withRanges returns s over the same buffer with rs as its ranges.
func (s Set) withRanges(rs []Range) Set {
	s.ranges = rs
	return s
}

// Ranges returns a copy of the normalized ranges.
func (s Set) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Check reports whether [start, end) is a usable interval for this set
// without clamping.
func (s Set) Check(start, end int) error {
	switch {
	case start >= end:
		return fmt.Errorf("%w: start %d not before end %d", ErrInvalidRange, start, end)
	case start < 0 || end > s.length:
		return fmt.Errorf("%w: [%d,%d) outside buffer of %d", ErrInvalidRange, start, end, s.length)
	}
	return nil
}

// Assign colors [start, end) and returns the merged result. Offsets are
// clamped to the buffer; an interval that is empty after clamping leaves
// the set unchanged.
func (s Set) Assign(start, end int, c color.RGBA) Set {
	start = min(max(start, 0), s.length)
	end = min(max(end, 0), s.length)
	if start >= end {
		return s
	}

	out := make([]Range, 0, len(s.ranges)+2)
	for _, r := range s.ranges {
		if r.End <= start || r.Start >= end {
			out = append(out, r)
			continue
		}
		// r overlaps [start, end): keep whatever sticks out on either side.
		if r.Start < start {
			out = append(out, Range{Start: r.Start, End: start, Color: r.Color})
		}
		if r.End > end {
			out = append(out, Range{Start: end, End: r.End, Color: r.Color})
		}
	}
	out = append(out, Range{Start: start, End: end, Color: c})

	return s.withRanges(out).Merge()
}

// Merge sorts the ranges and coalesces same-colored neighbours that touch
// or overlap.
func (s Set) Merge() Set {
	if len(s.ranges) == 0 {
		return s.withRanges(nil)
	}
	sorted := s.Ranges()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]Range, 0, len(sorted))
	merged = append(merged, sorted[0])
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End && r.Color == last.Color {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return s.withRanges(merged)
}

// ColorAt returns the color of the rune at offset.
func (s Set) ColorAt(offset int) color.RGBA {
	if i := s.covered(offset); i >= 0 {
		return s.ranges[i].Color
	}
	return s.Default()
}

// covered reports the range index containing offset, or -1.
func (s Set) covered(offset int) int {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End > offset
	})
	if i < len(s.ranges) && s.ranges[i].Start <= offset {
		return i
	}
	return -1
}
