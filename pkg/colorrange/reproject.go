package colorrange

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/xob0t/photocard/pkg/textbuf"
)

// Reproject carries the set from the old buffer snapshot onto the updated
// one. Runes the edit keeps keep their color; deleted runes drop out;
// inserted runes join a range only when both neighbours of the insertion
// point belong to that same range, and are left uncovered otherwise.
//
// A set whose length does not match old is stale and resets to a single
// default range over updated.
func (s Set) Reproject(old, updated textbuf.Buffer) Set {
	if s.length != old.Len() {
		return NewWithDefault(updated.Len(), s.Default())
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old.String(), updated.String(), false)

	// owner[i] is the index of the old range that now covers updated rune i.
	owner := make([]int, 0, updated.Len())
	at := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for k := 0; k < n; k++ {
				owner = append(owner, s.covered(at+k))
			}
			at += n
		case diffmatchpatch.DiffDelete:
			at += n
		case diffmatchpatch.DiffInsert:
			inherit := -1
			if at > 0 && at < s.length {
				if left := s.covered(at - 1); left >= 0 && left == s.covered(at) {
					inherit = left
				}
			}
			for k := 0; k < n; k++ {
				owner = append(owner, inherit)
			}
		}
	}
	if len(owner) != updated.Len() {
		return NewWithDefault(updated.Len(), s.Default())
	}

	var out []Range
	for i := 0; i < len(owner); {
		if owner[i] < 0 {
			i++
			continue
		}
		c := s.ranges[owner[i]].Color
		j := i + 1
		for j < len(owner) && owner[j] >= 0 && s.ranges[owner[j]].Color == c {
			j++
		}
		out = append(out, Range{Start: i, End: j, Color: c})
		i = j
	}
	return Set{length: updated.Len(), def: s.Default(), hasDef: true, ranges: out}.Merge()
}
