package textwrap

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

// tenPerRune gives every rune, including spaces, a width of 10px.
func tenPerRune(s string) int { return 10 * utf8.RuneCountInString(s) }

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		want     []string
	}{
		{
			name:     "empty input yields one empty line",
			text:     "",
			maxWidth: 100,
			want:     []string{""},
		},
		{
			name:     "whitespace only",
			text:     " \n\t",
			maxWidth: 100,
			want:     []string{""},
		},
		{
			name:     "fits on one line",
			text:     "cold storages",
			maxWidth: 130,
			want:     []string{"cold storages"},
		},
		{
			name:     "four words per line",
			text:     "Bangladesh to build 100 cold storages",
			maxWidth: 230,
			want:     []string{"Bangladesh to build 100", "cold storages"},
		},
		{
			name:     "overlong word gets its own line",
			text:     "a extraordinarily b",
			maxWidth: 50,
			want:     []string{"a", "extraordinarily", "b"},
		},
		{
			name:     "spacing collapsed",
			text:     "one   two\n\nthree",
			maxWidth: 70,
			want:     []string{"one two", "three"},
		},
		{
			name:     "no wrapping when width is not positive",
			text:     "one two three",
			maxWidth: 0,
			want:     []string{"one two three"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Wrap(tt.text, tenPerRune, tt.maxWidth))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Wrap mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrapWidthBudget(t *testing.T) {
	text := "Home Advisor Jahangir Alam Chowdhury said at least 100 cold storage facilities are being constructed by both small and large companies across Bangladesh"
	for width := 10; width <= 600; width += 7 {
		lines := Wrap(text, tenPerRune, width)
		for _, l := range lines {
			if w := tenPerRune(l.Text()); w > width && len(l.Words) != 1 {
				t.Fatalf("width %d: line %q measures %d", width, l.Text(), w)
			}
		}
		if got, want := Join(lines), strings.Join(strings.Fields(text), " "); got != want {
			t.Fatalf("width %d: Join = %q, want %q", width, got, want)
		}
	}
}

func TestWrapDeterministic(t *testing.T) {
	text := "Bangladesh to build 100 cold storages for agricultural goods"
	first := Wrap(text, tenPerRune, 200)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Wrap(text, tenPerRune, 200)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}
