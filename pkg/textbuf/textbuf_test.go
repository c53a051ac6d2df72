package textbuf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCollapsesWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		words []string
	}{
		{"empty", "", "", []string{}},
		{"only spaces", "   \n\t ", "", []string{}},
		{"single", "hello", "hello", []string{"hello"}},
		{"runs", "  Bangladesh   to\nbuild\t100 ", "Bangladesh to build 100", []string{"Bangladesh", "to", "build", "100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.in)
			if got := b.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if diff := cmp.Diff(tt.words, b.Words()); diff != "" {
				t.Errorf("Words() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLenCountsRunesNotBytes(t *testing.T) {
	b := New("ঢাকা শহর")
	if got, want := b.Len(), len([]rune("ঢাকা শহর")); got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got, want := b.NonSpace(), b.Len()-1; got != want {
		t.Fatalf("NonSpace() = %d, want %d", got, want)
	}
	r, ok := b.RuneAt(b.Len() - 1)
	if !ok || r != 'র' {
		t.Fatalf("RuneAt(last) = %q, %v", r, ok)
	}
	if _, ok := b.RuneAt(b.Len()); ok {
		t.Fatal("RuneAt(len) should be out of range")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	b := New("a b")
	w := b.Words()
	w[0] = "x"
	r := b.Runes()
	r[0] = 'x'
	if b.String() != "a b" || b.Words()[0] != "a" {
		t.Fatalf("buffer mutated through accessor: %q", b.String())
	}
}
