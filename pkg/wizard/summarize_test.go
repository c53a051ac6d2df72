package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xob0t/photocard/pkg/logging"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		budget int
		want   []string
	}{
		{"empty", "", 10, nil},
		{"blank lines", "\n \n", 10, nil},
		{"packs paragraphs", "aaa\nbbb\nccc", 10, []string{"aaa bbb", "ccc"}},
		{"long paragraph alone", "aaaaaaaaaaaa\nbb", 10, []string{"aaaaaaaaaaaa", "bb"}},
		{"counts runes", "ঢাকা\nঢাকা", 10, []string{"ঢাকা ঢাকা"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.budget)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Chunk (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChunkBudget(t *testing.T) {
	para := strings.Repeat("word ", 30) // 149 chars after trim
	text := strings.Repeat(para+"\n", 40)
	chunks := Chunk(text, 0)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want several", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n >= DefaultChunkBudget {
			t.Errorf("chunk %d has %d chars, budget %d", i, n, DefaultChunkBudget)
		}
		total += strings.Count(c, "word")
	}
	if total != 30*40 {
		t.Errorf("words across chunks = %d, want %d", total, 30*40)
	}
}

func TestChunkingSummarizerSkipsFailedChunks(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := logging.NewContext(context.Background(), zap.New(core))

	calls := 0
	model := SummarizerFunc(func(_ context.Context, text string) (string, error) {
		calls++
		if strings.HasPrefix(text, "bad") {
			return "", errors.New("model overloaded")
		}
		return "<" + text[:3] + ">", nil
	})
	cs := ChunkingSummarizer{Model: model, Budget: 8}

	got, err := cs.Summarize(ctx, "one two\nbad para\nthree")
	if err != nil {
		t.Fatal(err)
	}
	if got != "<one> <thr>" {
		t.Errorf("summary = %q", got)
	}
	if calls != 3 {
		t.Errorf("model calls = %d, want 3", calls)
	}
	if logs.FilterMessage("skipping chunk that failed to summarize").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}
}

func TestChunkingSummarizerAllFail(t *testing.T) {
	boom := errors.New("boom")
	cs := ChunkingSummarizer{Model: SummarizerFunc(func(context.Context, string) (string, error) { return "", boom })}
	_, err := cs.Summarize(context.Background(), "a\nb")
	if !errors.Is(err, ErrSummarize) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrSummarize wrapping boom", err)
	}
}

func TestChunkingSummarizerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cs := ChunkingSummarizer{Model: SummarizerFunc(func(context.Context, string) (string, error) { return "x", nil })}
	if _, err := cs.Summarize(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
