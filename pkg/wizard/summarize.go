// summarize.go - Article collaborators and the paragraph-chunking summarizer.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/pkg/logging"
)

// DefaultChunkBudget is the character budget of one summarizer call.
const DefaultChunkBudget = 800

// ErrSummarize reports that no part of an article could be summarized.
var ErrSummarize = errors.New("summarize failed")

// Article is a fetched news story.
type Article struct {
	URL   string
	Title string
	Body  string
}

// ArticleSource downloads and extracts an article.
type ArticleSource interface {
	Fetch(ctx context.Context, url string) (Article, error)
}

// Summarizer condenses article text. Implementations are constructed once
// and shared by every wizard that needs them.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// ChunkingSummarizer feeds a model paragraph-aligned chunks that stay under
// Budget characters and joins the partial summaries with a space.
type ChunkingSummarizer struct {
	Model  Summarizer
	Budget int // characters per chunk; DefaultChunkBudget when <= 0
}

// Summarize implements Summarizer. A chunk the model rejects is logged and
// skipped; the call fails only when every chunk fails or ctx ends.
func (cs ChunkingSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	log := logging.L(ctx)
	chunks := Chunk(text, cs.Budget)

	var parts []string
	var lastErr error
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s, err := cs.Model.Summarize(ctx, chunk)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			log.Warn("skipping chunk that failed to summarize",
				zap.Int("chunk", i+1),
				zap.Int("chunks", len(chunks)),
				zap.Error(err))
			lastErr = err
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 && lastErr != nil {
		return "", fmt.Errorf("%w: %d chunks: %w", ErrSummarize, len(chunks), lastErr)
	}
	return strings.Join(parts, " "), nil
}

// Chunk splits text on newlines and packs consecutive paragraphs into
// chunks shorter than budget characters. A paragraph longer than the budget
// becomes a chunk of its own. Empty chunks are dropped.
func Chunk(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	var chunks []string
	var current strings.Builder
	size := 0
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		size = 0
	}

	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := utf8.RuneCountInString(para)
		if size > 0 && size+1+n >= budget {
			flush()
		}
		if size > 0 {
			current.WriteByte(' ')
			size++
		}
		current.WriteString(para)
		size += n
	}
	flush()

	return chunks
}
