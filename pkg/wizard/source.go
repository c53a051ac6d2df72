// source.go - Offline collaborators: articles from local text files and a
// lead-sentence summarizer.
package wizard

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// FileSource reads articles from plain-text files. The first non-blank
// line is the title and the rest is the body. A "file://" prefix is
// accepted.
type FileSource struct{}

// Fetch implements ArticleSource.
func (FileSource) Fetch(ctx context.Context, url string) (Article, error) {
	if err := ctx.Err(); err != nil {
		return Article{}, err
	}
	path := strings.TrimPrefix(url, "file://")
	f, err := os.Open(path)
	if err != nil {
		return Article{}, fmt.Errorf("open article: %w", err)
	}
	defer f.Close()

	a := Article{URL: url}
	var body []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if a.Title == "" {
			a.Title = line
			continue
		}
		body = append(body, line)
	}
	if err := sc.Err(); err != nil {
		return Article{}, fmt.Errorf("read article: %w", err)
	}
	a.Body = strings.TrimSpace(strings.Join(body, "\n"))
	return a, nil
}

// LeadSummarizer keeps the first Sentences sentences of its input.
type LeadSummarizer struct {
	Sentences int // 1 when <= 0
}

// Summarize implements Summarizer.
func (ls LeadSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	want := max(ls.Sentences, 1)

	runes := []rune(strings.Join(strings.Fields(text), " "))
	count := 0
	for i, r := range runes {
		if !isSentenceEnd(r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue // "3.5", "U.S."
		}
		count++
		if count == want {
			return string(runes[:i+1]), nil
		}
	}
	return string(runes), nil
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '।':
		return true
	}
	return false
}
