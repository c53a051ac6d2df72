package wizard

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xob0t/photocard/pkg/colorrange"
	"github.com/xob0t/photocard/pkg/styledtext"
	"github.com/xob0t/photocard/pkg/template"
)

var red = color.RGBA{R: 255, A: 255}

func testPreset(t *testing.T) *template.Preset {
	t.Helper()
	presetJSON, _ := template.GetExampleJSON()
	p, err := template.ParsePreset([]byte(presetJSON))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

type fakeSource struct {
	article Article
	err     error
}

func (f fakeSource) Fetch(ctx context.Context, url string) (Article, error) {
	if f.err != nil {
		return Article{}, f.err
	}
	a := f.article
	a.URL = url
	return a, nil
}

// blockingSummarizer waits for release or cancellation.
type blockingSummarizer struct {
	release chan struct{}
}

func (b blockingSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	select {
	case <-b.release:
		return "summary of " + text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestTypedRequestGoesStraightToPreview(t *testing.T) {
	w := New(testPreset(t), nil, nil, nil)
	task, err := w.Submit(context.Background(), Request{Title: "Bangladesh to build 100 cold storages", Background: "bg.jpg"})
	if err != nil || task != nil {
		t.Fatalf("Submit = %v, %v", task, err)
	}
	if w.State() != Previewing {
		t.Fatalf("state = %s", w.State())
	}
	d, ok := w.Draft()
	if !ok || d.Background != "bg.jpg" {
		t.Fatalf("draft = %+v, %v", d, ok)
	}
	if _, ok := d.Block(CaptionBlock); ok {
		t.Error("caption block should stay hidden without a caption")
	}
	title, _ := d.Block(TitleBlock)
	if title.Text != "Bangladesh to build 100 cold storages" {
		t.Errorf("title = %q", title.Text)
	}
}

func TestArticleRequestFlow(t *testing.T) {
	sum := blockingSummarizer{release: make(chan struct{})}
	src := fakeSource{article: Article{Title: "Metro extends hours", Body: "body"}}
	w := New(testPreset(t), src, sum, nil)

	task, err := w.Submit(context.Background(), Request{URL: "https://example.com/a"})
	if err != nil {
		t.Fatal(err)
	}
	if w.State() != Processing {
		t.Fatalf("state = %s, want processing", w.State())
	}
	if _, err := w.Submit(context.Background(), Request{Title: "x"}); !errors.Is(err, ErrState) {
		t.Fatalf("second submit err = %v, want ErrState", err)
	}
	if _, err := w.Finalize(); !errors.Is(err, ErrState) {
		t.Fatalf("finalize while processing err = %v", err)
	}

	close(sum.release)
	if err := task.Wait(); err != nil {
		t.Fatal(err)
	}
	if w.State() != Previewing {
		t.Fatalf("state = %s, want preview", w.State())
	}
	d, _ := w.Draft()
	caption, ok := d.Block(CaptionBlock)
	if !ok || caption.Text != "summary of body" {
		t.Fatalf("caption = %+v, %v", caption, ok)
	}
	title, _ := d.Block(TitleBlock)
	if title.Text != "Metro extends hours" {
		t.Errorf("title = %q", title.Text)
	}

	final, err := w.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if w.State() != Finalized {
		t.Fatalf("state = %s", w.State())
	}
	if _, err := w.SetText(TitleBlock, "late edit"); !errors.Is(err, ErrState) {
		t.Fatalf("edit after finalize err = %v", err)
	}
	if got, _ := final.Block(TitleBlock); got.Text != "Metro extends hours" {
		t.Errorf("finalized draft changed: %q", got.Text)
	}
}

func TestArticleFetchFailureReturnsToInput(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	boom := errors.New("404")
	w := New(testPreset(t), fakeSource{err: boom}, blockingSummarizer{}, zap.New(core))

	task, err := w.Submit(context.Background(), Request{URL: "https://example.com/gone"})
	if err != nil {
		t.Fatal(err)
	}
	if err := task.Wait(); !errors.Is(err, boom) {
		t.Fatalf("task err = %v", err)
	}
	if w.State() != Input || !errors.Is(w.Err(), boom) {
		t.Fatalf("state = %s, err = %v", w.State(), w.Err())
	}
	if logs.FilterMessage("article processing failed").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}
}

func TestResetCancelsProcessing(t *testing.T) {
	sum := blockingSummarizer{release: make(chan struct{})}
	w := New(testPreset(t), fakeSource{}, sum, nil)
	task, err := w.Submit(context.Background(), Request{URL: "https://example.com/a"})
	if err != nil {
		t.Fatal(err)
	}
	w.Reset()

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task not cancelled")
	}
	if err := task.Wait(); !errors.Is(err, context.Canceled) {
		t.Fatalf("task err = %v, want context.Canceled", err)
	}
	if w.State() != Input || w.Err() != nil {
		t.Fatalf("state = %s err = %v, want clean input", w.State(), w.Err())
	}
}

func TestEditsInPreview(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := New(testPreset(t), nil, nil, zap.New(core))
	if _, err := w.SetText(TitleBlock, "x"); !errors.Is(err, ErrState) {
		t.Fatalf("edit in input err = %v", err)
	}
	if _, err := w.Submit(context.Background(), Request{Title: "Bangladesh to build 100 cold storages"}); err != nil {
		t.Fatal(err)
	}

	d, err := w.SetColor(TitleBlock, 0, 10, red)
	if err != nil {
		t.Fatal(err)
	}
	d, err = w.SetText(TitleBlock, "Bangladesh will build 100 cold storages")
	if err != nil {
		t.Fatal(err)
	}
	title, _ := d.Block(TitleBlock)
	if got := title.Colors.ColorAt(9); got != red {
		t.Errorf("ColorAt(9) after edit = %v, want red", got)
	}
	if got := title.Colors.ColorAt(11); got != colorrange.White {
		t.Errorf("ColorAt(11) after edit = %v, want white", got)
	}

	if _, err := w.SetColor(TitleBlock, 30, 500, red); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessage("color range clamped").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}

	box := styledtext.LayoutBox{X: 50, Y: 600, MaxWidth: 980, MaxHeight: 200, FontSize: 40}
	d, err = w.SetBox(TitleBlock, box)
	if err != nil {
		t.Fatal(err)
	}
	if title, _ := d.Block(TitleBlock); title.Box != box {
		t.Errorf("box = %+v", title.Box)
	}

	if _, err := w.SetText("nope", "x"); !errors.Is(err, ErrUnknownBlock) {
		t.Errorf("unknown block err = %v", err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Input: "input", Processing: "processing", Previewing: "preview", Finalized: "finalized", State(9): "State(9)"} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
