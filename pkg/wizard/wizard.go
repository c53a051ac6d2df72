// Package wizard drives one card from an article URL or typed text to a
// finished render: Input → Processing → Preview → Finalized.
//
// Fetching and summarizing run as a cancellable Task. Rendering stays
// synchronous; the Previewer only moves it off the caller's goroutine.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/xob0t/photocard/pkg/logging"
	"github.com/xob0t/photocard/pkg/styledtext"
	"github.com/xob0t/photocard/pkg/template"
)

// State is a wizard step.
type State int

const (
	Input State = iota
	Processing
	Previewing
	Finalized
)

func (s State) String() string {
	switch s {
	case Input:
		return "input"
	case Processing:
		return "processing"
	case Previewing:
		return "preview"
	case Finalized:
		return "finalized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrState reports a call that is not valid in the wizard's current state.
var ErrState = errors.New("invalid wizard state")

// Default block IDs the wizard fills.
const (
	TitleBlock   = "title"
	CaptionBlock = "message"
)

// Request starts a card. With a URL the title and caption come from the
// article; otherwise Title and Caption are used as given.
type Request struct {
	URL        string
	Title      string
	Caption    string
	Background string
}

// Wizard holds the current step and its payload. All methods are safe for
// concurrent use.
type Wizard struct {
	preset     *template.Preset
	source     ArticleSource
	summarizer Summarizer
	log        *zap.Logger

	mu    sync.Mutex
	state State
	draft Draft
	err   error
	task  *Task
	gen   uint64 // bumps on every Submit and Reset
}

// New returns a wizard in the Input state. source and summarizer may be
// nil when only typed requests are used.
func New(preset *template.Preset, source ArticleSource, summarizer Summarizer, log *zap.Logger) *Wizard {
	return &Wizard{
		preset:     preset,
		source:     source,
		summarizer: summarizer,
		log:        logging.OrNop(log),
	}
}

// State returns the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns the payload of the Previewing or Finalized step.
func (w *Wizard) Draft() (Draft, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Previewing && w.state != Finalized {
		return Draft{}, false
	}
	return w.draft, true
}

// Err returns the failure that sent the wizard back to Input, if any.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Submit leaves Input. A typed request moves straight to Previewing and
// returns a nil Task. A URL request moves to Processing and returns the
// task fetching and summarizing the article; when it finishes the wizard
// is in Previewing, or back in Input with Err set.
func (w *Wizard) Submit(ctx context.Context, req Request) (*Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Input {
		return nil, fmt.Errorf("%w: submit in %s", ErrState, w.state)
	}
	w.err = nil
	w.gen++

	if req.URL == "" {
		w.draft = w.newDraft(req.Background, req.Title, req.Caption)
		w.state = Previewing
		return nil, nil
	}
	if w.source == nil || w.summarizer == nil {
		return nil, fmt.Errorf("%w: no article source configured", ErrState)
	}

	w.state = Processing
	gen := w.gen
	ctx = logging.NewContext(ctx, w.log.With(zap.String("url", req.URL)))
	w.task = Go(ctx, func(ctx context.Context) error {
		title, caption, err := w.process(ctx, req.URL)
		w.finish(gen, req, title, caption, err)
		return err
	})
	return w.task, nil
}

func (w *Wizard) process(ctx context.Context, url string) (title, caption string, err error) {
	log := logging.L(ctx)
	log.Info("fetching article")
	article, err := w.source.Fetch(ctx, url)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", url, err)
	}
	log.Info("summarizing article", zap.Int("chars", len(article.Body)))
	caption, err = w.summarizer.Summarize(ctx, article.Body)
	if err != nil {
		return "", "", fmt.Errorf("summarize %s: %w", url, err)
	}
	return article.Title, caption, nil
}

// finish records the result of the task started by generation gen.
func (w *Wizard) finish(gen uint64, req Request, title, caption string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen || w.state != Processing {
		return // reset while running
	}
	w.task = nil
	if err != nil {
		w.log.Warn("article processing failed", zap.String("url", req.URL), zap.Error(err))
		w.err = err
		w.state = Input
		return
	}
	w.draft = w.newDraft(req.Background, title, caption)
	w.state = Previewing
}

// newDraft resolves the preset with the given text. An empty caption keeps
// the caption block hidden.
func (w *Wizard) newDraft(background, title, caption string) Draft {
	data := &template.DataSpec{
		Background: background,
		Blocks:     map[string]template.BlockData{TitleBlock: {Text: template.Ptr(title)}},
	}
	if caption != "" {
		data.Blocks[CaptionBlock] = template.BlockData{Visible: template.Ptr(true), Text: template.Ptr(caption)}
	}
	return NewDraft(background, template.MergeData(w.preset, data))
}

// Edit replaces the Previewing payload with fn's result.
func (w *Wizard) Edit(fn func(Draft) (Draft, error)) (Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Previewing {
		return Draft{}, fmt.Errorf("%w: edit in %s", ErrState, w.state)
	}
	d, err := fn(w.draft)
	if err != nil {
		return w.draft, err
	}
	w.draft = d
	return d, nil
}

// SetText edits a block's text, keeping colors on unchanged characters.
func (w *Wizard) SetText(id, text string) (Draft, error) {
	return w.Edit(func(d Draft) (Draft, error) { return d.WithText(id, text) })
}

// SetColor colors [start, end) of a block. An out-of-bounds interval is
// clamped and logged, never fatal.
func (w *Wizard) SetColor(id string, start, end int, c color.RGBA) (Draft, error) {
	return w.Edit(func(d Draft) (Draft, error) {
		if b, ok := d.Block(id); ok {
			if err := b.Colors.Check(start, end); err != nil {
				w.log.Warn("color range clamped", zap.String("block", id), zap.Error(err))
			}
		}
		return d.WithColor(id, start, end, c)
	})
}

// SetBox moves or resizes a block.
func (w *Wizard) SetBox(id string, box styledtext.LayoutBox) (Draft, error) {
	return w.Edit(func(d Draft) (Draft, error) { return d.WithBox(id, box) })
}

// Finalize freezes the Previewing payload and returns it.
func (w *Wizard) Finalize() (Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Previewing {
		return Draft{}, fmt.Errorf("%w: finalize in %s", ErrState, w.state)
	}
	w.state = Finalized
	return w.draft, nil
}

// Reset cancels any running task and returns to Input.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.task != nil {
		w.task.Cancel()
		w.task = nil
	}
	w.gen++
	w.state = Input
	w.draft = Draft{}
	w.err = nil
}
