// preview.go - Background preview renders where the most recently
// requested result wins.
package wizard

import (
	"image"
	"sync"

	"github.com/xob0t/photocard/pkg/template"
)

// RenderFunc renders a draft into a finished card.
type RenderFunc func(Draft) (*image.RGBA, error)

// RenderWith returns a RenderFunc drawing drafts with r over preset.
func RenderWith(r *template.Renderer, preset *template.Preset) RenderFunc {
	return func(d Draft) (*image.RGBA, error) {
		return r.Render(preset, d.Data(), d.Blocks())
	}
}

// Preview is the outcome of one render request. Err is set instead of
// Image when the render failed, so a failure never looks like a blank card.
type Preview struct {
	Seq   uint64
	Draft Draft
	Image *image.RGBA
	Err   error
}

// Previewer runs every render request in its own goroutine. A result is
// published only if no later request has already published one.
type Previewer struct {
	render   RenderFunc
	onUpdate func(Preview)

	mu      sync.Mutex
	seq     uint64
	current Preview
	wg      sync.WaitGroup
}

// NewPreviewer returns a previewer calling onUpdate (which may be nil) for
// each accepted result, in sequence order. onUpdate must not call back
// into the previewer.
func NewPreviewer(render RenderFunc, onUpdate func(Preview)) *Previewer {
	return &Previewer{render: render, onUpdate: onUpdate}
}

// Request starts rendering d and returns its sequence number.
func (p *Previewer) Request(d Draft) uint64 {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		img, err := p.render(d)
		p.publish(Preview{Seq: seq, Draft: d, Image: img, Err: err})
	}()
	return seq
}

func (p *Previewer) publish(pv Preview) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pv.Seq <= p.current.Seq {
		return
	}
	p.current = pv
	if p.onUpdate != nil {
		p.onUpdate(pv)
	}
}

// Current returns the newest published preview. Seq is 0 before the first
// render completes.
func (p *Previewer) Current() Preview {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Wait blocks until every requested render has finished.
func (p *Previewer) Wait() {
	p.wg.Wait()
}
