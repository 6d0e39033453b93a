// Package render turns backend result payloads into the display state of
// the results panel.
package render

import (
	"strings"
	"sync"

	"signbridge/upload"
)

const (
	// FallbackEnglish replaces an empty english_text field.
	FallbackEnglish = "No text recognized"
	// FallbackISL replaces an empty isl_text field.
	FallbackISL = "No ISL conversion available"
)

// ResultsView is the rendered state of the results panel. Revealed flips to
// true on the first result and never back; Count tracks how many results
// have been shown this session.
type ResultsView struct {
	EnglishText string
	ISLText     string
	VideoURL    string
	Revealed    bool
	Count       int
}

// Renderer converts payloads into views and pushes snapshots to the sink.
// When submissions overlap, whichever result lands last owns the panel.
// Safe for concurrent use.
type Renderer struct {
	staticPrefix string
	sink         func(ResultsView)

	mu   sync.Mutex
	view ResultsView
}

// NewRenderer constructs a Renderer. staticPrefix is joined onto relative
// video paths; sink receives a snapshot after every render and may be nil.
func NewRenderer(staticPrefix string, sink func(ResultsView)) *Renderer {
	return &Renderer{staticPrefix: staticPrefix, sink: sink}
}

// Render overwrites the panel with the payload, substituting fallbacks for
// empty text fields. Rendering the same payload twice leaves the same view.
func (r *Renderer) Render(p upload.ResultPayload) {
	english := p.EnglishText
	if english == "" {
		english = FallbackEnglish
	}
	isl := p.ISLText
	if isl == "" {
		isl = FallbackISL
	}

	r.mu.Lock()
	r.view.EnglishText = english
	r.view.ISLText = isl
	r.view.VideoURL = r.videoURL(p.VideoPath)
	r.view.Revealed = true
	r.view.Count++
	snapshot := r.view
	r.mu.Unlock()

	if r.sink != nil {
		r.sink(snapshot)
	}
}

// View returns the current panel state.
func (r *Renderer) View() ResultsView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *Renderer) videoURL(path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(r.staticPrefix, "/") + "/" + strings.TrimLeft(path, "/")
}
