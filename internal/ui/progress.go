package ui

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

const progressTemplate pb.ProgressBarTemplate = `{{string . "prefix"}} {{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{string . "term"}}`

// Progress shows how many terms of a source are done. A nil *Progress does nothing.
type Progress struct {
	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewProgress starts a bar over total terms, or returns nil when disabled
func NewProgress(w io.Writer, source models.Source, total int, enabled bool) *Progress {
	if !enabled || total <= 0 {
		return nil
	}
	bar := progressTemplate.New(total)
	bar.SetWriter(w)
	bar.Set("prefix", source.Title())
	bar.Start()
	return &Progress{bar: bar}
}

// Done marks one term finished
func (p *Progress) Done(term string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Set("term", term)
	p.bar.Increment()
}

func (p *Progress) Finish() {
	if p == nil {
		return
	}
	p.bar.Finish()
}
