package document

import (
	"context"
	"image"
	"strings"
)

// Mode selects how an engine should treat the image.
type Mode int

const (
	// ModeText reads free text from a whole document page.
	ModeText Mode = iota
	// ModeMRZ reads a machine readable zone restricted to the OCR-B alphabet.
	ModeMRZ
)

// MRZAlphabet is the character set allowed in a machine readable zone.
const MRZAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// Options tunes a single recognition call.
type Options struct {
	Mode Mode
}

// Word is one recognised word. Confidence is 0-100, negative when unknown.
type Word struct {
	Text       string
	Confidence float64
	Line       int // index of the text line the word belongs to
}

// Page is the recognition result for one image.
type Page struct {
	Words []Word
}

// Engine recognises text in images.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (*Page, error)
}

// Text joins all words with single spaces.
func (p *Page) Text() string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, len(p.Words))
	for _, w := range p.Words {
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Lines rebuilds the text lines, joining words of a line with spaces.
func (p *Page) Lines() []string {
	if p == nil {
		return nil
	}
	var (
		lines   []string
		current []string
		line    = -1
	)
	for _, w := range p.Words {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		if w.Line != line && current != nil {
			lines = append(lines, strings.Join(current, " "))
			current = nil
		}
		line = w.Line
		current = append(current, t)
	}
	if current != nil {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// Confidence returns the mean word confidence scaled to [0,1]. ok is false
// when no word carried a confidence.
func (p *Page) Confidence() (conf float64, ok bool) {
	if p == nil {
		return 0, false
	}
	var sum float64
	var n int
	for _, w := range p.Words {
		if w.Confidence < 0 || strings.TrimSpace(w.Text) == "" {
			continue
		}
		sum += w.Confidence
		n++
	}
	if n == 0 {
		return 0, false
	}
	mean := sum / float64(n)
	return max(0, min(100, mean)) / 100, true
}
