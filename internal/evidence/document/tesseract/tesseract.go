// Package tesseract runs the tesseract command line OCR engine.
package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"

	"kycgate/internal/evidence/document"
	"kycgate/internal/platform/imaging"
)

const (
	DefaultCommand = "tesseract"

	thresholdBlock  = 31
	thresholdOffset = 15

	// page segmentation mode 6: a single uniform block of text
	mrzPageSegMode = "6"
)

// Runner executes name with args, feeding stdin and returning stdout.
type Runner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// Engine shells out to the tesseract binary.
type Engine struct {
	command string
	lang    string
	run     Runner
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces process execution. Intended for tests.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.run = r
		}
	}
}

// WithLanguage sets the tesseract language pack (default eng).
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		if lang != "" {
			e.lang = lang
		}
	}
}

// New creates an engine invoking command (DefaultCommand when empty).
func New(command string, opts ...Option) *Engine {
	if command == "" {
		command = DefaultCommand
	}
	e := &Engine{command: command, lang: "eng", run: execRunner}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recognize binarises img and reads it with tesseract's TSV output.
func (e *Engine) Recognize(ctx context.Context, img image.Image, opts document.Options) (*document.Page, error) {
	pre := imaging.AdaptiveThreshold(imaging.ToGray(img), thresholdBlock, thresholdOffset)
	png, err := imaging.EncodePNG(pre)
	if err != nil {
		return nil, fmt.Errorf("encode ocr input: %w", err)
	}

	out, err := e.run(ctx, e.command, e.args(opts), png)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", e.command, err)
	}
	return ParseTSV(out)
}

func (e *Engine) args(opts document.Options) []string {
	args := []string{"stdin", "stdout", "-l", e.lang}
	if opts.Mode == document.ModeMRZ {
		args = append(args, "--psm", mrzPageSegMode, "-c", "tessedit_char_whitelist="+document.MRZAlphabet)
	}
	return append(args, "tsv")
}

// Health checks that the binary can be executed.
func (e *Engine) Health(ctx context.Context) error {
	if _, err := e.run(ctx, e.command, []string{"--version"}, nil); err != nil {
		return fmt.Errorf("%s unavailable: %w", e.command, err)
	}
	return nil
}

// ParseTSV parses tesseract's TSV word table. Only word rows (level 5) are
// kept; words are assigned consecutive line indices by block, paragraph and
// line number.
func ParseTSV(data []byte) (*document.Page, error) {
	page := &document.Page{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		header  = true
		lastKey string
		line    = -1
	)
	for scanner.Scan() {
		row := scanner.Text()
		if header {
			header = false
			if strings.HasPrefix(row, "level") {
				continue
			}
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 11 || cols[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(strings.TrimSpace(cols[10]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse tsv confidence %q: %w", cols[10], err)
		}
		text := ""
		if len(cols) > 11 {
			text = strings.Join(cols[11:], "\t")
		}
		key := cols[1] + "/" + cols[2] + "/" + cols[3] + "/" + cols[4]
		if key != lastKey {
			line++
			lastKey = key
		}
		page.Words = append(page.Words, document.Word{Text: text, Confidence: conf, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return page, nil
}

func execRunner(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
