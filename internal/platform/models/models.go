// Package models resolves face-model assets on local disk, downloading them
// from an ordered list of mirrors on first use.
package models

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoSources is returned when a model is missing and no URLs were given.
var ErrNoSources = errors.New("no model sources configured")

// MinModelSize is the smallest file accepted as a real model.
const MinModelSize = 1024

const (
	lfsPointerPrefix = "version https://git-lfs.github.com/spec/v1"
	rawPrefix        = "https://raw.githubusercontent.com/"
	githubPrefix     = "https://github.com/"
	mediaPrefix      = "https://media.githubusercontent.com/media/"
)

// Fetcher downloads model files.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client (default: 90s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger used to report download attempts.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 90 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Ensure returns the path of dir/file, downloading it from urls (tried in
// order) when it is missing or empty. A Git LFS pointer response queues the
// media.githubusercontent.com variant of the same URL next.
func (f *Fetcher) Ensure(ctx context.Context, dir, file string, urls ...string) (string, error) {
	path := filepath.Join(dir, file)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}
	if len(urls) == 0 {
		return "", ErrNoSources
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create models dir: %w", err)
	}

	candidates := append([]string(nil), urls...)
	attempted := make(map[string]bool)
	var failures []string

	for len(candidates) > 0 {
		url := candidates[0]
		candidates = candidates[1:]
		if attempted[url] {
			continue
		}
		attempted[url] = true

		data, err := f.download(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			failures = append(failures, fmt.Sprintf("%s -> %v", url, err))
			continue
		}
		if len(data) == 0 {
			failures = append(failures, "empty response from "+url)
			continue
		}

		if len(data) < MinModelSize && IsLFSPointer(data) {
			if media := MediaURL(url); media != "" && !attempted[media] {
				candidates = append([]string{media}, candidates...)
				failures = append(failures, "git lfs pointer at "+url+"; retrying via "+media)
				continue
			}
		}
		if len(data) < MinModelSize {
			failures = append(failures, "downloaded file too small from "+url)
			continue
		}

		if err := writeAtomic(path, data); err != nil {
			return "", err
		}
		f.logger.InfoContext(ctx, "model downloaded",
			"file", file,
			"url", url,
			"bytes", len(data),
		)
		return path, nil
	}

	return "", &DownloadError{File: file, Path: path, Dir: dir, Failures: failures}
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// writeAtomic writes through a temp file so a crash never leaves a partial model.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("close model file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// IsLFSPointer reports whether data is a Git LFS pointer file.
func IsLFSPointer(data []byte) bool {
	return bytes.HasPrefix(data, []byte(lfsPointerPrefix)) && bytes.Contains(data, []byte("oid "))
}

// MediaURL maps a raw GitHub URL to its media.githubusercontent.com variant,
// or returns "" when url is not a GitHub raw URL.
func MediaURL(url string) string {
	if rest, ok := strings.CutPrefix(url, rawPrefix); ok {
		return mediaPrefix + rest
	}
	if rest, ok := strings.CutPrefix(url, githubPrefix); ok {
		if repo, path, found := strings.Cut(rest, "/raw/"); found {
			return mediaPrefix + repo + "/" + path
		}
	}
	return ""
}

// DownloadError lists every source tried and how to install the model by hand.
type DownloadError struct {
	File     string
	Path     string
	Dir      string
	Failures []string
}

func (e *DownloadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "could not download model %q; tried:\n  - %s\n", e.File, strings.Join(e.Failures, "\n  - "))
	fmt.Fprintf(&b, "manual fix: mkdir -p %s, download the file and place it at %s, or point the *_URL setting at a mirror", e.Dir, e.Path)
	return b.String()
}
