// Package cover requests a generated image and downloads it to disk.
package cover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/azyu/publishgpt/internal/llm"
	"github.com/azyu/publishgpt/internal/storage"
	"github.com/azyu/publishgpt/pkg/types"
)

var (
	ErrNoImage        = errors.New("no image returned")
	ErrDownloadFailed = errors.New("image download failed")
)

// Option configures a Generator.
type Option func(*Generator)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		g.client = client
	}
}

// WithSize sets the requested image size, e.g. "1024x1024".
func WithSize(size string) Option {
	return func(g *Generator) {
		g.size = size
	}
}

// WithUsageRecorder records every image request.
func WithUsageRecorder(recorder llm.UsageRecorder, runID string) Option {
	return func(g *Generator) {
		g.recorder = recorder
		g.runID = runID
	}
}

// WithErrorHandler receives errors that do not abort a call.
func WithErrorHandler(fn func(error)) Option {
	return func(g *Generator) {
		g.onError = fn
	}
}

// Generator produces cover images in a directory.
type Generator struct {
	images llm.ImageProvider
	dir    string
	size   string
	client *http.Client

	recorder llm.UsageRecorder
	runID    string
	onError  func(error)
}

// NewGenerator creates a Generator writing into dir.
func NewGenerator(images llm.ImageProvider, dir string, opts ...Option) *Generator {
	g := &Generator{
		images: images,
		dir:    dir,
		size:   types.DefaultImageSize,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// URL requests exactly one image for description and returns its URL.
func (g *Generator) URL(ctx context.Context, description string) (string, error) {
	start := time.Now()
	resp, err := g.images.GenerateImage(ctx, llm.ImageRequest{
		Prompt: description,
		Size:   g.size,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.URL == "" {
		return "", ErrNoImage
	}

	g.record(ctx, resp.Model, time.Since(start))
	return resp.URL, nil
}

// Download fetches url and writes the body unchanged to <name>_cover.png.
// It returns the path of the written file.
func (g *Generator) Download(ctx context.Context, url, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: HTTP %d", ErrDownloadFailed, resp.StatusCode)
	}

	path := filepath.Join(g.dir, types.CoverFileName(name))
	if _, err := storage.AtomicWriteFrom(path, resp.Body); err != nil {
		return "", err
	}
	return path, nil
}

// Create requests an image for description and downloads it as <name>_cover.png.
func (g *Generator) Create(ctx context.Context, description, name string) (string, error) {
	url, err := g.URL(ctx, description)
	if err != nil {
		return "", err
	}
	return g.Download(ctx, url, name)
}

func (g *Generator) record(ctx context.Context, model string, elapsed time.Duration) {
	if g.recorder == nil {
		return
	}

	event := types.UsageEvent{
		RunID:    g.runID,
		Kind:     types.UsageKindImage,
		Provider: "image",
		Model:    model,
		Duration: elapsed,
	}
	if n, ok := g.images.(interface{ Name() string }); ok {
		event.Provider = n.Name()
	}

	if err := g.recorder.Record(ctx, event); err != nil && g.onError != nil {
		g.onError(fmt.Errorf("failed to record usage: %w", err))
	}
}
