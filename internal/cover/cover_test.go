package cover

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/azyu/publishgpt/internal/llm"
	"github.com/azyu/publishgpt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	url      string
	err      error
	requests []llm.ImageRequest
}

func (f *fakeImages) GenerateImage(_ context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ImageResponse{URL: f.url, Model: "dall-e-2"}, nil
}

func (f *fakeImages) Name() string { return "fake" }

type recordedUsage struct {
	events []types.UsageEvent
	err    error
}

func (r *recordedUsage) Record(_ context.Context, event types.UsageEvent) error {
	r.events = append(r.events, event)
	return r.err
}

// pngBytes is served by the test image host.
var pngBytes = []byte("\x89PNG\r\n\x1a\nnot really an image")

func newImageServer(t *testing.T, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(status)
		_, _ = w.Write(pngBytes)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerator_Create(t *testing.T) {
	server := newImageServer(t, http.StatusOK)
	dir := t.TempDir()
	images := &fakeImages{url: server.URL + "/img.png"}

	gen := NewGenerator(images, dir, WithHTTPClient(server.Client()))

	path, err := gen.Create(context.Background(), "a lighthouse at dusk", "The Lighthouse")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "The Lighthouse_cover.png"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data, "bytes are written unchanged")

	require.Len(t, images.requests, 1)
	assert.Equal(t, "a lighthouse at dusk", images.requests[0].Prompt)
	assert.Equal(t, types.DefaultImageSize, images.requests[0].Size)
}

func TestGenerator_Size(t *testing.T) {
	images := &fakeImages{url: "https://images.example/x.png"}
	gen := NewGenerator(images, t.TempDir(), WithSize("512x512"))

	_, err := gen.URL(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "512x512", images.requests[0].Size)
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("provider error propagates", func(t *testing.T) {
		providerErr := errors.New("quota exceeded")
		gen := NewGenerator(&fakeImages{err: providerErr}, t.TempDir())

		_, err := gen.Create(context.Background(), "x", "name")
		assert.ErrorIs(t, err, providerErr)
	})

	t.Run("empty url", func(t *testing.T) {
		gen := NewGenerator(&fakeImages{}, t.TempDir())

		_, err := gen.URL(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("non 2xx download", func(t *testing.T) {
		server := newImageServer(t, http.StatusForbidden)
		dir := t.TempDir()
		gen := NewGenerator(&fakeImages{url: server.URL}, dir, WithHTTPClient(server.Client()))

		_, err := gen.Create(context.Background(), "x", "name")
		assert.ErrorIs(t, err, ErrDownloadFailed)
		assert.ErrorContains(t, err, "403")

		_, statErr := os.Stat(filepath.Join(dir, types.CoverFileName("name")))
		assert.True(t, os.IsNotExist(statErr), "no file is written")
	})

	t.Run("unreachable host", func(t *testing.T) {
		server := newImageServer(t, http.StatusOK)
		url := server.URL
		server.Close()

		gen := NewGenerator(&fakeImages{url: url}, t.TempDir())

		_, err := gen.Create(context.Background(), "x", "name")
		assert.ErrorIs(t, err, ErrDownloadFailed)
	})
}

func TestGenerator_RecordsUsage(t *testing.T) {
	recorder := &recordedUsage{}
	gen := NewGenerator(&fakeImages{url: "https://images.example/x.png"}, t.TempDir(),
		WithUsageRecorder(recorder, "run-7"))

	_, err := gen.URL(context.Background(), "x")
	require.NoError(t, err)

	require.Len(t, recorder.events, 1)
	event := recorder.events[0]
	assert.Equal(t, "run-7", event.RunID)
	assert.Equal(t, types.UsageKindImage, event.Kind)
	assert.Equal(t, "fake", event.Provider)
	assert.Equal(t, "dall-e-2", event.Model)

	t.Run("recorder failure is reported, not returned", func(t *testing.T) {
		var handled error
		gen := NewGenerator(&fakeImages{url: "https://images.example/x.png"}, t.TempDir(),
			WithUsageRecorder(&recordedUsage{err: errors.New("locked")}, "run"),
			WithErrorHandler(func(err error) { handled = err }))

		url, err := gen.URL(context.Background(), "x")
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.ErrorContains(t, handled, "locked")
	})
}
