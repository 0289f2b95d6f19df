package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ably/internal/cache"
	"ably/internal/contrast"
	"ably/internal/validate"
)

func TestCleanCaption(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"there is a cat on a sofa", "A cat on a sofa"},
		{"arafed man riding a bike", "Man riding a bike"},
		{"araf sitting at a desk", "Person sitting at a desk"},
		{"araffes walking on a beach", "People walking on a beach"},
		{"  a red car ", "A red car"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := cleanCaption(tc.in); got != tc.want {
			t.Fatalf("cleanCaption(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCaptionerRemoteImage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body captionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com/cat.png", body.URL)
		_, _ = io.WriteString(w, `[{"generated_text":"there is a cat sleeping on a keyboard"}]`)
	}))
	defer srv.Close()

	store := cache.NewMemory(0, 0)
	defer store.Close()
	c := NewCaptioner(CaptionOptions{URL: srv.URL, Token: "secret", Cache: store, HTTPClient: srv.Client()})
	ref := validate.ImageRef{Src: "https://example.com/cat.png"}

	want := ": <img src='https://example.com/cat.png' alt='A cat sleeping on a keyboard'>"
	require.Equal(t, want, c.SuggestAltText(context.Background(), ref))
	require.Equal(t, want, c.SuggestAltText(context.Background(), ref))
	assert.Equal(t, int32(1), calls.Load(), "second lookup should come from the cache")
}

func TestCaptionerLocalImage(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), png, 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		assert.Equal(t, png, data)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer already", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"generated_text":"a logo with <b>bold</b> letters"}]`)
	}))
	defer srv.Close()

	c := NewCaptioner(CaptionOptions{URL: srv.URL, Token: "Bearer already", HTTPClient: srv.Client()})
	got := c.SuggestAltText(context.Background(), validate.ImageRef{Src: "logo.png", Dir: dir})
	assert.Equal(t, ": <img src='logo.png' alt='A logo with bold letters'>", got)
}

func TestCaptionerFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := NewCaptioner(CaptionOptions{URL: srv.URL, HTTPClient: srv.Client()})

	missing := c.SuggestAltText(context.Background(), validate.ImageRef{Src: "nope.png", Dir: t.TempDir()})
	assert.Equal(t, captionNotFound, missing)

	failed := c.SuggestAltText(context.Background(), validate.ImageRef{Src: "https://example.com/x.jpg"})
	assert.Equal(t, captionFailed, failed)
}

func TestCaptionerEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()
	c := NewCaptioner(CaptionOptions{URL: srv.URL, HTTPClient: srv.Client()})
	got := c.SuggestAltText(context.Background(), validate.ImageRef{Src: "https://example.com/x.jpg"})
	assert.Equal(t, captionFailed, got)
}

const schemeBody = `{
  "mode": "complement",
  "count": "2",
  "colors": [
    {"hex": {"value": "#000080", "clean": "000080"}, "name": {"value": "Navy"}},
    {"hex": {"value": "#FFF44F", "clean": "FFF44F"}, "name": {"value": "Lemon"}},
    {"hex": {"value": ""}, "name": {"value": "Broken"}}
  ]
}`

func TestSchemeClient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "ffffff", q.Get("hex"))
		assert.Equal(t, "complement", q.Get("mode"))
		assert.Equal(t, "5", q.Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, schemeBody)
	}))
	defer srv.Close()

	store := cache.NewMemory(16, time.Minute)
	defer store.Close()
	c := NewSchemeClient(SchemeOptions{URL: srv.URL, HTTPClient: srv.Client(), Cache: store, TTL: time.Hour})

	want := []contrast.SchemeColor{
		{Name: "Navy", Hex: "#000080"},
		{Name: "Lemon", Hex: "#FFF44F"},
	}
	got, err := c.Suggest(context.Background(), "#FFFFFF")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = c.Suggest(context.Background(), "#ffffff")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchemeClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := NewSchemeClient(SchemeOptions{URL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.Suggest(context.Background(), "#123456")
	require.Error(t, err)
}

func TestSchemeClientRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// валидный JSON, но хвост из пробелов превышает лимит
		_, _ = w.Write([]byte(`{"colors":[]}`))
		_, _ = w.Write(bytes.Repeat([]byte(" "), MaxResponseBytes))
	}))
	defer srv.Close()
	c := NewSchemeClient(SchemeOptions{URL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.Suggest(context.Background(), "#123456")
	require.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestReadBodyLimit(t *testing.T) {
	data, err := readBody(bytes.NewReader([]byte("abcd")), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))

	_, err = readBody(bytes.NewReader([]byte("abcde")), 4)
	require.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestNewHTTPClientLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf safeBuffer
	logger := newTestLogger(&buf)
	client := NewHTTPClient(logger, time.Second, true)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Contains(t, buf.String(), `"type":"REQ"`)
	assert.Contains(t, buf.String(), `"status":"204"`)
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(w io.Writer) *zerolog.Logger {
	l := zerolog.New(w).Level(zerolog.DebugLevel)
	return &l
}
