package lazyimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/loop"
)

type tile struct {
	sources []string
}

func (t *tile) SetSource(uri string) {
	t.sources = append(t.sources, uri)
}

type countingFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	payload string
	err     error
}

func (f *countingFetcher) fetch(_ context.Context, src string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[src]++
	return f.payload, f.err
}

func (f *countingFetcher) count(src string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[src]
}

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func waitForPosts(t *testing.T, q *loop.Queue, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d posted callbacks", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func newLoader(t *testing.T, f *countingFetcher, q *loop.Queue) *Loader {
	t.Helper()
	l, err := New(Config{Fetch: f.fetch, Loop: q, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestLoader_FetchesOncePerElement(t *testing.T) {
	f := &countingFetcher{payload: pngBase64(t)}
	q := &loop.Queue{}
	l := newLoader(t, f, q)
	el := &tile{}

	if !l.Observe(el, "album-1") {
		t.Fatal("Observe() = false for new element")
	}
	if l.Observe(el, "album-1") {
		t.Error("Observe() must refuse an element already observed")
	}

	l.Intersect(el, 0)
	if f.count("album-1") != 0 {
		t.Error("zero ratio must not trigger a fetch")
	}

	l.Intersect(el, 0.25)
	l.Intersect(el, 1)
	l.Intersect(el, 0.5)
	waitForPosts(t, q, 1)
	q.RunAll()

	if got := f.count("album-1"); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	if l.Observed(el) {
		t.Error("element must stop being observed after first intersection")
	}
	if len(el.sources) != 1 {
		t.Fatalf("SetSource calls = %d, want 1", len(el.sources))
	}
	if want := "data:image/png;base64,"; el.sources[0][:len(want)] != want {
		t.Errorf("source = %.40q, want png data URI", el.sources[0])
	}
}

func TestLoader_FailureLeavesPlaceholder(t *testing.T) {
	f := &countingFetcher{err: errors.New("502 bad gateway")}
	q := &loop.Queue{}
	l := newLoader(t, f, q)
	el := &tile{}

	l.Observe(el, "album-2")
	l.Intersect(el, 1)
	waitForPosts(t, q, 1)
	q.RunAll()

	l.Intersect(el, 1)
	time.Sleep(10 * time.Millisecond)
	q.RunAll()

	if len(el.sources) != 0 {
		t.Errorf("failed fetch must leave placeholder, got %v", el.sources)
	}
	if got := f.count("album-2"); got != 1 {
		t.Errorf("failed fetch must not retry, calls = %d", got)
	}
	if l.Observed(el) {
		t.Error("element must stop being observed after a failure")
	}
}

func TestLoader_Unobserve(t *testing.T) {
	f := &countingFetcher{}
	q := &loop.Queue{}
	l := newLoader(t, f, q)
	el := &tile{}

	l.Observe(el, "album-3")
	if !l.Unobserve(el) {
		t.Error("Unobserve() = false for observed element")
	}
	if l.Unobserve(el) {
		t.Error("Unobserve() = true twice")
	}

	l.Intersect(el, 1)
	time.Sleep(10 * time.Millisecond)
	if f.count("album-3") != 0 {
		t.Error("unobserved element must not be fetched")
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func TestDecodeDataURI(t *testing.T) {
	uri := DataURI(pngBase64(t))
	img, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("bounds = %v, want 2x2", b)
	}
}

func TestDecodeDataURI_Invalid(t *testing.T) {
	tests := []string{
		"",
		"http://example.com/cover.jpg",
		"data:image/png,notbase64",
		"data:image/png;base64",
		"data:image/png;base64,!!!",
	}
	for _, uri := range tests {
		t.Run(uri, func(t *testing.T) {
			if _, err := DecodeDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
				t.Errorf("DecodeDataURI(%q) error = %v, want ErrInvalidDataURI", uri, err)
			}
		})
	}
}

func TestDataURI_UnknownPayload(t *testing.T) {
	if got := DataURI("@@@"); got != "data:application/octet-stream;base64,@@@" {
		t.Errorf("DataURI() = %q", got)
	}
}
