package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/playback"
	"github.com/jfmyers9/beetle/internal/route"
	"github.com/jfmyers9/beetle/internal/view"
	"github.com/jfmyers9/beetle/pkg/beets"
)

type fakeLibrary struct {
	mu       sync.Mutex
	results  map[string][]beets.Item
	albums   []beets.Album
	queryErr error
	albumErr error
	queries  []string
}

func (l *fakeLibrary) Query(_ context.Context, query string) ([]beets.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, query)
	if l.queryErr != nil {
		return nil, l.queryErr
	}
	return l.results[query], nil
}

func (l *fakeLibrary) FileURL(id beets.ID) string {
	return "http://beets/item/" + id.String() + "/file"
}

func (l *fakeLibrary) RandomAlbums(context.Context) ([]beets.Album, error) {
	return l.albums, l.albumErr
}

func (l *fakeLibrary) Art(_ context.Context, id beets.ID) (string, error) {
	return "", errors.New("no art for " + id.String())
}

type harness struct {
	app       *App
	lib       *fakeLibrary
	transport *playback.MockTransport
	queue     *loop.Queue
	history   *route.History
	errs      []error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		lib: &fakeLibrary{results: map[string][]beets.Item{
			"Clair de lune": {
				{ID: "101", Title: "Clair de lune", Artist: "Claude Debussy", Length: 301},
				{ID: "102", Title: "Clair de lune", Artist: "Isao Tomita", Length: 355},
			},
			"satie": {
				{ID: "201", Title: "Gymnopédie No. 1", Artist: "Erik Satie"},
			},
		}},
		transport: playback.NewMockTransport(),
		queue:     &loop.Queue{},
		history:   route.NewHistory(""),
	}
	a, err := New(Config{
		Library:   h.lib,
		Transport: h.transport,
		Location:  h.history,
		Loop:      h.queue,
		Logger:    zerolog.Nop(),
		OnError:   func(err error) { h.errs = append(h.errs, err) },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)
	h.app = a
	return h
}

// settle runs the loop until n callbacks have been posted and run.
func (h *harness) settle(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	ran := 0
	for ran < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %d of %d callbacks", ran, n)
		}
		if !h.queue.RunNext() {
			time.Sleep(time.Millisecond)
			continue
		}
		ran++
	}
}

func TestApp_ClairDeLuneScenario(t *testing.T) {
	h := newHarness(t)

	h.app.Search("Clair de lune")
	h.settle(t, 1)

	if h.app.Items.Size() != 2 {
		t.Fatalf("Items.Size() = %d, want 2", h.app.Items.Size())
	}

	h.app.Select(1)
	if err := h.app.PlaySelected(); err != nil {
		t.Fatalf("PlaySelected() error = %v", err)
	}
	cur, ok := h.app.Controller.Current()
	if !ok || cur.ID != "102" {
		t.Fatalf("pointer = %q, want 102", cur.ID)
	}

	h.transport.SimulatePlaying()
	row := h.app.Views(4).Results.Find(view.KindRow, "102")
	if row == nil || !row.Playing || !row.Selected {
		t.Errorf("row 102 = %+v, want selected and playing", row)
	}

	h.transport.SimulateEnded()

	if h.app.Controller.State() != playback.Idle {
		t.Errorf("State() = %v, want Idle", h.app.Controller.State())
	}
	if _, ok := h.app.Items.At(h.app.Controller.CurrentIndex() + 1); ok {
		t.Error("expected the queue to be exhausted")
	}
	if len(h.transport.LoadCalls) != 1 {
		t.Errorf("LoadCalls = %v", h.transport.LoadCalls)
	}
	if h.app.Views(4).Results.Count(func(n *view.Node) bool { return n.Playing }) != 0 {
		t.Error("no entry may show as playing after the queue ends")
	}
}

func TestApp_DoubleActivationPlays(t *testing.T) {
	h := newHarness(t)
	h.app.Search("Clair de lune")
	h.settle(t, 1)

	if err := h.app.Activate(0); err != nil {
		t.Fatal(err)
	}
	if len(h.transport.LoadCalls) != 0 {
		t.Fatal("single activation must only select")
	}
	detail := h.app.Views(4).Detail
	if detail.Key != "101" {
		t.Errorf("detail shows %q, want 101", detail.Key)
	}

	if err := h.app.Activate(0); err != nil {
		t.Fatal(err)
	}
	if len(h.transport.LoadCalls) != 1 || h.transport.LoadCalls[0] != "http://beets/item/101/file" {
		t.Errorf("LoadCalls = %v", h.transport.LoadCalls)
	}
}

func TestApp_NewQueryKeepsPlayback(t *testing.T) {
	h := newHarness(t)
	h.app.Search("Clair de lune")
	h.settle(t, 1)

	_ = h.app.PlayID("101")
	h.transport.SimulatePlaying()

	h.app.Search("satie")
	h.settle(t, 1)

	if h.app.Controller.State() != playback.Playing {
		t.Errorf("State() = %v, want Playing", h.app.Controller.State())
	}
	if h.app.Items.Size() != 1 {
		t.Errorf("Items.Size() = %d, want 1", h.app.Items.Size())
	}

	h.transport.SimulateEnded()
	if cur, _ := h.app.Controller.Current(); cur.ID != "102" {
		t.Errorf("auto-advance went to %q, want 102 from the original set", cur.ID)
	}
}

func TestApp_QueryFailureKeepsResults(t *testing.T) {
	h := newHarness(t)
	h.app.Search("Clair de lune")
	h.settle(t, 1)

	h.lib.mu.Lock()
	h.lib.queryErr = errors.New("503 service unavailable")
	h.lib.mu.Unlock()

	h.app.Search("satie")
	h.settle(t, 1)

	if h.app.Items.Size() != 2 {
		t.Errorf("Items.Size() = %d, want previous 2", h.app.Items.Size())
	}
	if len(h.errs) != 1 {
		t.Errorf("errs = %v", h.errs)
	}
	if h.app.Status() == "" {
		t.Error("failure should be shown in the status line")
	}
}

func TestApp_BrowseAlbums(t *testing.T) {
	h := newHarness(t)
	h.lib.albums = []beets.Album{
		{ID: "1", Album: "Préludes", AlbumArtist: "Claude Debussy", ArtPath: "/a.jpg"},
		{ID: "2", Album: "Images", AlbumArtist: "Claude Debussy"},
	}

	h.app.BrowseAlbums(context.Background())
	h.settle(t, 1)

	if h.app.Mode() != view.ModeGrid {
		t.Errorf("Mode() = %v, want grid", h.app.Mode())
	}
	grid := h.app.Views(2).Results
	if grid.Kind != view.KindGrid || grid.Find(view.KindTile, "2") == nil {
		t.Errorf("grid tree:\n%s", grid)
	}

	h.app.Select(0)
	_ = h.app.PlaySelected()
	h.settle(t, 1)

	if h.app.Mode() != view.ModeList {
		t.Error("playing an album should switch back to the list")
	}
	if got := h.app.Router.Query(); got != "album:Préludes albumartist:Claude Debussy" {
		t.Errorf("Query() = %q", got)
	}
}

func TestApp_BrowseAlbumsFailure(t *testing.T) {
	h := newHarness(t)
	h.lib.albumErr = errors.New("timeout")

	h.app.BrowseAlbums(context.Background())
	h.settle(t, 1)

	if h.app.Albums.Size() != 0 {
		t.Errorf("Albums.Size() = %d", h.app.Albums.Size())
	}
	if len(h.errs) != 1 {
		t.Errorf("errs = %v", h.errs)
	}
}

func TestApp_SetModeKeepsState(t *testing.T) {
	h := newHarness(t)
	h.app.Search("Clair de lune")
	h.settle(t, 1)
	_ = h.app.PlayID("101")

	h.app.SetMode(view.ModeGrid)
	h.app.SetMode(view.ModeList)

	if h.app.Items.Size() != 2 {
		t.Error("mode switch must keep the result set")
	}
	if cur, ok := h.app.Controller.Current(); !ok || cur.ID != "101" {
		t.Error("mode switch must keep the playback pointer")
	}
}
