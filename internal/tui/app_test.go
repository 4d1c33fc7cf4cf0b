package tui

import (
	"context"
	"fmt"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/app"
	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/playback"
	"github.com/jfmyers9/beetle/internal/route"
	"github.com/jfmyers9/beetle/internal/view"
	"github.com/jfmyers9/beetle/pkg/beets"
)

type fakeLibrary struct{}

func (fakeLibrary) Query(context.Context, string) ([]beets.Item, error) {
	return nil, nil
}

func (fakeLibrary) FileURL(id beets.ID) string {
	return "http://beets/item/" + id.String() + "/file"
}

func (fakeLibrary) RandomAlbums(context.Context) ([]beets.Album, error) {
	return nil, nil
}

func (fakeLibrary) Art(context.Context, beets.ID) (string, error) {
	return "", nil
}

func newTestUI(t *testing.T, mode view.Mode, fragment string) (*App, *app.App, *route.History) {
	t.Helper()
	hist := route.NewHistory(fragment)
	ui := New(Config{GridColumns: 4, Logger: zerolog.Nop()})
	core, err := app.New(app.Config{
		Library:   fakeLibrary{},
		Transport: playback.NewMockTransport(),
		Location:  hist,
		Loop:      &loop.Queue{},
		Logger:    zerolog.Nop(),
		Mode:      mode,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(core.Close)
	ui.Bind(core, hist)
	return ui, core, hist
}

func albums(n int) []beets.Album {
	out := make([]beets.Album, n)
	for i := range out {
		out[i] = beets.Album{
			ID:          beets.ID(fmt.Sprint(i + 1)),
			Album:       fmt.Sprintf("Album %d", i+1),
			AlbumArtist: "Claude Debussy",
			ArtPath:     "/music/cover.jpg",
		}
	}
	return out
}

// drawGrid draws the album grid on an 80x30 simulation screen and runs the
// after-draw visibility pass.
func drawGrid(t *testing.T, ui *App) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen.Init() error = %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 30)

	ui.grid.SetRect(0, 0, 80, 30)
	ui.grid.Draw(screen)
	ui.intersectTiles()
}

func TestApp_GridFetchesOnlyVisibleTiles(t *testing.T) {
	ui, core, _ := newTestUI(t, view.ModeGrid, "")
	core.Albums.SetAll(albums(40))
	ui.Refresh()

	if len(ui.tiles) != 40 || core.Loader.Len() != 40 {
		t.Fatalf("tiles = %d, observed = %d, want 40 each", len(ui.tiles), core.Loader.Len())
	}

	// Inner viewport is 28 rows: two full tile rows and part of a third.
	drawGrid(t, ui)

	if got := core.Loader.Len(); got != 28 {
		t.Errorf("observed after first draw = %d, want 28", got)
	}
	for i, tl := range ui.tiles {
		want := i >= 12
		if got := core.Loader.Observed(tl); got != want {
			t.Errorf("tile %d observed = %v, want %v", i, got, want)
		}
	}

	// Scrolling three rows down reveals rows 3 to 5.
	ui.grid.SetOffset(3, 0)
	drawGrid(t, ui)

	if got := core.Loader.Len(); got != 16 {
		t.Errorf("observed after scrolling = %d, want 16", got)
	}
	if !core.Loader.Observed(ui.tiles[39]) {
		t.Error("last tile was never on screen and must still be observed")
	}
	if core.Loader.Observed(ui.tiles[23]) {
		t.Error("tile 23 is on screen and must no longer be observed")
	}
}

func TestApp_GridKeepsTilesAcrossSelection(t *testing.T) {
	ui, core, _ := newTestUI(t, view.ModeGrid, "")
	core.Albums.SetAll(albums(8))
	ui.Refresh()
	first := ui.tiles[0]

	core.Select(1)
	ui.Refresh()

	if ui.tiles[0] != first {
		t.Error("selection change rebuilt the tiles")
	}
	if core.Loader.Len() != 8 {
		t.Errorf("observed = %d, want 8", core.Loader.Len())
	}
}

func TestApp_SearchShowsDecodedQuery(t *testing.T) {
	ui, core, hist := newTestUI(t, view.ModeList, route.Encode("clair de lune"))

	ui.syncSearch()
	if got := ui.search.GetText(); got != "clair de lune" {
		t.Fatalf("search text = %q, want %q", got, "clair de lune")
	}

	// Submitting the shown text is the same route, so nothing is searched.
	gen := core.Router.Generation()
	ui.handleSearchDone(tcell.KeyEnter)
	if hist.Fragment() != route.Encode("clair de lune") {
		t.Errorf("fragment = %q after resubmitting", hist.Fragment())
	}
	if core.Router.Generation() != gen {
		t.Errorf("generation = %d, want %d", core.Router.Generation(), gen)
	}

	core.Search("debussy")
	ui.handleKeyEvent(tcell.NewEventKey(tcell.KeyRune, '[', tcell.ModNone))
	if got := ui.search.GetText(); got != "clair de lune" {
		t.Errorf("search text after back = %q, want %q", got, "clair de lune")
	}

	ui.handleKeyEvent(tcell.NewEventKey(tcell.KeyRune, ']', tcell.ModNone))
	if got := ui.search.GetText(); got != "debussy" {
		t.Errorf("search text after forward = %q, want %q", got, "debussy")
	}
}
