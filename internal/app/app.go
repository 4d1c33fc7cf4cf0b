// Package app is the explicitly constructed application context: it owns
// the stores, router, playback controller and image loader, and exposes
// the user actions the interfaces call.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/history"
	"github.com/jfmyers9/beetle/internal/lazyimage"
	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/playback"
	"github.com/jfmyers9/beetle/internal/results"
	"github.com/jfmyers9/beetle/internal/route"
	"github.com/jfmyers9/beetle/internal/view"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// Library is the remote API the application talks to.
type Library interface {
	Query(ctx context.Context, query string) ([]beets.Item, error)
	FileURL(id beets.ID) string
	RandomAlbums(ctx context.Context) ([]beets.Album, error)
	Art(ctx context.Context, id beets.ID) (string, error)
}

// ClientLibrary adapts *beets.Client to Library.
type ClientLibrary struct {
	Client *beets.Client
}

func (l ClientLibrary) Query(ctx context.Context, query string) ([]beets.Item, error) {
	return l.Client.Items().Query(ctx, query)
}

func (l ClientLibrary) FileURL(id beets.ID) string {
	return l.Client.Items().FileURL(id)
}

func (l ClientLibrary) RandomAlbums(ctx context.Context) ([]beets.Album, error) {
	return l.Client.Albums().Random(ctx)
}

func (l ClientLibrary) Art(ctx context.Context, id beets.ID) (string, error) {
	return l.Client.Albums().Art(ctx, id)
}

// Config wires an App.
type Config struct {
	Library   Library
	Transport playback.Transport
	Location  route.Location
	Loop      loop.Loop
	Logger    zerolog.Logger

	// Tracker records plays; optional.
	Tracker *history.Tracker

	// Mode is the initial results layout.
	Mode view.Mode

	// OnError surfaces a failure to the user. Called on the loop.
	OnError func(err error)

	// OnChange is called on the loop whenever anything visible changed.
	OnChange func()
}

// App is the application context.
//
// Every method must be called on the loop.
type App struct {
	cfg    Config
	logger zerolog.Logger

	Items      *results.Store[beets.Item]
	Albums     *results.Store[beets.Album]
	Router     *route.Router
	Controller *playback.Controller
	Loader     *lazyimage.Loader
	Selection  *view.Selection

	mode     view.Mode
	status   string
	albumGen uint64
}

// New builds the application context.
func New(cfg Config) (*App, error) {
	if cfg.Library == nil {
		return nil, errors.New("app: library is required")
	}
	if cfg.Location == nil {
		cfg.Location = route.NewHistory("")
	}

	a := &App{
		cfg:       cfg,
		logger:    cfg.Logger.With().Str("component", "app").Logger(),
		Items:     results.NewStore[beets.Item](),
		Albums:    results.NewStore[beets.Album](),
		Selection: view.NewSelection(),
		mode:      cfg.Mode,
	}

	router, err := route.New(route.Config{
		Searcher:  searcher{cfg.Library},
		Store:     a.Items,
		Location:  cfg.Location,
		Loop:      cfg.Loop,
		Logger:    cfg.Logger,
		OnError:   a.queryFailed,
		OnResults: a.queryApplied,
	})
	if err != nil {
		return nil, err
	}
	a.Router = router

	ctrl, err := playback.New(playback.Config{
		Transport:     cfg.Transport,
		Store:         a.Items,
		Marker:        a.Selection,
		URLFor:        cfg.Library.FileURL,
		Logger:        cfg.Logger,
		OnError:       a.playbackFailed,
		OnTrackChange: a.trackChanged,
		OnProgress:    a.progressed,
		OnStateChange: func(playback.State) { a.changed() },
	})
	if err != nil {
		return nil, err
	}
	a.Controller = ctrl

	loader, err := lazyimage.New(lazyimage.Config{
		Fetch: func(ctx context.Context, src string) (string, error) {
			return cfg.Library.Art(ctx, beets.ID(src))
		},
		Loop:   cfg.Loop,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	a.Loader = loader

	a.Items.Subscribe(func(c results.Change) {
		if a.mode == view.ModeList {
			a.Selection.Apply(c)
		}
		a.changed()
	})
	a.Albums.Subscribe(func(c results.Change) {
		if a.mode == view.ModeGrid {
			a.Selection.Apply(c)
		}
		a.changed()
	})

	return a, nil
}

// searcher narrows Library to route.Searcher.
type searcher struct {
	lib Library
}

func (s searcher) Query(ctx context.Context, query string) ([]beets.Item, error) {
	return s.lib.Query(ctx, query)
}

// Start issues the search for the current location.
func (a *App) Start() {
	a.Router.Start()
}

// Search navigates to query.
func (a *App) Search(query string) {
	if a.mode != view.ModeList {
		a.SetMode(view.ModeList)
	}
	a.Router.Navigate(query)
}

// Mode returns the results layout.
func (a *App) Mode() view.Mode {
	return a.mode
}

// SetMode switches layouts. The result sets and the playback pointer are
// kept; only the selection is reset.
func (a *App) SetMode(m view.Mode) {
	if a.mode == m {
		return
	}
	a.mode = m
	a.Selection.Select(-1)
	a.changed()
}

// Select selects entry i of the active layout.
func (a *App) Select(i int) {
	if i >= a.size() {
		return
	}
	if a.Selection.Select(i) {
		a.changed()
	}
}

// Activate handles a single activation of entry i. Activating the selected
// entry again plays it.
func (a *App) Activate(i int) error {
	if i < 0 || i >= a.size() {
		return nil
	}
	switch a.Selection.Activate(i) {
	case view.ActionPlay:
		return a.PlaySelected()
	case view.ActionSelect:
		a.changed()
	}
	return nil
}

// PlaySelected plays the selected item. In grid mode it searches for the
// selected album instead.
func (a *App) PlaySelected() error {
	idx := a.Selection.Selected()
	if idx < 0 {
		return nil
	}

	if a.mode == view.ModeGrid {
		album, ok := a.Albums.At(idx)
		if !ok {
			return nil
		}
		a.Search(albumQuery(album))
		return nil
	}

	item, ok := a.Items.At(idx)
	if !ok {
		return nil
	}
	return a.Controller.Play(item)
}

// PlayID plays the listed item with id, as the detail pane's play
// affordance does.
func (a *App) PlayID(id beets.ID) error {
	item, ok := a.Items.At(a.Items.IndexOf(id))
	if !ok {
		return nil
	}
	return a.Controller.Play(item)
}

// Toggle pauses or resumes playback.
func (a *App) Toggle() error {
	return a.Controller.Toggle()
}

// SelectedItem returns the selected item in list mode.
func (a *App) SelectedItem() (beets.Item, bool) {
	if a.mode != view.ModeList {
		return beets.Item{}, false
	}
	return a.Items.At(a.Selection.Selected())
}

// BrowseAlbums loads a random album selection and switches to the grid.
// On failure the album store is left as it was.
func (a *App) BrowseAlbums(ctx context.Context) {
	a.albumGen++
	gen := a.albumGen
	a.SetMode(view.ModeGrid)

	go func() {
		albums, err := a.cfg.Library.RandomAlbums(ctx)
		a.cfg.Loop.Post(func() {
			if gen != a.albumGen {
				return
			}
			if err != nil {
				a.logger.Warn().Err(err).Msg("Failed to load albums")
				a.fail(fmt.Errorf("load albums: %w", err))
				return
			}
			a.Albums.SetAll(albums)
			a.setStatus(fmt.Sprintf("%d albums", len(albums)))
		})
	}()
}

// Status returns the status line.
func (a *App) Status() string {
	return a.status
}

// Close cancels in-flight work.
func (a *App) Close() {
	a.Router.Close()
	a.Loader.Close()
}

func (a *App) size() int {
	if a.mode == view.ModeGrid {
		return a.Albums.Size()
	}
	return a.Items.Size()
}

func (a *App) queryApplied(query string, count int) {
	if query == "" {
		a.setStatus(fmt.Sprintf("%d results", count))
		return
	}
	a.setStatus(fmt.Sprintf("%d results for %q", count, query))
}

func (a *App) queryFailed(query string, err error) {
	a.fail(fmt.Errorf("search %q: %w", query, err))
}

func (a *App) playbackFailed(item beets.Item, err error) {
	if a.cfg.Tracker != nil {
		a.cfg.Tracker.Failed(err)
	}
	a.fail(fmt.Errorf("play %q: %w", item.Title, err))
}

func (a *App) trackChanged(item beets.Item) {
	if a.cfg.Tracker != nil {
		a.cfg.Tracker.TrackStarted(item)
	}
	a.setStatus("Playing " + item.Title)
}

func (a *App) progressed(_ beets.Item, p playback.Progress) {
	if a.cfg.Tracker != nil {
		a.cfg.Tracker.Progress(p.Position, p.Duration)
	}
	a.changed()
}

func (a *App) fail(err error) {
	a.status = err.Error()
	if a.cfg.OnError != nil {
		a.cfg.OnError(err)
	}
	a.changed()
}

func (a *App) setStatus(s string) {
	a.status = s
	a.changed()
}

func (a *App) changed() {
	if a.cfg.OnChange != nil {
		a.cfg.OnChange()
	}
}

func albumQuery(album beets.Album) string {
	q := "album:" + album.Album
	if album.AlbumArtist != "" {
		q += " albumartist:" + album.AlbumArtist
	}
	return q
}
