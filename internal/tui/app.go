package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/app"
	"github.com/jfmyers9/beetle/internal/lazyimage"
	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/results"
	"github.com/jfmyers9/beetle/internal/route"
	"github.com/jfmyers9/beetle/internal/view"
	"github.com/jfmyers9/beetle/pkg/beets"
)

const (
	tileHeight = 12
	pageList   = "list"
	pageGrid   = "grid"
)

// Config holds TUI configuration options
type Config struct {
	GridColumns int // Album tiles per grid row
	Logger      zerolog.Logger
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{GridColumns: 4, Logger: zerolog.Nop()}
}

// App is the terminal browser for a beets library.
//
// Every field is touched only from the tview event goroutine, which is also
// the loop the application context runs on.
type App struct {
	app       *tview.Application
	search    *tview.InputField
	pages     *tview.Pages
	list      *tview.Table
	grid      *tview.Grid
	detail    *tview.TextView
	transport *tview.TextView
	status    *tview.TextView

	config Config
	logger zerolog.Logger

	core    *app.App
	history *route.History
	ctx     context.Context

	// Tiles currently in the grid and the album set they were built from
	tiles    []*tile
	tileSet  *results.Set[beets.Album]
	tileSize int

	// Last-rendered content for change detection
	lastResults   string
	lastDetail    string
	lastTransport string
	lastStatus    string
	lastErr       string

	// Detail tree from the last refresh; its play button names the target
	detailNode *view.Node

	// Cached transport width to stabilize change detection.
	// Updated only when GetInnerRect returns a positive value.
	lastBarWidth int

	cancelFunc context.CancelFunc
}

// tile is one album cell in the grid. It is the lazy loader's element.
type tile struct {
	id     beets.ID
	frame  *tview.Flex
	image  *tview.Image
	label  *tview.TextView
	logger zerolog.Logger
}

// SetSource decodes a data URI into the tile image.
func (t *tile) SetSource(uri string) {
	img, err := lazyimage.DecodeDataURI(uri)
	if err != nil {
		t.logger.Warn().Err(err).Str("album", t.id.String()).Msg("Failed to decode cover art")
		return
	}
	t.image.SetImage(img)
}

// New creates the TUI. Bind must be called before Run.
func New(cfg Config) *App {
	if cfg.GridColumns <= 0 {
		cfg.GridColumns = DefaultConfig().GridColumns
	}
	a := &App{
		app:    tview.NewApplication(),
		config: cfg,
		logger: cfg.Logger.With().Str("component", "tui").Logger(),
		ctx:    context.Background(),
	}
	a.setupUI()
	return a
}

// Loop returns the loop backed by the tview event goroutine.
func (a *App) Loop() loop.Loop {
	return loop.Func(func(fn func()) {
		a.app.QueueUpdateDraw(fn)
	})
}

// Bind attaches the application context and the history it navigates.
func (a *App) Bind(core *app.App, history *route.History) {
	a.core = core
	a.history = history
}

// Refresh redraws every pane whose content changed. It is the application
// context's change callback and runs on the loop.
func (a *App) Refresh() {
	if a.core == nil {
		return
	}

	views := a.core.Views(a.config.GridColumns)

	if s := views.Results.String(); s != a.lastResults {
		a.lastResults = s
		if views.Results.Kind == view.KindGrid {
			a.renderGrid(views.Results)
			a.pages.SwitchToPage(pageGrid)
		} else {
			a.renderList(views.Results)
			a.pages.SwitchToPage(pageList)
		}
	}

	a.detailNode = views.Detail
	if s := detailText(views.Detail); s != a.lastDetail {
		a.lastDetail = s
		a.detail.SetText(s)
		a.detail.ScrollToBeginning()
	}

	_, _, width, _ := a.transport.GetInnerRect()
	if width > 0 {
		a.lastBarWidth = width
	}
	if s := transportText(views.Transport, a.lastBarWidth); s != a.lastTransport {
		a.lastTransport = s
		a.transport.SetText(s)
	}

	a.renderStatus()
}

// ShowError puts err on the status line until the next status change.
func (a *App) ShowError(err error) {
	a.lastErr = err.Error()
	a.logger.Warn().Err(err).Msg("Request failed")
	a.renderStatus()
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.search = tview.NewInputField().
		SetLabel(" / ").
		SetFieldWidth(0)
	a.search.SetDoneFunc(a.handleSearchDone)

	// Results list
	a.list = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.list.SetBorder(true).
		SetTitle(" Results ").
		SetTitleAlign(tview.AlignLeft)
	a.list.SetSelectionChangedFunc(func(row, _ int) {
		if a.core != nil && row > 0 {
			a.core.Select(row - 1)
		}
	})
	a.list.SetSelectedFunc(func(row, _ int) {
		if a.core != nil && row > 0 {
			a.report(a.core.Activate(row - 1))
		}
	})

	// Album grid
	a.grid = tview.NewGrid()
	a.grid.SetBorder(true).
		SetTitle(" Albums ").
		SetTitleAlign(tview.AlignLeft)

	a.pages = tview.NewPages().
		AddPage(pageList, a.list, true, true).
		AddPage(pageGrid, a.grid, true, false)

	// Detail pane
	a.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.detail.SetBorder(true).
		SetTitle(" Detail ").
		SetTitleAlign(tview.AlignLeft)

	// Transport bar
	a.transport = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.transport.SetBorder(true)

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	body := tview.NewFlex().
		AddItem(a.pages, 0, 3, true).
		AddItem(a.detail, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.search, 1, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(a.transport, 3, 0, false).
		AddItem(a.status, 1, 0, false)

	a.app.SetRoot(root, true).SetFocus(a.list)
	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetAfterDrawFunc(func(tcell.Screen) { a.intersectTiles() })
}

// renderList rebuilds the results table from a list tree.
func (a *App) renderList(n *view.Node) {
	a.list.Clear()
	for col, name := range []string{"Title", "Artist", "Album", "Length"} {
		a.list.SetCell(0, col, tview.NewTableCell(name).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	selected := 0
	for _, row := range n.Children {
		if row.Kind == view.KindEmpty {
			a.list.SetCell(1, 0, tview.NewTableCell("[gray]"+row.Text+"[-]").SetSelectable(false))
			break
		}
		i, _ := strconv.Atoi(row.Attr("index"))
		r := i + 1

		color := tcell.ColorWhite
		marker := "  "
		if row.Playing {
			color = tcell.ColorGreen
			marker = "▶ "
		}
		title := row.Find(view.KindText, "title")
		a.list.SetCell(r, 0, tview.NewTableCell(marker+tview.Escape(text(title))).
			SetTextColor(color).SetExpansion(3))
		a.list.SetCell(r, 1, tview.NewTableCell(tview.Escape(text(row.Find(view.KindText, "artist")))).
			SetTextColor(color).SetExpansion(2))
		a.list.SetCell(r, 2, tview.NewTableCell(tview.Escape(text(row.Find(view.KindText, "album")))).
			SetTextColor(color).SetExpansion(2))
		a.list.SetCell(r, 3, tview.NewTableCell(text(row.Find(view.KindText, "length"))).
			SetTextColor(color).SetAlign(tview.AlignRight))

		if row.Selected {
			selected = r
		}
	}

	if selected > 0 {
		a.list.Select(selected, 0)
	} else {
		a.list.ScrollToBeginning()
	}
}

// renderGrid updates the album grid. Tiles are rebuilt only when the album
// set changes, so images already loaded are kept across selection changes.
func (a *App) renderGrid(n *view.Node) {
	set := a.core.Albums.Current()
	if set != a.tileSet || set.Size() != a.tileSize || len(a.tiles) == 0 {
		a.rebuildTiles(n)
		a.tileSet = set
		a.tileSize = set.Size()
	}

	for i, child := range n.Children {
		if child.Kind != view.KindTile || i >= len(a.tiles) {
			continue
		}
		t := a.tiles[i]
		color := tcell.ColorGray
		if child.Selected {
			color = tcell.ColorGreen
		}
		t.frame.SetBorderColor(color)
		t.label.SetText(tileLabel(child))
	}
}

func (a *App) rebuildTiles(n *view.Node) {
	for _, t := range a.tiles {
		a.core.Loader.Unobserve(t)
	}
	a.tiles = nil
	a.grid.Clear()

	columns := make([]int, a.config.GridColumns)
	a.grid.SetColumns(columns...)

	if len(n.Children) == 1 && n.Children[0].Kind == view.KindEmpty {
		a.grid.SetRows(0)
		a.grid.AddItem(tview.NewTextView().SetText(n.Children[0].Text), 0, 0, 1, a.config.GridColumns, 0, 0, false)
		return
	}

	rows := (len(n.Children) + a.config.GridColumns - 1) / a.config.GridColumns
	heights := make([]int, rows)
	for i := range heights {
		heights[i] = tileHeight
	}
	a.grid.SetRows(heights...)

	for _, child := range n.Children {
		t := &tile{
			id:     beets.ID(child.Key),
			image:  tview.NewImage(),
			label:  tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
			logger: a.logger,
		}
		t.frame = tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(t.image, 0, 1, false).
			AddItem(t.label, 2, 0, false)
		t.frame.SetBorder(true)

		row, _ := strconv.Atoi(child.Attr("row"))
		col, _ := strconv.Atoi(child.Attr("column"))
		a.grid.AddItem(t.frame, row, col, 1, 1, 0, 0, false)

		if img := child.Find(view.KindImage, child.Key); img != nil && img.Attr("lazy") == "true" {
			a.core.Loader.Observe(t, child.Key)
		}
		a.tiles = append(a.tiles, t)
	}
	a.grid.SetOffset(0, 0)
}

// intersectTiles reports how much of each observed tile is on screen.
// Positions come from the grid's row offset rather than the tiles' own
// rects, which tview leaves stale for rows it did not draw.
func (a *App) intersectTiles() {
	if a.core == nil || a.core.Mode() != view.ModeGrid || len(a.tiles) == 0 {
		return
	}
	vx, vy, vw, vh := a.grid.GetInnerRect()
	offset, _ := a.grid.GetOffset()
	for i, t := range a.tiles {
		if !a.core.Loader.Observed(t) {
			continue
		}
		tx, ty, tw, th := tileRect(i, a.config.GridColumns, offset, vx, vy, vw)
		a.core.Loader.Intersect(t, intersectionRatio(tx, ty, tw, th, vx, vy, vw, vh))
	}
}

// syncSearch shows the query the current route holds.
func (a *App) syncSearch() {
	a.search.SetText(route.Decode(a.history.Fragment()))
}

func tileLabel(n *view.Node) string {
	album := tview.Escape(text(n.Find(view.KindText, "album")))
	artist := tview.Escape(text(n.Find(view.KindText, "albumartist")))
	return fmt.Sprintf("%s\n[gray]%s[-]", album, artist)
}

func (a *App) renderStatus() {
	var s string
	if a.lastErr != "" {
		s = "[red]" + tview.Escape(a.lastErr) + "[-]  "
	} else if a.core != nil && a.core.Status() != "" {
		s = tview.Escape(a.core.Status()) + "  "
	}
	s += "[gray]/:search  enter:play  space:pause  g:grid  r:shuffle  [:back  ]:forward  q:quit[-]"
	if s != a.lastStatus {
		a.lastStatus = s
		a.status.SetText(s)
	}
}

func (a *App) handleSearchDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		a.lastErr = ""
		a.core.Search(a.search.GetText())
	case tcell.KeyEscape:
		a.syncSearch()
	}
	a.app.SetFocus(a.pages)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if a.core == nil || a.app.GetFocus() == a.search {
		return event
	}

	if a.core.Mode() == view.ModeGrid {
		if handled := a.handleGridKey(event); handled {
			return nil
		}
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case '/':
		a.app.SetFocus(a.search)
		return nil
	case ' ':
		a.report(a.core.Toggle())
		return nil
	case 'p', 'P':
		a.report(a.playDetail())
		return nil
	case 'g', 'G':
		if a.core.Mode() == view.ModeGrid {
			a.core.SetMode(view.ModeList)
		} else if a.core.Albums.Size() == 0 {
			a.core.BrowseAlbums(a.ctx)
		} else {
			a.core.SetMode(view.ModeGrid)
		}
		return nil
	case 'r', 'R':
		a.core.BrowseAlbums(a.ctx)
		return nil
	case '[':
		if a.history.Back() {
			a.syncSearch()
		}
		return nil
	case ']':
		if a.history.Forward() {
			a.syncSearch()
		}
		return nil
	}

	return event
}

// handleGridKey moves the grid selection. Arrow keys and enter are the only
// keys the grid consumes.
func (a *App) handleGridKey(event *tcell.EventKey) bool {
	cols := a.config.GridColumns
	sel := a.core.Selection.Selected()
	size := a.core.Albums.Size()
	if size == 0 {
		return false
	}

	next := sel
	switch event.Key() {
	case tcell.KeyLeft:
		next = sel - 1
	case tcell.KeyRight:
		next = sel + 1
	case tcell.KeyUp:
		next = sel - cols
	case tcell.KeyDown:
		next = sel + cols
	case tcell.KeyEnter:
		if sel < 0 {
			sel = 0
		}
		a.report(a.core.Activate(sel))
		a.syncSearch()
		return true
	default:
		return false
	}

	if sel < 0 {
		next = 0
	}
	if next < 0 || next >= size {
		return true
	}
	a.core.Select(next)
	a.scrollToTile(next)
	return true
}

// scrollToTile keeps the row holding tile i inside the grid viewport.
func (a *App) scrollToTile(i int) {
	_, _, _, h := a.grid.GetInnerRect()
	visible := h / tileHeight
	if visible < 1 {
		visible = 1
	}
	row := i / a.config.GridColumns
	offset, _ := a.grid.GetOffset()
	switch {
	case row < offset:
		a.grid.SetOffset(row, 0)
	case row >= offset+visible:
		a.grid.SetOffset(row-visible+1, 0)
	}
}

// playDetail presses the detail pane's play button. The grid has no
// detail button and plays the selected album instead.
func (a *App) playDetail() error {
	if a.core.Mode() == view.ModeGrid {
		return a.core.PlaySelected()
	}
	btn := a.detailNode.Find(view.KindButton, "play")
	if btn == nil {
		return nil
	}
	return a.core.PlayID(beets.ID(btn.Attr("target")))
}

func (a *App) report(err error) {
	if err != nil {
		a.ShowError(err)
	}
}

// Run starts the TUI application
func (a *App) Run(ctx context.Context) error {
	if a.core == nil {
		return fmt.Errorf("TUI error: no application bound")
	}

	ctx, cancel := context.WithCancel(ctx)
	a.ctx = ctx
	a.cancelFunc = cancel
	defer cancel()

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	a.syncSearch()
	a.core.Start()
	a.Refresh()

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}
