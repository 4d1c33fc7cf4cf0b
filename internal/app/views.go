package app

import (
	"github.com/jfmyers9/beetle/internal/view"
)

// Views are the rendered trees for one frame.
type Views struct {
	Results   *view.Node
	Detail    *view.Node
	Transport *view.Node
}

// Views renders the current state. gridColumns applies in grid mode.
func (a *App) Views(gridColumns int) Views {
	var results *view.Node
	if a.mode == view.ModeGrid {
		results = view.RenderGrid(view.AlbumTiles(a.Albums.Current().All(), a.Selection), gridColumns)
	} else {
		results = view.RenderList(view.ItemRows(a.Items.Current().All(), a.Selection))
	}

	var detail view.DetailModel
	if item, ok := a.SelectedItem(); ok {
		detail = view.Detail(&item, a.Selection.IsPlaying(item.ID))
	} else {
		detail = view.Detail(nil, false)
	}

	cur, ok := a.Controller.Current()
	transport := view.Transport(a.Controller.State(), cur, ok, a.Controller.Progress())

	return Views{
		Results:   results,
		Detail:    view.RenderDetail(detail),
		Transport: view.RenderTransport(transport),
	}
}
