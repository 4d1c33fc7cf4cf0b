package view

import (
	"github.com/jfmyers9/beetle/internal/playback"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// ItemRow is one list entry.
type ItemRow struct {
	ID       beets.ID
	Title    string
	Artist   string
	Album    string
	Length   string
	Selected bool
	Playing  bool
}

// AlbumTile is one grid entry.
type AlbumTile struct {
	ID          beets.ID
	Album       string
	AlbumArtist string
	HasArt      bool
	Selected    bool
}

// Field is one labelled value in the detail pane.
type Field struct {
	Name  string
	Label string
	Value string
}

// DetailModel describes the selected item.
type DetailModel struct {
	ID      beets.ID
	Empty   bool
	Playing bool
	Fields  []Field
}

// TransportModel describes the transport controls.
type TransportModel struct {
	State    playback.State
	Title    string
	Artist   string
	Elapsed  string
	Total    string
	Played   float64
	Buffered float64
}

// ItemRows projects items into rows using the selection's state.
func ItemRows(items []beets.Item, sel *Selection) []ItemRow {
	rows := make([]ItemRow, len(items))
	for i, item := range items {
		rows[i] = ItemRow{
			ID:       item.ID,
			Title:    item.Title,
			Artist:   item.Artist,
			Album:    item.Album,
			Length:   FormatLength(item.Length),
			Selected: sel.Selected() == i,
			Playing:  sel.IsPlaying(item.ID),
		}
	}
	return rows
}

// AlbumTiles projects albums into grid tiles.
func AlbumTiles(albums []beets.Album, sel *Selection) []AlbumTile {
	tiles := make([]AlbumTile, len(albums))
	for i, a := range albums {
		tiles[i] = AlbumTile{
			ID:          a.ID,
			Album:       a.Album,
			AlbumArtist: a.AlbumArtist,
			HasArt:      a.HasArt(),
			Selected:    sel.Selected() == i,
		}
	}
	return tiles
}

// fixedFields are shown first, in this order.
var fixedFields = []string{"title", "artist", "album", "length"}

// Detail projects an item into the detail model. A nil item yields an
// empty model.
func Detail(item *beets.Item, playing bool) DetailModel {
	if item == nil {
		return DetailModel{Empty: true}
	}

	m := DetailModel{ID: item.ID, Playing: playing}
	fixed := map[string]string{
		"title":  item.Title,
		"artist": item.Artist,
		"album":  item.Album,
		"length": FormatLength(item.Length),
	}
	for _, name := range fixedFields {
		if v := fixed[name]; v != "" {
			m.Fields = append(m.Fields, Field{Name: name, Label: Label(name), Value: v})
		}
	}
	for _, name := range item.FieldNames() {
		v := FormatField(name, item.Fields[name])
		if v == "" {
			continue
		}
		m.Fields = append(m.Fields, Field{Name: name, Label: Label(name), Value: v})
	}
	return m
}

// Transport projects controller state into the transport model.
func Transport(state playback.State, item beets.Item, ok bool, p playback.Progress) TransportModel {
	m := TransportModel{State: state}
	if ok {
		m.Title = item.Title
		m.Artist = item.Artist
	}

	total := p.Duration
	if total <= 0 && ok && item.Length > 0 {
		total = secondsDuration(item.Length)
	}
	m.Elapsed = FormatClock(p.Position)
	m.Total = FormatClock(total)
	m.Played = Percent(p.Position.Seconds(), total.Seconds())
	m.Buffered = Percent(p.Buffered.Seconds(), total.Seconds())
	return m
}
