package view

import (
	"strconv"
	"time"

	"github.com/jfmyers9/beetle/internal/playback"
)

// RenderList renders rows as a list.
func RenderList(rows []ItemRow) *Node {
	root := &Node{Kind: KindList}
	if len(rows) == 0 {
		root.Children = []*Node{{Kind: KindEmpty, Text: "No results"}}
		return root
	}
	for i, r := range rows {
		root.Children = append(root.Children, &Node{
			Kind:     KindRow,
			Key:      r.ID.String(),
			Selected: r.Selected,
			Playing:  r.Playing,
			Attrs:    map[string]string{"index": strconv.Itoa(i)},
			Children: []*Node{
				{Kind: KindText, Key: "title", Text: r.Title},
				{Kind: KindText, Key: "artist", Text: r.Artist},
				{Kind: KindText, Key: "album", Text: r.Album},
				{Kind: KindText, Key: "length", Text: r.Length},
			},
		})
	}
	return root
}

// RenderGrid renders tiles as a grid with the given column count.
func RenderGrid(tiles []AlbumTile, columns int) *Node {
	if columns <= 0 {
		columns = 1
	}
	root := &Node{Kind: KindGrid, Attrs: map[string]string{"columns": strconv.Itoa(columns)}}
	if len(tiles) == 0 {
		root.Children = []*Node{{Kind: KindEmpty, Text: "No albums"}}
		return root
	}
	for i, t := range tiles {
		img := &Node{Kind: KindImage, Key: t.ID.String()}
		if t.HasArt {
			img.Attrs = map[string]string{"lazy": "true"}
		} else {
			img.Attrs = map[string]string{"placeholder": "true"}
		}
		root.Children = append(root.Children, &Node{
			Kind:     KindTile,
			Key:      t.ID.String(),
			Selected: t.Selected,
			Attrs: map[string]string{
				"row":    strconv.Itoa(i / columns),
				"column": strconv.Itoa(i % columns),
			},
			Children: []*Node{
				img,
				{Kind: KindText, Key: "album", Text: t.Album},
				{Kind: KindText, Key: "albumartist", Text: t.AlbumArtist},
			},
		})
	}
	return root
}

// RenderDetail renders the detail pane. Its content is rebuilt from the
// model on every call.
func RenderDetail(m DetailModel) *Node {
	root := &Node{Kind: KindDetail, Key: m.ID.String(), Playing: m.Playing}
	if m.Empty {
		root.Children = []*Node{{Kind: KindEmpty, Text: "Nothing selected"}}
		return root
	}
	for _, f := range m.Fields {
		root.Children = append(root.Children, &Node{
			Kind:     KindField,
			Key:      f.Name,
			Text:     f.Label,
			Children: []*Node{text(f.Value)},
		})
	}
	root.Children = append(root.Children, &Node{
		Kind:  KindButton,
		Key:   "play",
		Text:  "Play",
		Attrs: map[string]string{"target": m.ID.String()},
	})
	return root
}

// RenderTransport renders the transport controls.
func RenderTransport(m TransportModel) *Node {
	label := "Play"
	if m.State == playback.Playing {
		label = "Pause"
	}
	now := "Not playing"
	if m.Title != "" {
		now = m.Title
		if m.Artist != "" {
			now = m.Artist + " - " + m.Title
		}
	}
	return &Node{
		Kind:    KindTransport,
		Playing: m.State == playback.Playing,
		Attrs:   map[string]string{"state": m.State.String()},
		Children: []*Node{
			{Kind: KindButton, Key: "toggle", Text: label},
			{Kind: KindText, Key: "now", Text: now},
			{Kind: KindText, Key: "elapsed", Text: m.Elapsed},
			{Kind: KindText, Key: "total", Text: m.Total},
			{Kind: KindProgress, Key: "played", Value: m.Played, Text: percentText(m.Played)},
			{Kind: KindProgress, Key: "buffered", Value: m.Buffered, Text: percentText(m.Buffered)},
		},
	}
}

func percentText(v float64) string {
	return strconv.Itoa(int(v*100+0.5)) + "%"
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
