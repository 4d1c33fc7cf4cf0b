package view

import (
	"fmt"
	"strings"

	"github.com/jfmyers9/beetle/internal/results"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// Mode is the results layout.
type Mode int

const (
	ModeList Mode = iota
	ModeGrid
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// ParseMode parses "list" or "grid".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "list", "":
		return ModeList, nil
	case "grid":
		return ModeGrid, nil
	default:
		return ModeList, fmt.Errorf("unknown view mode %q", s)
	}
}

// Action is what an activation asks for.
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionPlay
)

// Selection holds the selected index and the playing indicator.
//
// At most one entry is selected and at most one id shows as playing; the
// two are independent.
type Selection struct {
	selected   int
	playing    beets.ID
	hasPlaying bool
}

// NewSelection returns a selection with nothing selected.
func NewSelection() *Selection {
	return &Selection{selected: -1}
}

// Selected returns the selected index, or -1.
func (s *Selection) Selected() int {
	if s == nil {
		return -1
	}
	return s.selected
}

// Select selects index i; a negative i clears the selection. It reports
// whether the selection changed.
func (s *Selection) Select(i int) bool {
	if i < 0 {
		i = -1
	}
	if s.selected == i {
		return false
	}
	s.selected = i
	return true
}

// Activate handles a single activation of entry i. Activating the entry
// that is already selected is a double activation and asks for playback.
func (s *Selection) Activate(i int) Action {
	if i < 0 {
		return ActionNone
	}
	if s.selected == i {
		return ActionPlay
	}
	s.selected = i
	return ActionSelect
}

// SetPlaying implements playback.Marker.
func (s *Selection) SetPlaying(id beets.ID, on bool) {
	switch {
	case on:
		s.playing = id
		s.hasPlaying = true
	case s.hasPlaying && s.playing == id:
		s.hasPlaying = false
		s.playing = ""
	}
}

// IsPlaying reports whether id shows the playing indicator.
func (s *Selection) IsPlaying(id beets.ID) bool {
	if s == nil {
		return false
	}
	return s.hasPlaying && s.playing == id
}

// Playing returns the id showing the indicator.
func (s *Selection) Playing() (beets.ID, bool) {
	return s.playing, s.hasPlaying
}

// Apply keeps the selected index aligned with a store change.
func (s *Selection) Apply(c results.Change) {
	switch c.Kind {
	case results.Reset:
		s.selected = -1
	case results.Removed:
		switch {
		case s.selected == c.Index:
			s.selected = -1
		case s.selected > c.Index:
			s.selected--
		}
	}
}
