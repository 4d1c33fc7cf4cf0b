package playback

import "github.com/jfmyers9/beetle/pkg/beets"

// Transport is the single streaming audio element.
//
// Load retargets the element to a new source and starts it; it never
// creates a second element. Subscribe delivers events on the event loop
// until the returned function is called.
type Transport interface {
	Load(url string) error
	Resume() error
	Pause() error
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Marker shows or hides the "now playing" indicator for a record.
type Marker interface {
	SetPlaying(id beets.ID, on bool)
}

// MarkerFunc adapts a function to Marker.
type MarkerFunc func(id beets.ID, on bool)

// SetPlaying calls f(id, on).
func (f MarkerFunc) SetPlaying(id beets.ID, on bool) {
	f(id, on)
}
