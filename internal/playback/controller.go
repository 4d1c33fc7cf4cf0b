// Package playback owns the "now playing" pointer and drives the transport.
package playback

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/results"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// ErrNoTransport is returned by New when no transport is configured.
var ErrNoTransport = errors.New("playback: transport is required")

// Config wires a Controller to its collaborators.
type Config struct {
	Transport Transport
	Store     *results.Store[beets.Item]
	Marker    Marker
	URLFor    func(id beets.ID) string
	Logger    zerolog.Logger

	// OnError is called when the transport reports a failure or a load fails.
	OnError func(item beets.Item, err error)

	// OnTrackChange is called after a new source was loaded.
	OnTrackChange func(item beets.Item)

	// OnProgress is called for every progress event of the current source.
	OnProgress func(item beets.Item, p Progress)

	// OnStateChange is called whenever State changes.
	OnStateChange func(s State)
}

// Controller is the only writer of the transport.
//
// A play captures the result set active at that moment; auto-advance walks
// that set even after the store moves on to newer results. Controller is
// not safe for concurrent use; it runs on the event loop.
type Controller struct {
	cfg    Config
	logger zerolog.Logger

	state    State
	set      *results.Set[beets.Item]
	current  beets.Item
	loaded   bool
	progress Progress

	marked   beets.ID
	isMarked bool

	generation  uint64
	unsubscribe func()
}

// New creates a Controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}
	if cfg.Store == nil {
		return nil, errors.New("playback: store is required")
	}
	if cfg.URLFor == nil {
		return nil, errors.New("playback: URLFor is required")
	}
	if cfg.Marker == nil {
		cfg.Marker = MarkerFunc(func(beets.ID, bool) {})
	}

	return &Controller{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "playback").Logger(),
		state:  Idle,
	}, nil
}

// Play loads item and makes the store's current set the playback queue.
func (c *Controller) Play(item beets.Item) error {
	return c.play(item, c.cfg.Store.Current())
}

// Toggle pauses while playing and resumes while paused. When idle with a
// pointer in place it replays the current item.
func (c *Controller) Toggle() error {
	switch c.state {
	case Playing:
		return c.cfg.Transport.Pause()
	case Paused:
		return c.cfg.Transport.Resume()
	default:
		if !c.loaded {
			return nil
		}
		return c.play(c.current, c.set)
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the item under the playback pointer.
func (c *Controller) Current() (beets.Item, bool) {
	return c.current, c.loaded
}

// CurrentIndex returns the pointer's position in the queue, or -1 when the
// item is no longer part of it.
func (c *Controller) CurrentIndex() int {
	if !c.loaded {
		return -1
	}
	return c.set.IndexOf(c.current.ID)
}

// Queue returns the set playback walks on auto-advance.
func (c *Controller) Queue() *results.Set[beets.Item] {
	return c.set
}

// Progress returns the last reported progress of the current source.
func (c *Controller) Progress() Progress {
	return c.progress
}

func (c *Controller) play(item beets.Item, set *results.Set[beets.Item]) error {
	// Clear the previous indicator before anything can set the next one.
	c.mark(c.current.ID, false)

	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.generation++
	gen := c.generation
	c.unsubscribe = c.cfg.Transport.Subscribe(func(ev Event) {
		c.handle(gen, ev)
	})

	c.set = set
	c.current = item
	c.loaded = true
	c.progress = Progress{}

	src := c.cfg.URLFor(item.ID)
	c.logger.Info().
		Str("id", item.ID.String()).
		Str("artist", item.Artist).
		Str("title", item.Title).
		Msg("Loading track")

	if err := c.cfg.Transport.Load(src); err != nil {
		c.setState(Idle)
		err = fmt.Errorf("load %s: %w", item.ID, err)
		c.logger.Error().Err(err).Msg("Failed to load track")
		if c.cfg.OnError != nil {
			c.cfg.OnError(item, err)
		}
		return err
	}

	c.setState(Playing)
	if c.cfg.OnTrackChange != nil {
		c.cfg.OnTrackChange(item)
	}
	return nil
}

func (c *Controller) handle(gen uint64, ev Event) {
	if gen != c.generation {
		c.logger.Debug().Str("event", ev.Kind.String()).Msg("Ignoring event from replaced source")
		return
	}

	switch ev.Kind {
	case EventPlay:
		c.setState(Playing)
		c.mark(c.current.ID, true)
	case EventPause:
		c.setState(Paused)
		c.mark(c.current.ID, false)
	case EventProgress:
		c.progress = ev.Progress
		if c.cfg.OnProgress != nil {
			c.cfg.OnProgress(c.current, ev.Progress)
		}
	case EventEnded:
		c.mark(c.current.ID, false)
		c.advance()
	case EventError:
		c.mark(c.current.ID, false)
		c.setState(Idle)
		err := ev.Err
		if err == nil {
			err = errors.New("playback failed")
		}
		c.logger.Warn().Err(err).Str("id", c.current.ID.String()).Msg("Transport error")
		if c.cfg.OnError != nil {
			c.cfg.OnError(c.current, err)
		}
	}
}

// advance plays the next item of the captured set or goes idle.
func (c *Controller) advance() {
	idx := c.set.IndexOf(c.current.ID)
	if idx >= 0 {
		if next, ok := c.set.At(idx + 1); ok {
			c.logger.Debug().Int("index", idx+1).Msg("Advancing to next track")
			_ = c.play(next, c.set)
			return
		}
	}

	c.logger.Info().Str("id", c.current.ID.String()).Msg("End of queue")
	c.setState(Idle)
}

func (c *Controller) mark(id beets.ID, on bool) {
	if on {
		if c.isMarked && c.marked == id {
			return
		}
		if c.isMarked {
			c.cfg.Marker.SetPlaying(c.marked, false)
		}
		c.marked = id
		c.isMarked = true
		c.cfg.Marker.SetPlaying(id, true)
		return
	}

	if !c.isMarked {
		return
	}
	c.cfg.Marker.SetPlaying(c.marked, false)
	c.isMarked = false
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug().Str("from", c.state.String()).Str("to", s.String()).Msg("State change")
	c.state = s
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}
