// Package lazyimage defers cover art fetches until a tile becomes visible.
package lazyimage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/loop"
)

// Element is a placeholder waiting for an image.
//
// Implementations must be comparable; pointer types are the usual choice.
type Element interface {
	SetSource(dataURI string)
}

// FetchFunc returns the base64 image payload identified by src.
type FetchFunc func(ctx context.Context, src string) (string, error)

// Config wires a Loader.
type Config struct {
	Fetch  FetchFunc
	Loop   loop.Loop
	Logger zerolog.Logger
}

// Loader tracks observed elements and fetches each one at most once.
//
// Observe, Unobserve and Intersect must be called on the loop. Fetches run
// on their own goroutines and apply results back on the loop.
type Loader struct {
	cfg      Config
	logger   zerolog.Logger
	observed map[Element]string
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a Loader.
func New(cfg Config) (*Loader, error) {
	if cfg.Fetch == nil {
		return nil, errors.New("lazyimage: fetch is required")
	}
	if cfg.Loop == nil {
		return nil, errors.New("lazyimage: loop is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		cfg:      cfg,
		logger:   cfg.Logger.With().Str("component", "lazyimage").Logger(),
		observed: make(map[Element]string),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Observe registers el for src. It returns false, and changes nothing, if
// el is already observed.
func (l *Loader) Observe(el Element, src string) bool {
	if _, ok := l.observed[el]; ok {
		return false
	}
	l.observed[el] = src
	return true
}

// Unobserve stops watching el, typically at teardown. It reports whether
// el was being observed.
func (l *Loader) Unobserve(el Element) bool {
	if _, ok := l.observed[el]; !ok {
		return false
	}
	delete(l.observed, el)
	return true
}

// Observed reports whether el is waiting for its first intersection.
func (l *Loader) Observed(el Element) bool {
	_, ok := l.observed[el]
	return ok
}

// Len returns the number of observed elements.
func (l *Loader) Len() int {
	return len(l.observed)
}

// Intersect reports that el overlaps the viewport by ratio. The first
// non-zero intersection of an observed element stops observing it and
// starts its only fetch.
func (l *Loader) Intersect(el Element, ratio float64) {
	if ratio <= 0 {
		return
	}
	src, ok := l.observed[el]
	if !ok {
		return
	}
	delete(l.observed, el)

	go func() {
		payload, err := l.cfg.Fetch(l.ctx, src)
		l.cfg.Loop.Post(func() {
			if err != nil {
				l.logger.Warn().Err(err).Str("src", src).Msg("Failed to fetch image")
				return
			}
			el.SetSource(DataURI(payload))
		})
	}()
}

// Close cancels in-flight fetches.
func (l *Loader) Close() {
	l.cancel()
}
