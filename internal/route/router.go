package route

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/internal/loop"
	"github.com/jfmyers9/beetle/internal/results"
	"github.com/jfmyers9/beetle/pkg/beets"
)

// Searcher answers free-text queries. *beets.ItemService satisfies it.
type Searcher interface {
	Query(ctx context.Context, query string) ([]beets.Item, error)
}

// Config wires a Router to its collaborators.
type Config struct {
	Searcher Searcher
	Store    *results.Store[beets.Item]
	Location Location
	Loop     loop.Loop
	Logger   zerolog.Logger

	// OnError is called on the loop when a search fails. The store is
	// left as it was.
	OnError func(query string, err error)

	// OnResults is called on the loop after a response replaces the store.
	OnResults func(query string, count int)
}

// Router turns location changes into searches.
//
// Each change issues exactly one search tagged with a generation. Only the
// response for the newest generation may replace the store; older ones are
// dropped.
type Router struct {
	cfg    Config
	logger zerolog.Logger

	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a Router and subscribes it to location changes.
func New(cfg Config) (*Router, error) {
	if cfg.Searcher == nil {
		return nil, errors.New("route: searcher is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("route: store is required")
	}
	if cfg.Location == nil {
		return nil, errors.New("route: location is required")
	}
	if cfg.Loop == nil {
		return nil, errors.New("route: loop is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "router").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
	cfg.Location.OnChange(r.handle)
	return r, nil
}

// Navigate records query in the location. The search itself runs from the
// resulting change notification.
func (r *Router) Navigate(query string) {
	r.cfg.Location.Push(Encode(query))
}

// Start searches for whatever the location currently holds.
func (r *Router) Start() {
	r.handle(r.cfg.Location.Fragment())
}

// Query returns the query text of the current location.
func (r *Router) Query() string {
	return Decode(r.cfg.Location.Fragment())
}

// Generation returns the generation of the most recently issued search.
func (r *Router) Generation() uint64 {
	return r.generation
}

// Close cancels in-flight searches. Their completions are discarded.
func (r *Router) Close() {
	r.cancel()
}

func (r *Router) handle(fragment string) {
	r.generation++
	gen := r.generation
	query := Decode(fragment)

	r.logger.Debug().Uint64("generation", gen).Str("query", query).Msg("Issuing search")

	go func() {
		items, err := r.cfg.Searcher.Query(r.ctx, query)
		r.cfg.Loop.Post(func() {
			r.complete(gen, query, items, err)
		})
	}()
}

func (r *Router) complete(gen uint64, query string, items []beets.Item, err error) {
	if gen != r.generation {
		r.logger.Debug().
			Uint64("generation", gen).
			Uint64("latest", r.generation).
			Str("query", query).
			Msg("Discarding stale search response")
		return
	}
	if r.ctx.Err() != nil {
		return
	}

	if err != nil {
		r.logger.Warn().Err(err).Str("query", query).Msg("Search failed")
		if r.cfg.OnError != nil {
			r.cfg.OnError(query, err)
		}
		return
	}

	r.cfg.Store.SetAll(items)
	r.logger.Debug().Str("query", query).Int("count", len(items)).Msg("Search results applied")
	if r.cfg.OnResults != nil {
		r.cfg.OnResults(query, len(items))
	}
}
