package history

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/beetle/pkg/beets"
)

// Tracker turns playback notifications into history rows.
//
// TrackStarted, Progress and Failed are called from the event loop and
// never block on the database; writes are applied in order by a single
// background worker.
type Tracker struct {
	store  *Store
	logger zerolog.Logger

	jobs chan func(ctx context.Context)
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool // jobs is closed; guarded by mu

	// Loop-side state for the current play
	item     beets.Item
	duration time.Duration
	played   time.Duration
	counted  bool
	active   bool

	// Worker-side id of the current play row
	currentID int64
}

// NewTracker starts a tracker writing to store.
func NewTracker(store *Store, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		store:  store,
		logger: logger.With().Str("component", "history").Logger(),
		jobs:   make(chan func(ctx context.Context), 64),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// TrackStarted records a new play of item.
func (t *Tracker) TrackStarted(item beets.Item) {
	t.item = item
	t.duration = time.Duration(item.Length * float64(time.Second))
	t.played = 0
	t.counted = false
	t.active = true

	play := Play{
		ItemID:    item.ID.String(),
		Title:     item.Title,
		Artist:    item.Artist,
		Album:     item.Album,
		Duration:  t.duration,
		StartedAt: time.Now(),
	}
	t.enqueue(func(ctx context.Context) {
		id, err := t.store.Record(ctx, play)
		if err != nil {
			t.logger.Error().Err(err).Msg("Failed to record play")
			t.currentID = 0
			return
		}
		t.currentID = id
	})
}

// Progress updates how far the current play got and marks it completed
// once it counts as listened.
func (t *Tracker) Progress(position, duration time.Duration) {
	if !t.active {
		return
	}
	if duration > 0 {
		t.duration = duration
	}
	if position > t.played {
		t.played = position
	}
	if t.counted || !Counts(t.duration, t.played) {
		return
	}

	t.counted = true
	played := t.played
	t.logger.Info().
		Str("title", t.item.Title).
		Str("artist", t.item.Artist).
		Dur("played", played).
		Msg("Play counted")
	t.enqueue(func(ctx context.Context) {
		if t.currentID == 0 {
			return
		}
		if err := t.store.MarkCompleted(ctx, t.currentID, played); err != nil {
			t.logger.Error().Err(err).Msg("Failed to mark play completed")
		}
	})
}

// Failed records a playback error against the current play.
func (t *Tracker) Failed(err error) {
	if !t.active || err == nil {
		return
	}
	t.active = false
	msg := err.Error()
	t.enqueue(func(ctx context.Context) {
		if t.currentID == 0 {
			return
		}
		if err := t.store.MarkError(ctx, t.currentID, msg); err != nil {
			t.logger.Error().Err(err).Msg("Failed to mark play error")
		}
	})
}

// Close waits for pending writes to finish.
func (t *Tracker) Close() {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.jobs)
		t.mu.Unlock()
		t.wg.Wait()
	})
}

// enqueue hands job to the writer. Updates after Close are dropped.
func (t *Tracker) enqueue(job func(ctx context.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		t.logger.Debug().Msg("History closed, dropping update")
		return
	}
	select {
	case t.jobs <- job:
	default:
		t.logger.Warn().Msg("History writer is behind, dropping update")
	}
}

func (t *Tracker) run() {
	defer t.wg.Done()
	for job := range t.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		job(ctx)
		cancel()
	}
}
