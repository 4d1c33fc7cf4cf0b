// Package loop provides the cooperative event loop every component posts to.
//
// All state changes in beetle happen inside callbacks run one at a time on
// a Loop. Network fetches and transport events run elsewhere and hand their
// results back with Post; nothing touches shared state from another
// goroutine.
package loop

import (
	"context"
	"sync"
)

// Loop runs posted callbacks one at a time in the order they were posted.
type Loop interface {
	Post(fn func())
}

// Func adapts a posting function, such as tview's QueueUpdateDraw, to Loop.
type Func func(fn func())

// Post calls f(fn).
func (f Func) Post(fn func()) {
	f(fn)
}

// Serial is a goroutine-backed Loop for headless use.
//
// Callbacks posted before Run starts are buffered and run once it does.
type Serial struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// NewSerial creates a Serial loop.
func NewSerial() *Serial {
	return &Serial{wake: make(chan struct{}, 1)}
}

// Post queues fn. It never blocks.
func (s *Serial) Post(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run drains callbacks until ctx is cancelled.
func (s *Serial) Run(ctx context.Context) error {
	for {
		for {
			fn := s.next()
			if fn == nil {
				break
			}
			fn()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}

func (s *Serial) next() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	fn := s.pending[0]
	s.pending[0] = nil
	s.pending = s.pending[1:]
	return fn
}

// Queue is a manually driven Loop. Nothing runs until RunNext or RunAll is
// called, which lets callers interleave completions in a chosen order.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// Post queues fn.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len returns the number of queued callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RunNext runs the oldest queued callback and reports whether one ran.
func (q *Queue) RunNext() bool {
	q.mu.Lock()
	if len(q.pending) == 0 {
		q.mu.Unlock()
		return false
	}
	fn := q.pending[0]
	q.pending = q.pending[1:]
	q.mu.Unlock()

	fn()
	return true
}

// RunAll runs queued callbacks, including ones posted while running, until
// the queue is empty. It returns how many ran.
func (q *Queue) RunAll() int {
	n := 0
	for q.RunNext() {
		n++
	}
	return n
}
