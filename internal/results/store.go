// Package results holds the ordered record set currently on display.
package results

import (
	"github.com/jfmyers9/beetle/pkg/beets"
)

// Record is anything the store can hold.
type Record interface {
	RecordID() beets.ID
}

// ChangeKind identifies what a Change describes.
type ChangeKind int

const (
	// Reset means the whole sequence was replaced.
	Reset ChangeKind = iota
	// Removed means a single record at Index was removed.
	Removed
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case Reset:
		return "reset"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after every mutation.
type Change struct {
	Kind  ChangeKind
	Index int // Removed only; -1 for Reset
}

// Set is one query's ordered records.
//
// A Set stays valid after the store moves on to a newer one, so playback
// can keep walking the set it started from.
type Set[T Record] struct {
	records []T
}

// Size returns the number of records.
func (s *Set[T]) Size() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the record at index i.
func (s *Set[T]) At(i int) (T, bool) {
	var zero T
	if s == nil || i < 0 || i >= len(s.records) {
		return zero, false
	}
	return s.records[i], true
}

// IndexOf returns the position of id, or -1.
func (s *Set[T]) IndexOf(id beets.ID) int {
	if s == nil {
		return -1
	}
	for i, r := range s.records {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

// All returns a copy of the records in order.
func (s *Set[T]) All() []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Set[T]) remove(i int) {
	s.records = append(s.records[:i], s.records[i+1:]...)
}

// Store is the single source of truth for what is displayed.
//
// Store is not safe for concurrent use; every call happens on the event loop.
type Store[T Record] struct {
	current     *Set[T]
	subscribers []func(Change)
}

// NewStore creates an empty store.
func NewStore[T Record]() *Store[T] {
	return &Store[T]{current: &Set[T]{}}
}

// SetAll replaces the sequence with a copy of xs.
func (s *Store[T]) SetAll(xs []T) {
	records := make([]T, len(xs))
	copy(records, xs)
	s.current = &Set[T]{records: records}
	s.notify(Change{Kind: Reset, Index: -1})
}

// RemoveOne removes the record with id, preserving the order of the rest.
// It reports whether a record was removed.
func (s *Store[T]) RemoveOne(id beets.ID) bool {
	i := s.current.IndexOf(id)
	if i < 0 {
		return false
	}
	s.current.remove(i)
	s.notify(Change{Kind: Removed, Index: i})
	return true
}

// IndexOf returns the position of id in the current set, or -1.
func (s *Store[T]) IndexOf(id beets.ID) int {
	return s.current.IndexOf(id)
}

// At returns the record at index i of the current set.
func (s *Store[T]) At(i int) (T, bool) {
	return s.current.At(i)
}

// Size returns the number of records in the current set.
func (s *Store[T]) Size() int {
	return s.current.Size()
}

// Current returns the active set.
func (s *Store[T]) Current() *Set[T] {
	return s.current
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store[T]) Subscribe(fn func(Change)) func() {
	s.subscribers = append(s.subscribers, fn)
	idx := len(s.subscribers) - 1
	return func() {
		if idx < len(s.subscribers) {
			s.subscribers[idx] = nil
		}
	}
}

func (s *Store[T]) notify(c Change) {
	for _, fn := range s.subscribers {
		if fn != nil {
			fn(c)
		}
	}
}
