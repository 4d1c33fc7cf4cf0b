package results

import (
	"fmt"
	"testing"

	"github.com/jfmyers9/beetle/pkg/beets"
)

func items(ids ...string) []beets.Item {
	out := make([]beets.Item, len(ids))
	for i, id := range ids {
		out[i] = beets.Item{ID: beets.ID(id), Title: "track " + id}
	}
	return out
}

func TestStore_SetAll(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
	}{
		{"empty", nil},
		{"single", []string{"1"}},
		{"several", []string{"4", "2", "9", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore[beets.Item]()
			xs := items(tt.ids...)
			s.SetAll(xs)

			if s.Size() != len(xs) {
				t.Fatalf("Size() = %d, want %d", s.Size(), len(xs))
			}
			for i := range xs {
				got, ok := s.At(i)
				if !ok {
					t.Fatalf("At(%d) not defined", i)
				}
				if got.ID != xs[i].ID {
					t.Errorf("At(%d).ID = %q, want %q", i, got.ID, xs[i].ID)
				}
			}
			if _, ok := s.At(len(xs)); ok {
				t.Error("At(size) must be undefined")
			}
			if _, ok := s.At(-1); ok {
				t.Error("At(-1) must be undefined")
			}
		})
	}
}

func TestStore_SetAllCopiesInput(t *testing.T) {
	s := NewStore[beets.Item]()
	xs := items("1", "2")
	s.SetAll(xs)
	xs[0].ID = "changed"

	got, _ := s.At(0)
	if got.ID != "1" {
		t.Errorf("store aliased caller slice: At(0).ID = %q", got.ID)
	}
}

func TestStore_SetAllReplacesSet(t *testing.T) {
	s := NewStore[beets.Item]()
	s.SetAll(items("1", "2"))
	old := s.Current()

	s.SetAll(items("3"))
	if s.Current() == old {
		t.Fatal("SetAll must create a new set")
	}
	if old.Size() != 2 || old.IndexOf("2") != 1 {
		t.Error("previous set must remain intact")
	}
	if s.IndexOf("1") != -1 {
		t.Error("records must not merge across SetAll")
	}
}

func TestStore_RemoveOne(t *testing.T) {
	s := NewStore[beets.Item]()
	s.SetAll(items("a", "b", "c", "d"))

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	if !s.RemoveOne("c") {
		t.Fatal("RemoveOne(c) = false")
	}
	if s.RemoveOne("missing") {
		t.Error("RemoveOne(missing) = true")
	}

	want := []beets.ID{"a", "b", "d"}
	if s.Size() != len(want) {
		t.Fatalf("Size() = %d, want %d", s.Size(), len(want))
	}
	for i, id := range want {
		got, _ := s.At(i)
		if got.ID != id {
			t.Errorf("At(%d) = %q, want %q", i, got.ID, id)
		}
	}

	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Kind != Removed || changes[0].Index != 2 {
		t.Errorf("change = %+v, want Removed at 2", changes[0])
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore[beets.Item]()
	var got []string
	unsubscribe := s.Subscribe(func(c Change) {
		got = append(got, fmt.Sprintf("%s:%d", c.Kind, c.Index))
	})

	s.SetAll(items("1", "2"))
	s.RemoveOne("1")
	unsubscribe()
	s.SetAll(nil)

	want := []string{"reset:-1", "removed:0"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSet_NilSafe(t *testing.T) {
	var s *Set[beets.Album]
	if s.Size() != 0 || s.IndexOf("1") != -1 || s.All() != nil {
		t.Error("nil set must behave as empty")
	}
	if _, ok := s.At(0); ok {
		t.Error("nil set At(0) must be undefined")
	}
}
