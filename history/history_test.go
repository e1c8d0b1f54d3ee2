package history

import (
	"reflect"
	"testing"

	"github.com/rushteam/cinerec/core"
)

func listIDs(h *History) []int64 {
	var out []int64
	for _, e := range h.List() {
		out = append(out, e.Movie.ID)
	}
	return out
}

func TestHistoryBoundedAndMoveToFront(t *testing.T) {
	h := New(3)
	for _, id := range []int64{1, 2, 3} {
		h.Add(core.Movie{ID: id})
	}
	if got := listIDs(h); !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Fatalf("List = %v, want [3 2 1]", got)
	}

	h.Add(core.Movie{ID: 1})
	if got := listIDs(h); !reflect.DeepEqual(got, []int64{1, 3, 2}) {
		t.Fatalf("after re-view List = %v, want [1 3 2]", got)
	}

	h.Add(core.Movie{ID: 4})
	if got := listIDs(h); !reflect.DeepEqual(got, []int64{4, 1, 3}) {
		t.Fatalf("after overflow List = %v, want [4 1 3]", got)
	}

	h.Clear()
	if got := h.List(); len(got) != 0 {
		t.Fatalf("after Clear List = %v", got)
	}
}

func TestHistoryDefaultSize(t *testing.T) {
	h := New(0)
	for id := int64(1); id <= 8; id++ {
		h.Add(core.Movie{ID: id})
	}
	if got := listIDs(h); !reflect.DeepEqual(got, []int64{8, 7, 6, 5, 4}) {
		t.Fatalf("List = %v", got)
	}
}
