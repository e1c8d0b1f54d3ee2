package filter

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/store"
)

func movieItems() []*core.Item {
	movies := []*core.Movie{
		{ID: 1, Title: "Toy Story", Year: 1995, Genres: []string{"Animation"}},
		{ID: 2, Title: "Metropolis", Year: 1927, Genres: []string{"Drama", "Sci-Fi"}},
		{ID: 3, Title: "Heat", Year: 1995, Genres: []string{"Crime"}},
		{ID: 4, Title: "Up", Year: 2009, Genres: []string{"Animation"}},
	}
	out := make([]*core.Item, len(movies))
	for i, m := range movies {
		out[i] = core.NewMovieItem(m)
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBlacklistFilterMemoryAndStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(store.WithCleanupInterval(0))
	defer s.Close()
	_ = s.Set(ctx, "blacklist:global", []byte(`[3]`))

	node := &FilterNode{Filters: []Filter{NewBlacklistFilter([]int64{1}, s, "blacklist:global")}}
	out, err := node.Process(ctx, &core.RecommendContext{}, movieItems())
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(out); !reflect.DeepEqual(got, []int64{2, 4}) {
		t.Fatalf("ids = %v, want [2 4]", got)
	}

	// key 不存在时只使用内存黑名单
	node = &FilterNode{Filters: []Filter{NewBlacklistFilter([]int64{1}, s, "blacklist:missing")}}
	out, _ = node.Process(ctx, &core.RecommendContext{}, movieItems())
	if got := ids(out); !reflect.DeepEqual(got, []int64{2, 3, 4}) {
		t.Fatalf("ids = %v, want [2 3 4]", got)
	}
}

func TestExprFilter(t *testing.T) {
	keepModern, err := NewExprFilter(`item.year >= 1980`, false)
	if err != nil {
		t.Fatal(err)
	}
	dropAnimation, err := NewExprFilter(`"Animation" in item.genres`, true)
	if err != nil {
		t.Fatal(err)
	}
	node := &FilterNode{Filters: []Filter{keepModern, dropAnimation}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, movieItems())
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(out); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("ids = %v, want [3]", got)
	}

	if _, err := NewExprFilter(`item.year >`, false); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestFilterErrorKeepsItem(t *testing.T) {
	// 访问不存在的 label 会在求值时报错，条目被保留
	f, err := NewExprFilter(`label.missing == "x"`, false)
	if err != nil {
		t.Fatal(err)
	}
	node := &FilterNode{Filters: []Filter{f}}
	out, _ := node.Process(context.Background(), &core.RecommendContext{}, movieItems())
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
}
