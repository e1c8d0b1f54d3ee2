package engine

import (
	"context"
	"testing"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/filter"
	"github.com/rushteam/cinerec/media"
	"github.com/rushteam/cinerec/pipeline"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	movies := []core.Movie{
		{ID: 1, Title: "Toy Story", Year: 1995, Genres: []string{"Animation", "Comedy"}},
		{ID: 2, Title: "A Bug's Life", Year: 1998, Genres: []string{"Animation", "Comedy"}},
		{ID: 3, Title: "Heat", Year: 1995, Genres: []string{"Action", "Crime"}},
		{ID: 4, Title: "Jumanji", Year: 1995, Genres: []string{"Adventure", "Comedy"}},
		{ID: 5, Title: "Casino", Year: 1995, Genres: []string{"Crime", "Drama"}},
		{ID: 6, Title: "Untitled", Genres: []string{}},
	}
	interactions := []core.Interaction{
		{ItemID: 1, ActorID: 10, Weight: 5}, {ItemID: 4, ActorID: 10, Weight: 5}, {ItemID: 3, ActorID: 10, Weight: 4},
		{ItemID: 1, ActorID: 11, Weight: 4}, {ItemID: 4, ActorID: 11, Weight: 4},
		{ItemID: 3, ActorID: 12, Weight: 5}, {ItemID: 5, ActorID: 12, Weight: 3},
	}
	c, err := catalog.New(movies, interactions)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func ids(recs []Recommendation) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.Movie.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecommendHybridPrefersBothLists(t *testing.T) {
	e, err := New(testCatalog(t))
	if err != nil {
		t.Fatal(err)
	}
	// content: [2 4]，interaction: [4 3]
	recs, err := e.Recommend(context.Background(), Request{SeedID: 1, N: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recs); !equalIDs(got, []int64{4, 2, 3}) {
		t.Fatalf("ids = %v, want [4 2 3]", got)
	}
	if recs[0].Score != 2 || recs[1].Score != 1 || recs[2].Score != 1 {
		t.Fatalf("scores = %v %v %v", recs[0].Score, recs[1].Score, recs[2].Score)
	}
	if len(recs[0].Sources) != 2 || recs[0].Sources[0] != "content" || recs[0].Sources[1] != "interaction" {
		t.Fatalf("sources = %v", recs[0].Sources)
	}

	recs, err = e.Recommend(context.Background(), Request{SeedID: 1, N: 2, Mode: core.ModeHybrid})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recs); !equalIDs(got, []int64{4, 2}) {
		t.Fatalf("truncated ids = %v, want [4 2]", got)
	}
}

func TestRecommendSingleModes(t *testing.T) {
	e, _ := New(testCatalog(t))
	ctx := context.Background()

	recs, err := e.Recommend(ctx, Request{SeedID: 1, N: 1, Mode: core.ModeContent})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recs); !equalIDs(got, []int64{2}) {
		t.Fatalf("content ids = %v, want [2]", got)
	}

	recs, err = e.Recommend(ctx, Request{SeedID: 3, N: 2, Mode: core.ModeInteraction})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recs); !equalIDs(got, []int64{5, 1}) {
		t.Fatalf("interaction ids = %v, want [5 1]", got)
	}

	// 冷启动：条目 2 没有交互
	recs, err = e.Recommend(ctx, Request{SeedID: 2, N: 3, Mode: core.ModeInteraction})
	if err != nil || len(recs) != 0 {
		t.Fatalf("cold start = %v, %v", ids(recs), err)
	}
}

func TestRecommendDegenerateSeed(t *testing.T) {
	e, _ := New(testCatalog(t))
	recs, err := e.Recommend(context.Background(), Request{SeedID: 6, N: 5})
	if err != nil {
		t.Fatal(err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("recs = %v, want empty list", recs)
	}
}

func TestRecommendErrors(t *testing.T) {
	e, _ := New(testCatalog(t))
	ctx := context.Background()

	if _, err := e.Recommend(ctx, Request{SeedID: 99, N: 3}); !core.IsNotFound(err) {
		t.Fatalf("unknown seed err = %v", err)
	}
	for _, n := range []int{-1, 101} {
		if _, err := e.Recommend(ctx, Request{SeedID: 1, N: n}); !core.IsInvalidInput(err) {
			t.Fatalf("n=%d err = %v", n, err)
		}
	}
	if _, err := e.Recommend(ctx, Request{SeedID: 1, Mode: "popular"}); !core.IsInvalidInput(err) {
		t.Fatalf("bad mode err = %v", err)
	}
	if len(e.History()) != 0 {
		t.Fatal("failed requests must not be recorded in history")
	}

	recs, err := e.Recommend(ctx, Request{SeedID: 1})
	if err != nil || len(recs) != 3 {
		t.Fatalf("default n: %v, %v", ids(recs), err)
	}
}

func TestRecommendPostRankAndMedia(t *testing.T) {
	poster := media.ResolverFunc{ID: "tmdb.poster", Fn: func(_ context.Context, q media.Query) (string, error) {
		return "https://img/" + q.Title + ".jpg", nil
	}}
	post := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter([]int64{4}, nil, "")}},
	}}
	e, err := New(testCatalog(t),
		WithPostRank(post),
		WithMedia(media.NewCascade([]media.Resolver{poster}, nil), 2),
	)
	if err != nil {
		t.Fatal(err)
	}

	recs, err := e.Recommend(context.Background(), Request{SeedID: 1, N: 2, WithMedia: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(recs); !equalIDs(got, []int64{2, 3}) {
		t.Fatalf("ids = %v, want [2 3]", got)
	}
	if recs[0].Media == nil || recs[0].Media.PosterURL != "https://img/A Bug's Life.jpg" {
		t.Fatalf("media = %+v", recs[0].Media)
	}
	if recs[0].Media.HasTrailer() {
		t.Fatal("trailer should be unavailable")
	}

	recs, _ = e.Recommend(context.Background(), Request{SeedID: 1, N: 2})
	if recs[0].Media != nil {
		t.Fatal("media resolved without being requested")
	}

	rec, err := e.ResolveMedia(context.Background(), 3)
	if err != nil || rec.PosterURL != "https://img/Heat.jpg" || rec.PosterSource != "tmdb.poster" {
		t.Fatalf("ResolveMedia = %+v, %v", rec, err)
	}
	if _, err := e.ResolveMedia(context.Background(), 99); !core.IsNotFound(err) {
		t.Fatalf("ResolveMedia unknown err = %v", err)
	}
}

func TestHistoryAndReload(t *testing.T) {
	e, _ := New(testCatalog(t))
	ctx := context.Background()
	for _, id := range []int64{1, 3, 1} {
		if _, err := e.Recommend(ctx, Request{SeedID: id, N: 1}); err != nil {
			t.Fatal(err)
		}
	}
	h := e.History()
	if len(h) != 2 || h[0].Movie.ID != 1 || h[1].Movie.ID != 3 {
		t.Fatalf("history = %+v", h)
	}

	small, err := catalog.New([]core.Movie{{ID: 7, Title: "Alien", Genres: []string{"Horror", "Sci-Fi"}}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Reload(small); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Item(1); !core.IsNotFound(err) {
		t.Fatalf("old item still present: %v", err)
	}
	if got := e.Search("ali", 10); len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("search = %v", got)
	}
	if e.Catalog().Len() != 1 {
		t.Fatal("catalog not replaced")
	}
}
