package similarity

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
)

func mustCatalog(t *testing.T, movies []core.Movie, interactions []core.Interaction) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(movies, interactions)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

func ids(ns []Neighbor) []int64 {
	out := make([]int64, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

var scenarioMovies = []core.Movie{
	{ID: 1, Title: "Toy Story", Genres: []string{"Animation", "Comedy"}},
	{ID: 2, Title: "A Bug's Life", Genres: []string{"Animation", "Comedy"}},
	{ID: 3, Title: "Heat", Genres: []string{"Action", "Crime"}},
}

func TestTokenizer(t *testing.T) {
	tok := NewTokenizer()
	got := tok.Tokenize("Sci-Fi|Film-Noir|Children|A")
	want := []string{"sci", "fi", "film", "noir", "children"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	if got := tok.Tokenize("the and of"); len(got) != 0 {
		t.Fatalf("stop words not removed: %v", got)
	}
}

func TestContentTopSimilarScenario(t *testing.T) {
	m := NewContentModel(mustCatalog(t, scenarioMovies, nil), nil)

	got, err := m.TopSimilar(1, 1)
	if err != nil {
		t.Fatalf("TopSimilar: %v", err)
	}
	if !reflect.DeepEqual(ids(got), []int64{2}) {
		t.Fatalf("TopSimilar(1, 1) = %v, want [2]", ids(got))
	}
	// 与 3 没有共享标签，相似度为 0 不返回
	got, _ = m.TopSimilar(1, 5)
	if !reflect.DeepEqual(ids(got), []int64{2}) {
		t.Fatalf("TopSimilar(1, 5) = %v, want [2]", ids(got))
	}
	if s, _ := m.Similarity(1, 3); s != 0 {
		t.Fatalf("Similarity(1, 3) = %v, want 0", s)
	}
}

func TestContentSymmetricWithUnitDiagonal(t *testing.T) {
	movies := []core.Movie{
		{ID: 10, Genres: []string{"Adventure", "Animation", "Children", "Comedy", "Fantasy"}},
		{ID: 20, Genres: []string{"Adventure", "Children", "Fantasy"}},
		{ID: 30, Genres: []string{"Comedy", "Romance"}},
		{ID: 40, Genres: []string{"Comedy", "Drama", "Romance"}},
		{ID: 50, Genres: []string{}},
		{ID: 60, Genres: []string{"Action", "Crime", "Thriller"}},
	}
	m := NewContentModel(mustCatalog(t, movies, nil), nil)
	for _, a := range movies {
		for _, b := range movies {
			sab, err := m.Similarity(a.ID, b.ID)
			if err != nil {
				t.Fatal(err)
			}
			sba, _ := m.Similarity(b.ID, a.ID)
			if sab != sba {
				t.Errorf("sim(%d,%d)=%v != sim(%d,%d)=%v", a.ID, b.ID, sab, b.ID, a.ID, sba)
			}
			if a.ID == b.ID && sab != 1 {
				t.Errorf("sim(%d,%d) = %v, want 1", a.ID, a.ID, sab)
			}
			if sab < 0 || sab > 1 {
				t.Errorf("sim(%d,%d) = %v out of range", a.ID, b.ID, sab)
			}
		}
	}

	row, err := m.Row(50)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 0, 0, 1, 0}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("Row(50) = %v, want %v", row, want)
	}
}

func TestContentTopSimilarProperties(t *testing.T) {
	movies := []core.Movie{
		{ID: 5, Genres: []string{"Comedy"}},
		{ID: 3, Genres: []string{"Comedy"}},
		{ID: 9, Genres: []string{"Comedy"}},
		{ID: 1, Genres: []string{"Comedy"}},
		{ID: 7, Genres: []string{}},
	}
	m := NewContentModel(mustCatalog(t, movies, nil), nil)

	// 相似度全部相同，按 ID 升序
	got, _ := m.TopSimilar(5, 10)
	if !reflect.DeepEqual(ids(got), []int64{1, 3, 9}) {
		t.Fatalf("TopSimilar(5) = %v, want [1 3 9]", ids(got))
	}
	for _, mv := range movies {
		for n := 1; n <= 4; n++ {
			got, err := m.TopSimilar(mv.ID, n)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) > n {
				t.Errorf("TopSimilar(%d, %d) len = %d", mv.ID, n, len(got))
			}
			for _, nb := range got {
				if nb.ID == mv.ID {
					t.Errorf("TopSimilar(%d, %d) contains seed", mv.ID, n)
				}
			}
		}
	}
	if got, _ := m.TopSimilar(7, 3); len(got) != 0 {
		t.Fatalf("item without tags should have no similar items, got %v", ids(got))
	}
	if got, _ := m.TopSimilar(5, 0); len(got) != 0 {
		t.Fatalf("n=0 should return empty, got %v", ids(got))
	}
	if _, err := m.TopSimilar(404, 1); !core.IsNotFound(err) {
		t.Fatalf("TopSimilar(404) err = %v, want NOT_FOUND", err)
	}
}

func TestContentPrefersSharedRareTags(t *testing.T) {
	movies := []core.Movie{
		{ID: 1, Genres: []string{"Animation", "Comedy", "Musical"}},
		{ID: 2, Genres: []string{"Comedy"}},
		{ID: 3, Genres: []string{"Musical"}},
		{ID: 4, Genres: []string{"Comedy", "Drama"}},
		{ID: 5, Genres: []string{"Comedy", "Romance"}},
	}
	m := NewContentModel(mustCatalog(t, movies, nil), nil)
	got, _ := m.TopSimilar(1, 1)
	// Musical 比 Comedy 稀有，idf 更高
	if !reflect.DeepEqual(ids(got), []int64{3}) {
		t.Fatalf("TopSimilar(1, 1) = %v, want [3]", ids(got))
	}
}

func TestInteractionColdStartScenario(t *testing.T) {
	c := mustCatalog(t, scenarioMovies, []core.Interaction{
		{ItemID: 1, ActorID: 100, Weight: 5.0},
		{ItemID: 2, ActorID: 100, Weight: 4.5},
	})
	m := NewInteractionModel(c)

	got, err := m.TopNeighbors(3, 2)
	if err != nil {
		t.Fatalf("TopNeighbors(3): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("TopNeighbors(3, 2) = %v, want [] (cold start)", ids(got))
	}
	if m.Has(3) {
		t.Fatal("item 3 should not be in the interaction matrix")
	}

	got, _ = m.TopNeighbors(1, 2)
	if !reflect.DeepEqual(ids(got), []int64{2}) {
		t.Fatalf("TopNeighbors(1, 2) = %v, want [2]", ids(got))
	}
	if got[0].Score < 0.999999 {
		t.Fatalf("score = %v, want ~1", got[0].Score)
	}
	if _, err := m.TopNeighbors(404, 2); !core.IsNotFound(err) {
		t.Fatalf("TopNeighbors(404) err = %v, want NOT_FOUND", err)
	}
}

func TestInteractionNeighborsOrdering(t *testing.T) {
	movies := []core.Movie{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}
	c := mustCatalog(t, movies, []core.Interaction{
		{ItemID: 1, ActorID: 1, Weight: 5},
		{ItemID: 1, ActorID: 2, Weight: 3},
		{ItemID: 2, ActorID: 1, Weight: 5},
		{ItemID: 2, ActorID: 2, Weight: 3},
		{ItemID: 3, ActorID: 1, Weight: 1},
		{ItemID: 4, ActorID: 2, Weight: 4},
		{ItemID: 4, ActorID: 2, Weight: 2}, // 重复记录以最后一条为准
		{ItemID: 5, ActorID: 3, Weight: 4},
	})
	m := NewInteractionModel(c)
	if m.Items() != 5 || m.Actors() != 3 {
		t.Fatalf("Items=%d Actors=%d, want 5, 3", m.Items(), m.Actors())
	}

	got, _ := m.TopNeighbors(1, 10)
	// 2 与 1 方向相同；3 (actor 1) 比 4 (actor 2) 更近；5 无共享行为者
	if !reflect.DeepEqual(ids(got), []int64{2, 3, 4}) {
		t.Fatalf("TopNeighbors(1) = %v, want [2 3 4]", ids(got))
	}
	got, _ = m.TopNeighbors(1, 1)
	if !reflect.DeepEqual(ids(got), []int64{2}) {
		t.Fatalf("TopNeighbors(1, 1) = %v, want [2]", ids(got))
	}
	if got, _ := m.TopNeighbors(5, 3); len(got) != 0 {
		t.Fatalf("isolated item neighbors = %v, want []", ids(got))
	}
	d, ok := m.Distance(1, 5)
	if !ok || d != 1 {
		t.Fatalf("Distance(1, 5) = %v, %v; want 1, true", d, ok)
	}
}

func TestContentNoGenresListedFromMovieLens(t *testing.T) {
	const csv = `movieId,title,genres
1,Unknown One (2001),(no genres listed)
2,Unknown Two (2002),(no genres listed)
3,Heat (1995),Action|Crime|Thriller
`
	movies, err := catalog.ReadMovies(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadMovies: %v", err)
	}
	m := NewContentModel(mustCatalog(t, movies, nil), nil)

	s, err := m.Similarity(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(s-1) > 1e-9 {
		t.Fatalf("Similarity(1, 2) = %v, want 1", s)
	}
	got, err := m.TopSimilar(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids(got), []int64{2}) {
		t.Fatalf("TopSimilar(1, 2) = %v, want [2]", ids(got))
	}
}
