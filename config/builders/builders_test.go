package builders

import (
	"context"
	"testing"

	"github.com/rushteam/cinerec/config"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/store"
)

const postRank = `
pipeline:
  name: post-rank
  nodes:
    - type: filter
      config:
        filters:
          - type: blacklist
            item_ids: [2]
            key: blacklist:global
          - type: expr
            expr: 'item.year >= 1990'
    - type: rerank.topn
      config:
        n: 2
`

func movies() []*core.Item {
	return []*core.Item{
		core.NewMovieItem(&core.Movie{ID: 1, Title: "Toy Story", Year: 1995}),
		core.NewMovieItem(&core.Movie{ID: 2, Title: "Jumanji", Year: 1995}),
		core.NewMovieItem(&core.Movie{ID: 3, Title: "Casablanca", Year: 1942}),
		core.NewMovieItem(&core.Movie{ID: 4, Title: "Heat", Year: 1995}),
		core.NewMovieItem(&core.Movie{ID: 5, Title: "Sabrina", Year: 1995}),
	}
}

func TestConfiguredPipeline(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(store.WithCleanupInterval(0))
	defer s.Close()
	if err := s.Set(ctx, "blacklist:global", []byte(`[4]`)); err != nil {
		t.Fatal(err)
	}
	config.SetStore(s)
	defer config.SetStore(nil)

	cfg, err := pipeline.ParseYAML([]byte(postRank))
	if err != nil {
		t.Fatal(err)
	}
	p, err := config.BuildPipeline(cfg)
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Run(ctx, &core.RecommendContext{N: 5}, movies())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != 1 || out[1].ID != 5 {
		ids := make([]int64, len(out))
		for i, it := range out {
			ids[i] = it.ID
		}
		t.Fatalf("ids = %v, want [1 5]", ids)
	}
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown node", "pipeline:\n  nodes:\n    - type: rank.lr\n"},
		{"filters missing", "pipeline:\n  nodes:\n    - type: filter\n"},
		{"unknown filter", "pipeline:\n  nodes:\n    - type: filter\n      config:\n        filters:\n          - type: exposed\n"},
		{"bad expr", "pipeline:\n  nodes:\n    - type: filter\n      config:\n        filters:\n          - type: expr\n            expr: 'item.year >='\n"},
		{"negative n", "pipeline:\n  nodes:\n    - type: rerank.topn\n      config:\n        n: -1\n"},
		{"bad weight", "pipeline:\n  nodes:\n    - type: rank.vote\n      config:\n        weights:\n          content: high\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := pipeline.ParseYAML([]byte(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := config.BuildPipeline(cfg); err == nil {
				t.Fatal("expected build error")
			}
		})
	}
}

func TestSupportedTypes(t *testing.T) {
	got := config.SupportedTypes()
	want := []string{"filter", "rank.vote", "rerank.topn"}
	if len(got) != len(want) {
		t.Fatalf("types = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("types = %v, want %v", got, want)
		}
	}
}
