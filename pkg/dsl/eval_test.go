package dsl

import (
	"testing"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/utils"
)

func TestProgramMatch(t *testing.T) {
	item := core.NewMovieItem(&core.Movie{ID: 2, Title: "Jumanji", Year: 1995, Genres: []string{"Adventure", "Children", "Fantasy"}})
	item.Score = 2
	item.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
	item.PutLabel("recall_source", utils.Label{Value: "interaction", Source: "recall"})
	rctx := &core.RecommendContext{SeedID: 1, N: 5, Mode: core.ModeHybrid}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{`item.year >= 1990`, true},
		{`item.year > 2000`, false},
		{`"Fantasy" in item.genres`, true},
		{`item.title.contains("Juman")`, true},
		{`label.recall_source.contains("interaction")`, true},
		{`item.score >= 2.0 && rctx.mode == "hybrid"`, true},
		{`item.id != rctx.seed_id`, true},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.expr, item, rctx)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile(`item.year >`); err == nil {
		t.Fatal("expected compile error")
	}
	p, err := Compile(`item.year + 1`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := p.Match(core.NewItem(1), nil); err == nil {
		t.Fatal("expected non-boolean result error")
	}
}
