package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/cinerec/core"
)

func TestTopNNode(t *testing.T) {
	items := []*core.Item{core.NewItem(1), core.NewItem(2), core.NewItem(3)}
	tests := []struct {
		name string
		n    int
		rN   int
		want int
	}{
		{"fixed", 2, 0, 2},
		{"from request", 0, 1, 1},
		{"fixed wins", 2, 1, 2},
		{"larger than input", 10, 0, 3},
		{"no limit", 0, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), &core.RecommendContext{N: tt.rN}, items)
			if err != nil {
				t.Fatal(err)
			}
			if len(out) != tt.want {
				t.Fatalf("len = %d, want %d", len(out), tt.want)
			}
			if out[0].ID != 1 {
				t.Fatalf("order changed: first = %d", out[0].ID)
			}
		})
	}
}
