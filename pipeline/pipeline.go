package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/metrics"
	"github.com/rushteam/cinerec/pkg/logging"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Nodes []Node
}

// Append 返回追加了 nodes 的新 Pipeline，原 Pipeline 不变。
func (p *Pipeline) Append(nodes ...Node) *Pipeline {
	out := make([]Node, 0, len(p.Nodes)+len(nodes))
	out = append(out, p.Nodes...)
	out = append(out, nodes...)
	return &Pipeline{Nodes: out}
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		metrics.ObserveSince(metrics.NodeDuration.WithLabelValues(node.Name(), string(node.Kind())), start)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		logging.Ctx(ctx).Debug().
			Str("node", node.Name()).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("pipeline node done")
		cur = next
	}
	return cur, nil
}
