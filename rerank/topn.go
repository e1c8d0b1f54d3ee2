package rerank

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个条目。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Fanout{...},     // 召回
//	        &rank.VoteNode{},        // 混合排序
//	        &rerank.TopNNode{},      // 截取请求的 N 条
//	    },
//	}
type TopNNode struct {
	// N 要保留的条目数量
	// N <= 0 时使用请求上下文中的 rctx.N；两者都 <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.N
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
