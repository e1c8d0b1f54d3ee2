package filter

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/logging"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 任何一个过滤器返回 true，该条目就会被过滤掉；过滤器出错时记录日志并保留该条目。
// 过滤不改变剩余条目的相对顺序。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if reason := n.match(ctx, rctx, item); reason != "" {
			logging.Ctx(ctx).Debug().Int64("item", item.ID).Str("filter", reason).Msg("item filtered")
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (n *FilterNode) match(ctx context.Context, rctx *core.RecommendContext, item *core.Item) string {
	for _, f := range n.Filters {
		ok, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Int64("item", item.ID).Msg("filter failed")
			continue
		}
		if ok {
			return f.Name()
		}
	}
	return ""
}
