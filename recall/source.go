package recall

import (
	"context"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/similarity"
)

// Source 表示一个可复用的召回源（内容相似 / 交互近邻 / ...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// LabelRecallSource 是记录召回来源的 Label key，多个来源以 '|' 累积。
const LabelRecallSource = "recall_source"

// size 返回召回条数：rctx.N * overfetch，overfetch <= 1 时为 rctx.N。
func size(rctx *core.RecommendContext, overfetch int) int {
	if overfetch <= 1 {
		return rctx.N
	}
	return rctx.N * overfetch
}

// toItems 把近邻结果转换为 Item，Score 为相似度，顺序不变。
func toItems(c *catalog.Catalog, ns []similarity.Neighbor) ([]*core.Item, error) {
	items := make([]*core.Item, 0, len(ns))
	for _, nb := range ns {
		m, err := c.Get(nb.ID)
		if err != nil {
			return nil, err
		}
		it := core.NewMovieItem(m)
		it.Score = nb.Score
		items = append(items, it)
	}
	return items, nil
}
