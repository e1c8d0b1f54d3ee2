// Package rank 对召回候选打分并排序。
package rank

import (
	"context"
	"sort"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/utils"
)

// VoteNode 是混合排序节点：每个候选的分数为其出现过的不同召回源数量，
// 即同时出现在内容列表与交互列表中的候选得 2 分，只出现在一个列表中的得 1 分。
//
// 排序为稳定排序：同分候选保持进入节点时的顺序（内容列表在前，交互列表在后）。
// Weights 可为各召回源设置权重，缺省为 1。
type VoteNode struct {
	// LabelKey 是记录召回来源的 Label key，默认 recall_source
	LabelKey string

	// Weights 召回源权重（可选）
	Weights map[string]float64
}

func (n *VoteNode) Name() string        { return "rank.vote" }
func (n *VoteNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *VoteNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	key := n.LabelKey
	if key == "" {
		key = "recall_source"
	}

	for _, it := range items {
		lbl, _ := it.GetLabel(key)
		var score float64
		for _, src := range lbl.Values() {
			score += n.weight(src)
		}
		it.Score = score
		it.PutLabel("rank_model", utils.Label{Value: "vote", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

func (n *VoteNode) weight(source string) float64 {
	if w, ok := n.Weights[source]; ok {
		return w
	}
	return 1
}
