// Package builders 注册内置的配置驱动 Node。
package builders

import (
	"fmt"

	"github.com/rushteam/cinerec/config"
	"github.com/rushteam/cinerec/filter"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/conv"
	"github.com/rushteam/cinerec/rank"
	"github.com/rushteam/cinerec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rank.vote", BuildVoteNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildFilterNode 构建过滤 Node：
//
//	filters:
//	  - type: blacklist
//	    item_ids: [1, 2]
//	    key: blacklist:global   # 可选，从 config.Store() 读取
//	  - type: expr
//	    expr: 'item.year < 1970'
//	    invert: false
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for i, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filter #%d: invalid config", i)
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			ids := conv.SliceAnyToInt64(filterMap["item_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, config.Store(), key))
		case "expr":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("filter #%d: expr is required", i)
			}
			f, err := filter.NewExprFilter(expr, conv.ConfigGet(filterMap, "invert", false))
			if err != nil {
				return nil, fmt.Errorf("filter #%d: %w", i, err)
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("filter #%d: unknown filter type %q", i, filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildVoteNode 构建投票排序 Node，weights 为各召回源权重。
func BuildVoteNode(cfg map[string]any) (pipeline.Node, error) {
	node := &rank.VoteNode{LabelKey: conv.ConfigGet(cfg, "label_key", "")}
	if raw, ok := cfg["weights"].(map[string]any); ok {
		node.Weights = make(map[string]float64, len(raw))
		for src, v := range raw {
			w, ok := conv.ToFloat64(v)
			if !ok {
				return nil, fmt.Errorf("weight for %q is not a number", src)
			}
			node.Weights[src] = w
		}
	}
	return node, nil
}

// BuildTopNNode 构建截断 Node，n <= 0 时使用请求中的 n。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}
