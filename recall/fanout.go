package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/pkg/utils"
)

// MergeStrategy 合并各召回源的结果，lists 与 Sources 顺序一致。
type MergeStrategy interface {
	Merge(lists [][]*core.Item, dedup bool) []*core.Item
}

// FirstMergeStrategy 按 Sources 顺序拼接；去重时保留首次出现的 Item，并把后续重复项的 Label 合并进来。
type FirstMergeStrategy struct{}

func (FirstMergeStrategy) Merge(lists [][]*core.Item, dedup bool) []*core.Item {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]*core.Item, 0, total)
	seen := make(map[int64]*core.Item, total)
	for _, l := range lists {
		for _, it := range l {
			if it == nil {
				continue
			}
			if dedup {
				if old, ok := seen[it.ID]; ok {
					for k, v := range it.Labels {
						old.PutLabel(k, v)
					}
					continue
				}
				seen[it.ID] = it
			}
			out = append(out, it)
		}
	}
	return out
}

// UnionMergeStrategy 拼接所有结果，不去重。
type UnionMergeStrategy struct{}

func (UnionMergeStrategy) Merge(lists [][]*core.Item, _ bool) []*core.Item {
	var out []*core.Item
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Fanout 是一个 Recall Node：并发执行多个召回源，并按 Sources 顺序合并结果。
//
// 请求类错误（NOT_FOUND / INVALID_INPUT）直接返回；其余错误只记录日志，该召回源视为空结果。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy MergeStrategy // 默认 FirstMergeStrategy
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	lists := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := src.Recall(recallCtx, rctx)
			if err != nil {
				if core.IsNotFound(err) || core.IsInvalidInput(err) {
					return err
				}
				logging.Ctx(ctx).Warn().Err(err).Str("source", src.Name()).Msg("recall source failed")
				return nil
			}

			// 记录召回来源 label，方便 explain / 投票
			for _, it := range items {
				it.PutLabel(LabelRecallSource, utils.Label{Value: src.Name(), Source: "recall"})
			}
			lists[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	strategy := n.MergeStrategy
	if strategy == nil {
		strategy = FirstMergeStrategy{}
	}
	return strategy.Merge(lists, n.Dedup), nil
}
