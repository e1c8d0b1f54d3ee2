package media

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
)

// MetaKey 是 Item.Meta 中保存媒体解析结果的 key。
const MetaKey = "media"

// DefaultWorkers 是媒体解析的默认并发数。
const DefaultWorkers = 4

// EnrichNode 是后处理 Node：为每个条目解析媒体信息，写入 Item.Meta[MetaKey]。
// 各条目的解析相互独立，并发数受 Workers 限制以照顾 Provider 的限流。
type EnrichNode struct {
	Cascade *Cascade
	Workers int
}

func (n *EnrichNode) Name() string        { return "media.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Cascade == nil || len(items) == 0 {
		return items, nil
	}
	workers := n.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	records := make([]Record, len(items))
	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, it := range items {
		if it == nil || it.Movie == nil {
			continue
		}
		eg.Go(func() error {
			records[i] = n.Cascade.Resolve(ctx, QueryFor(it.Movie))
			return nil
		})
	}
	_ = eg.Wait()

	for i, it := range items {
		if it == nil || it.Movie == nil {
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any)
		}
		it.Meta[MetaKey] = records[i]
	}
	return items, nil
}

// RecordOf 读取 EnrichNode 写入的媒体信息。
func RecordOf(it *core.Item) (Record, bool) {
	rec, ok := it.Meta[MetaKey].(Record)
	return rec, ok
}
