package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/cinerec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的条目。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单
	ItemIDs map[int64]struct{}

	// Store 用于从存储中读取黑名单（可选），Key 对应的值为 JSON 数组，如 [1, 2, 3]
	Store core.Store
	Key   string
}

// NewBlacklistFilter 创建一个黑名单过滤器，store 可以为 nil。
func NewBlacklistFilter(itemIDs []int64, store core.Store, key string) *BlacklistFilter {
	set := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{ItemIDs: set, Store: store, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if _, ok := f.ItemIDs[item.ID]; ok {
		return true, nil
	}

	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	raw, err := f.Store.Get(ctx, f.Key)
	if core.IsStoreNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == item.ID {
			return true, nil
		}
	}
	return false, nil
}
