package media

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/metrics"
	"github.com/rushteam/cinerec/pkg/logging"
)

// DefaultCacheTTL 是媒体缓存的默认 TTL（秒）。
const DefaultCacheTTL = 86400

// Cache 是解析结果缓存。实现需支持并发读写。
type Cache interface {
	Get(ctx context.Context, key string) (Record, bool)
	Set(ctx context.Context, key string, rec Record)
}

// StoreCache 基于 core.Store 的缓存，记录以 JSON 保存。
// 读写失败只记录日志，按未命中处理。
type StoreCache struct {
	store  core.Store
	ttl    int
	prefix string
}

// NewStoreCache 创建缓存，ttlSeconds <= 0 时使用 DefaultCacheTTL。
func NewStoreCache(store core.Store, ttlSeconds int) *StoreCache {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultCacheTTL
	}
	return &StoreCache{store: store, ttl: ttlSeconds, prefix: "media:"}
}

func (c *StoreCache) Get(ctx context.Context, key string) (Record, bool) {
	raw, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			logging.Ctx(ctx).Warn().Err(err).Str("store", c.store.Name()).Str("key", key).Msg("media cache read failed")
		}
		metrics.MediaCacheRequests.WithLabelValues("miss").Inc()
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("media cache entry corrupt")
		metrics.MediaCacheRequests.WithLabelValues("miss").Inc()
		return Record{}, false
	}
	metrics.MediaCacheRequests.WithLabelValues("hit").Inc()
	return rec, true
}

func (c *StoreCache) Set(ctx context.Context, key string, rec Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("media cache encode failed")
		return
	}
	if err := c.store.Set(ctx, c.prefix+key, raw, c.ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("store", c.store.Name()).Str("key", key).Msg("media cache write failed")
	}
}
