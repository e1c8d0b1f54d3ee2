// Package store 提供 core.Store 的实现。
//
// 注意：此包只包含实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	shared, err := store.NewRedisStore(store.RedisConfig{Addr: "localhost:6379"})
package store

import "github.com/rushteam/cinerec/core"

var (
	_ core.Store = (*MemoryStore)(nil)
	_ core.Store = (*RedisStore)(nil)
)
