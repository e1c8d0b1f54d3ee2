package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/cinerec/config/builders"
// 以触发内置 Node（filter、rank.vote、rerank.topn）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex

	sharedStore   core.Store
	sharedStoreMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，建议在 init 中调用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回已注册的 Node 类型（排序）。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回包含所有已注册 Node 类型的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for i, nc := range cfg.Pipeline.Nodes {
		if _, ok := defaultBuilders[nc.Type]; !ok {
			types := make([]string, 0, len(defaultBuilders))
			for t := range defaultBuilders {
				types = append(types, t)
			}
			sort.Strings(types)
			return fmt.Errorf("node #%d: unsupported type %q (supported: %v)", i, nc.Type, types)
		}
	}
	return nil
}

// BuildPipeline 校验并构建 pipeline 配置。
func BuildPipeline(cfg *pipeline.Config) (*pipeline.Pipeline, error) {
	if cfg == nil {
		return &pipeline.Pipeline{}, nil
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory())
}

// SetStore 设置配置驱动 Node 共用的 Store（例如黑名单过滤器），nil 表示不使用。
func SetStore(s core.Store) {
	sharedStoreMu.Lock()
	defer sharedStoreMu.Unlock()
	sharedStore = s
}

// Store 返回 SetStore 设置的 Store，可能为 nil。
func Store() core.Store {
	sharedStoreMu.RLock()
	defer sharedStoreMu.RUnlock()
	return sharedStore
}
