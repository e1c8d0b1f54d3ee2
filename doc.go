// Package cinerec 是一个电影相似推荐服务。
//
// 设计要点：
// - 双模型：类型标签 TF-IDF 余弦相似度（内容）与评分矩阵余弦近邻（交互），由同一份目录快照构建
// - Pipeline-first：推荐链路由 Node 串联（Recall → Rank → Filter → ReRank → PostProcess）
// - 媒体级联：海报与预告片按 Provider 顺序逐级尝试，全部失败回落到占位图，结果按 TTL 缓存
package cinerec

import (
	"github.com/rushteam/cinerec/engine"
	"github.com/rushteam/cinerec/pipeline"
)

// 轻量 facade：便于直接 import "cinerec" 使用核心抽象。
type (
	Engine         = engine.Engine
	Request        = engine.Request
	Recommendation = engine.Recommendation
	Pipeline       = pipeline.Pipeline
	Node           = pipeline.Node
	Kind           = pipeline.Kind
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
