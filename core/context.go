package core

import (
	"fmt"
	"strings"

	"github.com/rushteam/cinerec/pkg/utils"
)

// Mode 是推荐模式。
type Mode string

const (
	ModeContent     Mode = "content"
	ModeInteraction Mode = "interaction"
	ModeHybrid      Mode = "hybrid"
)

// ParseMode 解析推荐模式，空字符串返回 ModeHybrid。
// 兼容 "collaborative" / "cf" 等常见别名。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hybrid":
		return ModeHybrid, nil
	case "content", "content-based", "content_based":
		return ModeContent, nil
	case "interaction", "collaborative", "cf":
		return ModeInteraction, nil
	}
	return "", NewDomainError(ModuleEngine, ErrorCodeInvalidInput, fmt.Sprintf("engine: unknown mode %q", s))
}

// RecommendContext 承载一次推荐请求的上下文，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	RequestID string

	// SeedID 是种子条目 ID，Seed 为其目录条目
	SeedID int64
	Seed   *Movie

	// N 为最终返回的条目数
	N    int
	Mode Mode

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如 with_media
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
