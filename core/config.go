package core

import "time"

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopN 返回默认的推荐条数
	DefaultTopN() int

	// MaxTopN 返回单次请求允许的最大推荐条数
	MaxTopN() int

	// DefaultOverfetch 返回混合模式下各召回源的超取倍数
	DefaultOverfetch() int

	// DefaultTimeout 返回默认的单次请求超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int {
	return 5
}

func (c *DefaultRecommendConfig) MaxTopN() int {
	return 100
}

func (c *DefaultRecommendConfig) DefaultOverfetch() int {
	return 2
}

func (c *DefaultRecommendConfig) DefaultTimeout() time.Duration {
	return 10 * time.Second
}
