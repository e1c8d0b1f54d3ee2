// Package metrics 定义 Prometheus 指标：推荐请求、Pipeline 节点、媒体解析级联与缓存。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 推荐请求
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode", "outcome"}, // outcome: ok / not_found / invalid / error
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_recommend_duration_seconds",
			Help:    "Recommendation latency in seconds, media enrichment included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	// Pipeline 节点
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_pipeline_node_duration_seconds",
			Help:    "Pipeline node processing time in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"node", "kind"},
	)

	// 媒体解析级联
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_media_provider_requests_total",
			Help: "Media provider calls by outcome",
		},
		[]string{"provider", "outcome"}, // outcome: ok / empty / error / timeout
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_media_provider_duration_seconds",
			Help:    "Media provider call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
		[]string{"provider"},
	)

	CascadeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_media_cascade_fallbacks_total",
			Help: "Resolutions where every provider failed and the default was used",
		},
		[]string{"kind"}, // poster / trailer
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinerec_media_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// 媒体缓存
	MediaCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinerec_media_cache_requests_total",
			Help: "Media cache lookups by result",
		},
		[]string{"result"}, // hit / miss
	)

	// 模型构建
	ModelBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinerec_model_build_duration_seconds",
			Help:    "Similarity model build time in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinerec_catalog_items",
			Help: "Number of items in the active catalog snapshot",
		},
	)
)

// ObserveSince 记录自 start 起的耗时。
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
