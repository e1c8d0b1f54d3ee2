package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/media"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/pkg/retry"
	"github.com/rushteam/cinerec/store"
)

// DefaultConfigPaths 是未指定配置文件时依次查找的路径。
var DefaultConfigPaths = []string{
	"cinerec.yaml",
	"cinerec.yml",
	"/etc/cinerec/config.yaml",
}

// ConfigPathEnvVar 指定配置文件路径的环境变量。
const ConfigPathEnvVar = "CINEREC_CONFIG"

// EnvPrefix 是配置环境变量前缀，层级以双下划线分隔：
// CINEREC_MEDIA__TMDB__API_KEY -> media.tmdb.api_key
const EnvPrefix = "CINEREC_"

// Config 是服务的完整配置。
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Media     MediaConfig     `koanf:"media"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   logging.Config  `koanf:"logging"`
	History   HistoryConfig   `koanf:"history"`

	// Pipeline 是排序后处理阶段的配置文件（可选），见 pipeline.Config
	Pipeline string `koanf:"pipeline"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CatalogConfig 指定 MovieLens 数据目录（movies.csv / ratings.csv / links.csv）。
type CatalogConfig struct {
	Dir string `koanf:"dir"`
}

type RecommendConfig struct {
	DefaultN    int           `koanf:"default_n"`
	MaxN        int           `koanf:"max_n"`
	DefaultMode string        `koanf:"default_mode"`
	Overfetch   int           `koanf:"overfetch"` // 混合模式下各召回源取 n*Overfetch 条
	Timeout     time.Duration `koanf:"timeout"`
}

func (c RecommendConfig) DefaultTopN() int              { return c.DefaultN }
func (c RecommendConfig) MaxTopN() int                  { return c.MaxN }
func (c RecommendConfig) DefaultOverfetch() int         { return c.Overfetch }
func (c RecommendConfig) DefaultTimeout() time.Duration { return c.Timeout }

var _ core.RecommendConfig = RecommendConfig{}

// MediaConfig 配置媒体解析级联。Provider 顺序即尝试顺序。
type MediaConfig struct {
	PosterProviders  []string      `koanf:"poster_providers"`  // tmdb, omdb
	TrailerProviders []string      `koanf:"trailer_providers"` // youtube, tmdb
	ProviderTimeout  time.Duration `koanf:"provider_timeout"`
	Workers          int           `koanf:"workers"`

	PlaceholderURL       string `koanf:"placeholder_url"`
	PlaceholderWithTitle bool   `koanf:"placeholder_with_title"`

	TMDB    media.TMDBConfig    `koanf:"tmdb"`
	OMDb    media.OMDbConfig    `koanf:"omdb"`
	YouTube media.YouTubeConfig `koanf:"youtube"`

	// Retry 只作用于 YouTube 搜索
	Retry   retry.Policy          `koanf:"retry"`
	Breaker media.BreakerSettings `koanf:"breaker"`

	// RateLimit 是每个 Provider 每秒请求数，0 表示不限流
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// CacheConfig 配置媒体缓存。Driver: memory 或 redis。
type CacheConfig struct {
	Driver string            `koanf:"driver"`
	TTL    int               `koanf:"ttl"` // 秒
	Redis  store.RedisConfig `koanf:"redis"`
}

type HistoryConfig struct {
	Size int `koanf:"size"`
}

// Default 返回默认配置。
func Default() *Config {
	rc := &core.DefaultRecommendConfig{}
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{Dir: "data/ml-latest-small"},
		Recommend: RecommendConfig{
			DefaultN:    rc.DefaultTopN(),
			MaxN:        rc.MaxTopN(),
			DefaultMode: string(core.ModeHybrid),
			Overfetch:   rc.DefaultOverfetch(),
			Timeout:     rc.DefaultTimeout(),
		},
		Media: MediaConfig{
			PosterProviders:  []string{"tmdb", "omdb"},
			TrailerProviders: []string{"youtube", "tmdb"},
			ProviderTimeout:  media.DefaultProviderTimeout,
			Workers:          media.DefaultWorkers,
			PlaceholderURL:   media.DefaultPosterURL,
			TMDB: media.TMDBConfig{
				BaseURL:      media.DefaultTMDBBaseURL,
				ImageBaseURL: media.DefaultTMDBImageURL,
			},
			OMDb:      media.OMDbConfig{BaseURL: media.DefaultOMDbBaseURL},
			YouTube:   media.YouTubeConfig{BaseURL: media.DefaultYouTubeBaseURL},
			Retry:     retry.DefaultPolicy(),
			Breaker:   media.DefaultBreakerSettings(),
			RateLimit: 0,
			RateBurst: 1,
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    media.DefaultCacheTTL,
			Redis:  store.RedisConfig{Addr: "127.0.0.1:6379", KeyPrefix: "cinerec:"},
		},
		Logging: logging.Config{Level: "info", Format: "json"},
		History: HistoryConfig{Size: 5},
	}
}

// Load 按 默认值 -> YAML 文件 -> 环境变量 的顺序加载配置，后者覆盖前者。
// path 为空时查找 CINEREC_CONFIG 与 DefaultConfigPaths，找不到文件则只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envAliases 是不带前缀的环境变量
var envAliases = map[string]string{
	"tmdb_api_key":    "media.tmdb.api_key",
	"omdb_api_key":    "media.omdb.api_key",
	"youtube_api_key": "media.youtube.api_key",
	"redis_addr":      "cache.redis.addr",
	"log_level":       "logging.level",
}

// envTransformFunc 把环境变量名转换为配置路径，返回空串表示忽略该变量。
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)
	if mapped, ok := envAliases[lower]; ok {
		return mapped
	}
	prefix := strings.ToLower(EnvPrefix)
	if !strings.HasPrefix(lower, prefix) || lower == strings.ToLower(ConfigPathEnvVar) {
		return ""
	}
	return strings.ReplaceAll(strings.TrimPrefix(lower, prefix), "__", ".")
}

var sliceConfigPaths = []string{
	"media.poster_providers",
	"media.trailer_providers",
}

// processSliceFields 把环境变量中逗号分隔的字符串转换为列表。
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0, 2)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var (
	posterProviders  = map[string]bool{"tmdb": true, "omdb": true}
	trailerProviders = map[string]bool{"youtube": true, "tmdb": true}
)

// Validate 校验配置。
func (c *Config) Validate() error {
	r := c.Recommend
	if r.MaxN <= 0 {
		return fmt.Errorf("recommend.max_n must be positive, got %d", r.MaxN)
	}
	if r.DefaultN <= 0 || r.DefaultN > r.MaxN {
		return fmt.Errorf("recommend.default_n must be in [1, %d], got %d", r.MaxN, r.DefaultN)
	}
	if r.Overfetch < 1 {
		return fmt.Errorf("recommend.overfetch must be >= 1, got %d", r.Overfetch)
	}
	if _, err := core.ParseMode(r.DefaultMode); err != nil {
		return fmt.Errorf("recommend.default_mode: %w", err)
	}
	for _, p := range c.Media.PosterProviders {
		if !posterProviders[p] {
			return fmt.Errorf("media.poster_providers: unknown provider %q", p)
		}
	}
	for _, p := range c.Media.TrailerProviders {
		if !trailerProviders[p] {
			return fmt.Errorf("media.trailer_providers: unknown provider %q", p)
		}
	}
	if c.Media.RateLimit < 0 {
		return fmt.Errorf("media.rate_limit must be >= 0")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}
	if c.History.Size < 0 {
		return fmt.Errorf("history.size must be >= 0")
	}
	return nil
}
