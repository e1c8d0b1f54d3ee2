package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/cinerec/metrics"
	"github.com/rushteam/cinerec/pkg/logging"
)

// DefaultProviderTimeout 是单个 Provider 调用的默认超时。
const DefaultProviderTimeout = 3 * time.Second

// Budgeter 由自带重试等预算的 Resolver 实现，返回单次调用超时为 perCall 时该阶段的总时长上限。
type Budgeter interface {
	Budget(perCall time.Duration) time.Duration
}

func budgetOf(r Resolver, perCall time.Duration) time.Duration {
	if b, ok := r.(Budgeter); ok {
		return b.Budget(perCall)
	}
	return perCall
}

// Cascade 是媒体解析级联。
//
// 每类媒体的状态机：TRY_PROVIDER_1 -> (成功: DONE) | (失败: TRY_PROVIDER_2) -> ... -> ALL_FAILED -> DEFAULT。
// 只采用第一个成功阶段的结果，不合并多个 Provider 的部分结果。
type Cascade struct {
	posters     []Resolver
	trailers    []Resolver
	cache       Cache
	timeout     time.Duration
	placeholder Placeholder
	group       singleflight.Group
}

// CascadeOption 配置 Cascade。
type CascadeOption func(*Cascade)

// WithCache 设置结果缓存。
func WithCache(c Cache) CascadeOption {
	return func(cs *Cascade) { cs.cache = c }
}

// WithProviderTimeout 设置单个 Provider 调用的超时。
func WithProviderTimeout(d time.Duration) CascadeOption {
	return func(cs *Cascade) {
		if d > 0 {
			cs.timeout = d
		}
	}
}

// WithPlaceholder 设置占位海报。
func WithPlaceholder(p Placeholder) CascadeOption {
	return func(cs *Cascade) { cs.placeholder = p }
}

// NewCascade 创建级联，posters / trailers 按尝试顺序排列。
func NewCascade(posters, trailers []Resolver, opts ...CascadeOption) *Cascade {
	c := &Cascade{
		posters:  posters,
		trailers: trailers,
		timeout:  DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stages 返回某类媒体的阶段名称，按尝试顺序。
func (c *Cascade) Stages(kind Kind) []string {
	stages := c.posters
	if kind == KindTrailer {
		stages = c.trailers
	}
	names := make([]string, len(stages))
	for i, r := range stages {
		names[i] = r.Name()
	}
	return names
}

// flight 是一次共享级联的结果；aborted 表示执行者的 ctx 在级联中途结束。
type flight struct {
	rec     Record
	aborted bool
}

// Resolve 解析 q 的海报与预告片，总是返回一个 Record。
//
// TTL 内相同 key 直接命中缓存；同一 key 的并发解析只执行一次级联。
// ctx 被取消时的结果不写入缓存，也不交给 ctx 仍有效的等待者，后者会重新执行级联。
func (c *Cascade) Resolve(ctx context.Context, q Query) Record {
	key := q.Key()
	for {
		if c.cache != nil {
			if rec, ok := c.cache.Get(ctx, key); ok {
				return rec
			}
		}

		v, _, _ := c.group.Do(key, func() (any, error) {
			rec := c.resolve(ctx, q)
			if ctx.Err() != nil {
				return flight{rec: rec, aborted: true}, nil
			}
			if c.cache != nil {
				c.cache.Set(context.WithoutCancel(ctx), key, rec)
			}
			return flight{rec: rec}, nil
		})
		f := v.(flight)
		if !f.aborted || ctx.Err() != nil {
			return f.rec
		}
		logging.Ctx(ctx).Debug().Str("key", key).Msg("shared media resolution aborted, retrying")
	}
}

func (c *Cascade) resolve(ctx context.Context, q Query) Record {
	var rec Record

	if url, name, ok := c.run(ctx, KindPoster, c.posters, q); ok {
		rec.PosterURL = url
		rec.PosterSource = name
	} else {
		rec.PosterURL = c.placeholder.Poster(q)
		rec.PosterSource = SourcePlaceholder
	}

	if url, name, ok := c.run(ctx, KindTrailer, c.trailers, q); ok {
		rec.Trailer = &Trailer{URL: url, Provider: providerTag(name)}
	}
	return rec
}

// run 按顺序尝试各阶段，返回第一个成功的 URL 与阶段名称。
func (c *Cascade) run(ctx context.Context, kind Kind, stages []Resolver, q Query) (string, string, bool) {
	if len(stages) == 0 {
		return "", "", false
	}
	log := logging.Ctx(ctx)
	for i, r := range stages {
		url, err := c.try(ctx, r, q)
		if err == nil {
			log.Debug().
				Str("kind", string(kind)).
				Str("provider", r.Name()).
				Int("stage", i+1).
				Str("title", q.Title).
				Msg("media resolved")
			return url, r.Name(), true
		}
		log.Debug().
			Err(err).
			Str("kind", string(kind)).
			Str("provider", r.Name()).
			Int("stage", i+1).
			Str("title", q.Title).
			Int("year", q.Year).
			Msg("media provider failed, advancing cascade")
		if ctx.Err() != nil {
			break
		}
	}
	metrics.CascadeFallbacks.WithLabelValues(string(kind)).Inc()
	log.Info().
		Str("kind", string(kind)).
		Str("title", q.Title).
		Int("year", q.Year).
		Int("stages", len(stages)).
		Msg("media cascade exhausted, using default")
	return "", "", false
}

// try 在阶段预算内调用一次 Resolver，并校验结果是否可用。
func (c *Cascade) try(ctx context.Context, r Resolver, q Query) (url string, err error) {
	sctx, cancel := context.WithTimeout(ctx, budgetOf(r, c.timeout))
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			url, err = "", fmt.Errorf("%w: panic: %v", ErrProviderUnavailable, p)
		}
		metrics.ProviderDuration.WithLabelValues(r.Name()).Observe(time.Since(start).Seconds())
		metrics.ProviderRequests.WithLabelValues(r.Name(), outcome(err)).Inc()
	}()

	url, err = r.TryResolve(sctx, q)
	if err != nil {
		if sctx.Err() != nil && !errors.Is(err, ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return "", err
	}
	url = strings.TrimSpace(url)
	if url == "" || strings.EqualFold(url, "N/A") || c.placeholder.Is(url) {
		return "", ErrEmptyResult
	}
	return url, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
