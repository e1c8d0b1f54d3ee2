package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rushteam/cinerec/metrics"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/pkg/retry"
)

// WithRetry 为单个 Resolver 增加有界的指数退避重试，每次尝试的超时为 attemptTimeout。
// 空结果与缺少配置不重试；级联为该阶段预留的时长为整个重试预算。
func WithRetry(r Resolver, policy retry.Policy, attemptTimeout time.Duration) Resolver {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultProviderTimeout
	}
	return &retryResolver{inner: r, policy: policy, attemptTimeout: attemptTimeout}
}

type retryResolver struct {
	inner          Resolver
	policy         retry.Policy
	attemptTimeout time.Duration
}

func (r *retryResolver) Name() string { return r.inner.Name() }

func (r *retryResolver) Budget(time.Duration) time.Duration {
	return r.policy.Budget(budgetOf(r.inner, r.attemptTimeout))
}

func (r *retryResolver) TryResolve(ctx context.Context, q Query) (string, error) {
	attempt := 0
	return retry.Do(ctx, r.policy, func(ctx context.Context) (string, error) {
		attempt++
		actx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()

		url, err := r.inner.TryResolve(actx, q)
		switch {
		case err == nil:
			return url, nil
		case errors.Is(err, ErrEmptyResult), errors.Is(err, ErrNotConfigured), ctx.Err() != nil:
			return "", retry.Permanent(err)
		}
		return "", err
	}, func(err error, next time.Duration) {
		logging.Ctx(ctx).Debug().
			Err(err).
			Str("provider", r.inner.Name()).
			Int("attempt", attempt).
			Dur("backoff", next).
			Msg("media provider retry")
	})
}

// BreakerSettings 是熔断配置。
type BreakerSettings struct {
	// ConsecutiveFailures 连续失败多少次后熔断
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
	MaxRequests         uint32        `koanf:"max_requests"` // 半开状态允许的请求数
	Interval            time.Duration `koanf:"interval"`     // 闭合状态下计数清零周期
	Timeout             time.Duration `koanf:"timeout"`      // 打开状态持续时间
}

// DefaultBreakerSettings 返回默认熔断配置。
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
	}
}

// WithBreaker 为 Resolver 增加熔断：连续失败后短时间内直接判定失败，级联立即进入下一阶段。
// 空结果不计为失败。
func WithBreaker(r Resolver, st BreakerSettings) Resolver {
	if st.ConsecutiveFailures == 0 {
		st.ConsecutiveFailures = DefaultBreakerSettings().ConsecutiveFailures
	}
	name := r.Name()
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= st.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrEmptyResult)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("media provider breaker state changed")
		},
	})
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return &breakerResolver{inner: r, cb: cb}
}

type breakerResolver struct {
	inner Resolver
	cb    *gobreaker.CircuitBreaker[string]
}

func (r *breakerResolver) Name() string { return r.inner.Name() }

func (r *breakerResolver) Budget(perCall time.Duration) time.Duration {
	return budgetOf(r.inner, perCall)
}

func (r *breakerResolver) TryResolve(ctx context.Context, q Query) (string, error) {
	url, err := r.cb.Execute(func() (string, error) {
		return r.inner.TryResolve(ctx, q)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return url, err
}

// WithRateLimit 为 Resolver 增加令牌桶限流，等待令牌的时间计入阶段超时。
func WithRateLimit(r Resolver, limiter *rate.Limiter) Resolver {
	if limiter == nil {
		return r
	}
	return &rateLimitResolver{inner: r, limiter: limiter}
}

type rateLimitResolver struct {
	inner   Resolver
	limiter *rate.Limiter
}

func (r *rateLimitResolver) Name() string { return r.inner.Name() }

func (r *rateLimitResolver) Budget(perCall time.Duration) time.Duration {
	return budgetOf(r.inner, perCall)
}

func (r *rateLimitResolver) TryResolve(ctx context.Context, q Query) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit: %w", ErrProviderUnavailable, err)
	}
	return r.inner.TryResolve(ctx, q)
}
