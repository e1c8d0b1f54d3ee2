// Package retry 在 cenkalti/backoff 之上提供有界的指数退避重试。
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy 描述重试预算：最多 MaxAttempts 次调用，两次调用之间按指数退避等待。
type Policy struct {
	MaxAttempts int           `koanf:"max_attempts"`
	BaseDelay   time.Duration `koanf:"base_delay"`
	Multiplier  float64       `koanf:"multiplier"`
	MaxDelay    time.Duration `koanf:"max_delay"`
}

// DefaultPolicy 返回默认策略：2 次尝试，200ms 起步，上限 2s。
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		BaseDelay:   200 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    2 * time.Second,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	if p.MaxDelay <= 0 || p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Delays 返回各次重试前的等待时间，长度为 MaxAttempts-1。
func (p Policy) Delays() []time.Duration {
	p = p.normalized()
	out := make([]time.Duration, 0, p.MaxAttempts-1)
	d := float64(p.BaseDelay)
	for i := 1; i < p.MaxAttempts; i++ {
		cur := time.Duration(d)
		if cur > p.MaxDelay {
			cur = p.MaxDelay
		}
		out = append(out, cur)
		d *= p.Multiplier
	}
	return out
}

// Budget 返回在单次调用耗时 perAttempt 时，整个重试过程的最长耗时。
func (p Policy) Budget(perAttempt time.Duration) time.Duration {
	p = p.normalized()
	total := time.Duration(p.MaxAttempts) * perAttempt
	for _, d := range p.Delays() {
		total += d
	}
	return total
}

// Permanent 包装不应重试的错误，Do 会立即返回其内部错误。
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Notify 在每次失败且即将重试时被调用。
type Notify func(err error, next time.Duration)

// Do 按策略执行 op，直到成功、遇到 Permanent 错误、ctx 结束或次数用尽。
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), notify ...Notify) (T, error) {
	p = p.normalized()
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          p.Multiplier,
		MaxInterval:         p.MaxDelay,
	}
	b.Reset()

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	}
	if len(notify) > 0 && notify[0] != nil {
		opts = append(opts, backoff.WithNotify(backoff.Notify(notify[0])))
	}
	return backoff.Retry(ctx, func() (T, error) {
		return op(ctx)
	}, opts...)
}
