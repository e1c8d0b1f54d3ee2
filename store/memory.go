package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/cinerec/core"
)

// MemoryStore 是内存实现的 Store，用于单实例部署与测试。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]entry
	now      func() time.Time
	interval time.Duration
	clean    *time.Ticker
	done     chan struct{}
	once     sync.Once
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示永不过期
}

func (e entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && !now.Before(e.expire)
}

// MemoryOption 配置 MemoryStore。
type MemoryOption func(*MemoryStore)

// WithClock 替换时间源，测试中用于推进 TTL。
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// WithCleanupInterval 设置过期条目的清理周期，<= 0 表示不后台清理。
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *MemoryStore) { m.interval = d }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	ms := &MemoryStore{
		data:     make(map[string]entry),
		now:      time.Now,
		interval: time.Minute,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.interval > 0 {
		ms.clean = time.NewTicker(ms.interval)
		go ms.cleanup()
	}
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || e.expired(m.now()) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if len(ttl) > 0 && ttl[0] > 0 {
		e.expire = m.now().Add(time.Duration(ttl[0]) * time.Second)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Len 返回未过期条目数。
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	n := 0
	for _, e := range m.data {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		if m.clean != nil {
			m.clean.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
			m.evictExpired()
		}
	}
}

func (m *MemoryStore) evictExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
}
