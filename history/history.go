// Package history 记录最近查看的种子条目。
package history

import (
	"sync"
	"time"

	"github.com/rushteam/cinerec/core"
)

// DefaultSize 是默认保留的条目数。
const DefaultSize = 5

// Entry 是一条查看记录。
type Entry struct {
	Movie    core.Movie `json:"movie"`
	ViewedAt time.Time  `json:"viewed_at"`
}

// History 是有界的最近查看列表，同一条目重复查看时移到最新位置。
type History struct {
	mu      sync.Mutex
	size    int
	entries []Entry // 由旧到新
	now     func() time.Time
}

// New 创建 History，size <= 0 时使用 DefaultSize。
func New(size int) *History {
	if size <= 0 {
		size = DefaultSize
	}
	return &History{size: size, now: time.Now}
}

// Add 记录一次查看。
func (h *History) Add(m core.Movie) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, e := range h.entries {
		if e.Movie.ID == m.ID {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, Entry{Movie: m, ViewedAt: h.now()})
	if over := len(h.entries) - h.size; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// List 返回记录，最新的在前。
func (h *History) List() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// Clear 清空记录。
func (h *History) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.mu.Unlock()
}
