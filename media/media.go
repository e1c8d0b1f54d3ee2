// Package media 为条目解析海报与预告片。
//
// 每一类媒体由一组有序的 Resolver 组成级联：依次尝试，第一个返回可用 URL 的 Resolver 胜出，
// 全部失败时海报回落到占位图、预告片视为不可用。解析结果按 (标题, 年份) 缓存，带 TTL。
// Cascade.Resolve 总是返回一个 Record，不返回错误。
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rushteam/cinerec/core"
)

var (
	// ErrProviderUnavailable 表示单个 Provider 失败：网络错误、超时、非 2xx 或响应无法解析。
	ErrProviderUnavailable = errors.New("media: provider unavailable")

	// ErrEmptyResult 表示 Provider 正常响应但没有可用结果（例如 "N/A"）。
	ErrEmptyResult = fmt.Errorf("%w: empty result", ErrProviderUnavailable)

	// ErrNotConfigured 表示 Provider 缺少 API key 等配置，不会被重试。
	ErrNotConfigured = fmt.Errorf("%w: not configured", ErrProviderUnavailable)
)

// Kind 是媒体类型。
type Kind string

const (
	KindPoster  Kind = "poster"
	KindTrailer Kind = "trailer"
)

// SourcePlaceholder 是占位海报的来源标记。
const SourcePlaceholder = "placeholder"

// Query 是一次解析请求。TMDBID / IMDBID 可选，存在时 Provider 优先按 ID 精确查询。
type Query struct {
	Title  string
	Year   int
	TMDBID int64
	IMDBID string
}

// QueryFor 由目录条目构造 Query。
func QueryFor(m *core.Movie) Query {
	return Query{Title: m.Title, Year: m.Year, TMDBID: m.TMDBID, IMDBID: m.IMDBID}
}

// Key 返回缓存 key：归一化后的 "标题|年份"。
func (q Query) Key() string {
	title := strings.Join(strings.Fields(strings.ToLower(q.Title)), " ")
	return fmt.Sprintf("%s|%d", title, q.Year)
}

// Trailer 是预告片描述。
type Trailer struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// Record 是一个条目的媒体解析结果。Trailer 为 nil 表示预告片不可用。
type Record struct {
	PosterURL    string   `json:"poster_url"`
	PosterSource string   `json:"poster_source"`
	Trailer      *Trailer `json:"trailer,omitempty"`
}

// HasTrailer 报告预告片是否可用。
func (r Record) HasTrailer() bool { return r.Trailer != nil }

// Resolver 是级联中的一个阶段：解析出一个 URL，失败时返回错误。
type Resolver interface {
	Name() string
	TryResolve(ctx context.Context, q Query) (string, error)
}

// ResolverFunc 把函数适配为 Resolver。
type ResolverFunc struct {
	ID string
	Fn func(ctx context.Context, q Query) (string, error)
}

func (r ResolverFunc) Name() string { return r.ID }

func (r ResolverFunc) TryResolve(ctx context.Context, q Query) (string, error) {
	return r.Fn(ctx, q)
}

// providerTag 取 Resolver 名称中 '.' 之前的部分，例如 "youtube.search" -> "youtube"。
func providerTag(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
