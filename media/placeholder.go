package media

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultPosterURL 是默认占位海报。
const DefaultPosterURL = "https://via.placeholder.com/150x225?text=No+Poster"

// Placeholder 生成占位海报 URL。WithTitle 为 true 时把标题与年份写入 text 参数，便于排查。
type Placeholder struct {
	URL       string
	WithTitle bool
}

func (p Placeholder) base() string {
	if p.URL == "" {
		return DefaultPosterURL
	}
	return p.URL
}

// Poster 返回 q 对应的占位海报，结果只取决于 q。
func (p Placeholder) Poster(q Query) string {
	raw := p.base()
	if !p.WithTitle || q.Title == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	text := q.Title
	if q.Year > 0 {
		text = fmt.Sprintf("%s (%d)", q.Title, q.Year)
	}
	values := u.Query()
	values.Set("text", text)
	u.RawQuery = values.Encode()
	return u.String()
}

// Is 报告 raw 是否为占位海报（忽略查询参数）。
func (p Placeholder) Is(raw string) bool {
	base := p.base()
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return raw == base || strings.HasPrefix(raw, base+"?")
}
