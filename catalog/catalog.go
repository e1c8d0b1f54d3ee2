// Package catalog 维护推荐目录：条目、交互记录以及 ID 与行号的映射。
//
// Catalog 构建后只读，可被多个 goroutine 并发访问；重新加载时应整体替换。
package catalog

import (
	"sort"
	"strings"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/logging"
)

// Catalog 是只读的条目目录。
type Catalog struct {
	movies       []core.Movie
	index        *Index
	interactions []core.Interaction
}

// New 校验并构建目录。
//
//   - 条目 ID 必须为正且唯一
//   - Genres 为 nil 时归一为空切片
//   - 引用未知条目的交互记录被丢弃
func New(movies []core.Movie, interactions []core.Interaction) (*Catalog, error) {
	ms := make([]core.Movie, len(movies))
	ids := make([]int64, len(movies))
	for i, m := range movies {
		if m.ID <= 0 {
			return nil, core.InvalidInput(core.ModuleCatalog, "catalog: invalid item id %d at position %d", m.ID, i)
		}
		if m.Genres == nil {
			m.Genres = []string{}
		}
		ms[i] = m
		ids[i] = m.ID
	}
	index, err := NewIndex(ids)
	if err != nil {
		return nil, err
	}

	kept := make([]core.Interaction, 0, len(interactions))
	dropped := 0
	for _, in := range interactions {
		if _, ok := index.Row(in.ItemID); !ok {
			dropped++
			continue
		}
		kept = append(kept, in)
	}
	if dropped > 0 {
		logging.Warn().Int("dropped", dropped).Msg("catalog: interactions reference unknown items")
	}

	return &Catalog{movies: ms, index: index, interactions: kept}, nil
}

// Get 返回条目，不存在时返回 NOT_FOUND 领域错误。
func (c *Catalog) Get(id int64) (*core.Movie, error) {
	row, ok := c.index.Row(id)
	if !ok {
		return nil, core.ItemNotFound(id)
	}
	return &c.movies[row], nil
}

// At 返回行号对应的条目。
func (c *Catalog) At(row int) *core.Movie { return &c.movies[row] }

func (c *Catalog) Len() int { return len(c.movies) }

func (c *Catalog) Index() *Index { return c.index }

func (c *Catalog) Interactions() []core.Interaction { return c.interactions }

// Search 按标题做不区分大小写的子串匹配，前缀匹配优先，其余按标题排序。
// limit <= 0 表示不限制。
func (c *Catalog) Search(query string, limit int) []core.Movie {
	q := strings.ToLower(strings.TrimSpace(query))
	type hit struct {
		m      *core.Movie
		prefix bool
		title  string
	}
	var hits []hit
	for i := range c.movies {
		m := &c.movies[i]
		title := strings.ToLower(m.Title)
		if q != "" && !strings.Contains(title, q) {
			continue
		}
		hits = append(hits, hit{m: m, prefix: q != "" && strings.HasPrefix(title, q), title: title})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].prefix != hits[j].prefix {
			return hits[i].prefix
		}
		if hits[i].title != hits[j].title {
			return hits[i].title < hits[j].title
		}
		return hits[i].m.ID < hits[j].m.ID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]core.Movie, len(hits))
	for i, h := range hits {
		out[i] = *h.m
	}
	return out
}
