// Package similarity 构建条目间的相似度模型。
//
// ContentModel 基于类型标签的 TF-IDF 余弦相似度；InteractionModel 基于交互矩阵行向量的余弦距离。
// 两者都以 catalog.Index 作为唯一的 ID 与行号映射，构建后只读，可并发查询。
package similarity

import (
	"math"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
)

// ContentModel 是内容相似度模型。
//
// 相似度矩阵不整体物化：每个条目保存 L2 归一化后的稀疏 TF-IDF 向量，
// 查询时按需计算一行。对角线恒为 1，与向量是否为零无关。
type ContentModel struct {
	index    *catalog.Index
	vocab    *Vocabulary
	idf      []float64
	vectors  []sparseVector
	postings [][]int32 // term -> 含该词的行号（升序）
}

// NewContentModel 基于目录中每个条目的类型标签构建模型。tok 为 nil 时使用默认 Tokenizer。
func NewContentModel(c *catalog.Catalog, tok *Tokenizer) *ContentModel {
	if tok == nil {
		tok = NewTokenizer()
	}
	n := c.Len()
	docs := make([][]string, n)
	for row := 0; row < n; row++ {
		docs[row] = tok.Tokenize(c.At(row).GenreDocument())
	}
	vocab := newVocabulary(docs)

	// idf = ln((1 + N) / (1 + df)) + 1
	df := make([]int, vocab.Len())
	for _, d := range docs {
		seen := make(map[int32]struct{}, len(d))
		for _, w := range d {
			t := vocab.index[w]
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	idf := make([]float64, vocab.Len())
	for t, f := range df {
		idf[t] = math.Log(float64(1+n)/float64(1+f)) + 1
	}

	m := &ContentModel{
		index:    c.Index(),
		vocab:    vocab,
		idf:      idf,
		vectors:  make([]sparseVector, n),
		postings: make([][]int32, vocab.Len()),
	}
	for row, d := range docs {
		tf := make(map[int32]float64, len(d))
		for _, w := range d {
			tf[vocab.index[w]]++
		}
		for t := range tf {
			tf[t] *= idf[t]
		}
		v := newSparse(tf)
		if norm := v.norm(); norm > 0 {
			for i := range v.val {
				v.val[i] /= norm
			}
		}
		m.vectors[row] = v
		for _, t := range v.idx {
			m.postings[t] = append(m.postings[t], int32(row))
		}
	}
	return m
}

// Vocabulary 返回模型词表。
func (m *ContentModel) Vocabulary() *Vocabulary { return m.vocab }

// Similarity 返回两个条目的内容相似度，取值 [0, 1]。
func (m *ContentModel) Similarity(a, b int64) (float64, error) {
	ra, ok := m.index.Row(a)
	if !ok {
		return 0, core.ItemNotFound(a)
	}
	rb, ok := m.index.Row(b)
	if !ok {
		return 0, core.ItemNotFound(b)
	}
	return m.at(ra, rb), nil
}

func (m *ContentModel) at(ra, rb int) float64 {
	if ra == rb {
		return 1
	}
	s := dot(m.vectors[ra], m.vectors[rb])
	// 浮点误差可能略超出 [0, 1]
	switch {
	case s > 1:
		return 1
	case s < 0:
		return 0
	}
	return s
}

// Row 返回条目与全部条目的相似度，顺序与 catalog.Index 行号一致。
func (m *ContentModel) Row(id int64) ([]float64, error) {
	r, ok := m.index.Row(id)
	if !ok {
		return nil, core.ItemNotFound(id)
	}
	out := make([]float64, m.index.Len())
	for _, row := range m.candidates(r) {
		out[row] = m.at(r, row)
	}
	out[r] = 1
	return out, nil
}

// candidates 返回与行 r 至少共享一个词的行号（含 r 本身）。
func (m *ContentModel) candidates(r int) []int {
	seen := make(map[int32]struct{})
	var rows []int
	for _, t := range m.vectors[r].idx {
		for _, row := range m.postings[t] {
			if _, ok := seen[row]; ok {
				continue
			}
			seen[row] = struct{}{}
			rows = append(rows, int(row))
		}
	}
	return rows
}

// TopSimilar 返回与 id 最相似的至多 n 个条目，不含 id 本身。
//
// 只返回相似度大于 0 的条目；相似度相同按 ID 升序。
// id 不在目录中时返回 NOT_FOUND；n <= 0 返回空结果。
func (m *ContentModel) TopSimilar(id int64, n int) ([]Neighbor, error) {
	r, ok := m.index.Row(id)
	if !ok {
		return nil, core.ItemNotFound(id)
	}
	if n <= 0 {
		return nil, nil
	}
	var ns []Neighbor
	for _, row := range m.candidates(r) {
		if row == r {
			continue
		}
		if s := m.at(r, row); s > 0 {
			ns = append(ns, Neighbor{ID: m.index.ID(row), Score: s})
		}
	}
	sortNeighbors(ns)
	if len(ns) > n {
		ns = ns[:n]
	}
	return ns, nil
}
