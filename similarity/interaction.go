package similarity

import (
	"sort"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
)

// InteractionModel 是基于交互矩阵的近邻模型。
//
// 矩阵每行对应一个至少有一条交互的条目，列为行为者；缺失交互视为 0。
// 近邻检索为精确的暴力余弦距离，借助 行为者 -> 条目 倒排只遍历共享行为者的行。
type InteractionModel struct {
	index    *catalog.Index
	rows     []sparseVector
	norms    []float64
	itemRow  map[int64]int // 条目 ID -> 矩阵行
	itemIDs  []int64       // 矩阵行 -> 条目 ID
	postings [][]posting   // 列 -> (行, 权重)
	actors   int
}

type posting struct {
	row int32
	val float64
}

// NewInteractionModel 基于目录中的交互记录构建模型。
// 同一 (条目, 行为者) 出现多次时以最后一条为准；矩阵行按目录行号升序排列。
func NewInteractionModel(c *catalog.Catalog) *InteractionModel {
	index := c.Index()

	actorCol := make(map[int64]int32)
	cells := make(map[int]map[int32]float64) // 目录行号 -> 列 -> 权重
	for _, in := range c.Interactions() {
		catRow, ok := index.Row(in.ItemID)
		if !ok {
			continue
		}
		col, ok := actorCol[in.ActorID]
		if !ok {
			col = int32(len(actorCol))
			actorCol[in.ActorID] = col
		}
		if cells[catRow] == nil {
			cells[catRow] = make(map[int32]float64)
		}
		cells[catRow][col] = in.Weight
	}

	catRows := make([]int, 0, len(cells))
	for r := range cells {
		catRows = append(catRows, r)
	}
	sort.Ints(catRows)

	m := &InteractionModel{
		index:    index,
		itemRow:  make(map[int64]int, len(catRows)),
		postings: make([][]posting, len(actorCol)),
		actors:   len(actorCol),
	}
	for _, cr := range catRows {
		v := newSparse(cells[cr])
		if v.nnz() == 0 {
			continue
		}
		row := len(m.rows)
		id := index.ID(cr)
		m.rows = append(m.rows, v)
		m.norms = append(m.norms, v.norm())
		m.itemRow[id] = row
		m.itemIDs = append(m.itemIDs, id)
		for i, col := range v.idx {
			m.postings[col] = append(m.postings[col], posting{row: int32(row), val: v.val[i]})
		}
	}
	return m
}

// Items 返回矩阵中的条目数（至少有一条非零交互）。
func (m *InteractionModel) Items() int { return len(m.rows) }

// Actors 返回行为者数。
func (m *InteractionModel) Actors() int { return m.actors }

// Has 报告条目是否在交互矩阵中。
func (m *InteractionModel) Has(id int64) bool {
	_, ok := m.itemRow[id]
	return ok
}

// Distance 返回两个条目的余弦距离；任一条目不在矩阵中时 ok 为 false。
func (m *InteractionModel) Distance(a, b int64) (d float64, ok bool) {
	ra, okA := m.itemRow[a]
	rb, okB := m.itemRow[b]
	if !okA || !okB {
		return 0, false
	}
	if ra == rb {
		return 0, true
	}
	return 1 - dot(m.rows[ra], m.rows[rb])/(m.norms[ra]*m.norms[rb]), true
}

// kneighbors 返回行 r 的 k 个最近邻（余弦距离升序，含自身，自身总在首位）。
// 只包含相似度大于 0 的行。
func (m *InteractionModel) kneighbors(r, k int) []Neighbor {
	acc := make(map[int32]float64)
	q := m.rows[r]
	for i, col := range q.idx {
		for _, p := range m.postings[col] {
			if int(p.row) == r {
				continue
			}
			acc[p.row] += q.val[i] * p.val
		}
	}

	ns := make([]Neighbor, 0, len(acc)+1)
	ns = append(ns, Neighbor{ID: m.itemIDs[r], Score: 1})
	others := make([]Neighbor, 0, len(acc))
	for row, d := range acc {
		sim := d / (m.norms[r] * m.norms[row])
		if sim <= 0 {
			continue
		}
		if sim > 1 {
			sim = 1
		}
		others = append(others, Neighbor{ID: m.itemIDs[row], Score: sim})
	}
	sortNeighbors(others)
	ns = append(ns, others...)
	if len(ns) > k {
		ns = ns[:k]
	}
	return ns
}

// TopNeighbors 返回 id 的至多 n 个近邻，Score 为余弦相似度（1 - 距离）。
//
// 检索 n+1 个近邻后去掉自身；相似度相同按 ID 升序。
// id 不在交互矩阵中（冷启动）时返回空结果且不报错；id 不在目录中时返回 NOT_FOUND。
func (m *InteractionModel) TopNeighbors(id int64, n int) ([]Neighbor, error) {
	if _, ok := m.index.Row(id); !ok {
		return nil, core.ItemNotFound(id)
	}
	r, ok := m.itemRow[id]
	if !ok || n <= 0 {
		return nil, nil
	}
	knn := m.kneighbors(r, n+1)
	out := make([]Neighbor, 0, n)
	for _, nb := range knn {
		if nb.ID == id {
			continue
		}
		out = append(out, nb)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
