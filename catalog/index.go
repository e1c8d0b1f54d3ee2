package catalog

import "fmt"

// Index 是条目 ID 与矩阵行号之间的双向映射。
// 内容模型与交互模型共享同一个 Index，行号即目录中的位置。
type Index struct {
	rows map[int64]int
	ids  []int64
}

// NewIndex 按给定顺序建立映射，ID 重复时返回错误。
func NewIndex(ids []int64) (*Index, error) {
	x := &Index{
		rows: make(map[int64]int, len(ids)),
		ids:  make([]int64, len(ids)),
	}
	for i, id := range ids {
		if _, dup := x.rows[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate item id %d", id)
		}
		x.rows[id] = i
		x.ids[i] = id
	}
	return x, nil
}

// Row 返回 ID 对应的行号。
func (x *Index) Row(id int64) (int, bool) {
	r, ok := x.rows[id]
	return r, ok
}

// ID 返回行号对应的条目 ID。
func (x *Index) ID(row int) int64 { return x.ids[row] }

func (x *Index) Len() int { return len(x.ids) }
