package similarity

import (
	"math"
	"sort"
)

// sparseVector 是按下标升序存储的稀疏向量。
type sparseVector struct {
	idx []int32
	val []float64
}

func (v sparseVector) nnz() int { return len(v.idx) }

// dot 按下标升序累加，dot(a, b) 与 dot(b, a) 的求和顺序相同，结果逐位相等。
func dot(a, b sparseVector) float64 {
	var s float64
	i, j := 0, 0
	for i < len(a.idx) && j < len(b.idx) {
		switch {
		case a.idx[i] == b.idx[j]:
			s += a.val[i] * b.val[j]
			i++
			j++
		case a.idx[i] < b.idx[j]:
			i++
		default:
			j++
		}
	}
	return s
}

func (v sparseVector) norm() float64 {
	var s float64
	for _, x := range v.val {
		s += x * x
	}
	return math.Sqrt(s)
}

// newSparse 由 map 构建向量，丢弃零值。
func newSparse(m map[int32]float64) sparseVector {
	v := sparseVector{
		idx: make([]int32, 0, len(m)),
		val: make([]float64, 0, len(m)),
	}
	for k, x := range m {
		if x != 0 {
			v.idx = append(v.idx, k)
		}
	}
	sort.Slice(v.idx, func(i, j int) bool { return v.idx[i] < v.idx[j] })
	for _, k := range v.idx {
		v.val = append(v.val, m[k])
	}
	return v
}

// Neighbor 是一个相似条目及其相似度。
type Neighbor struct {
	ID    int64
	Score float64
}

// sortNeighbors 按分数降序排列，分数相同按 ID 升序。
func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Score != ns[j].Score {
			return ns[i].Score > ns[j].Score
		}
		return ns[i].ID < ns[j].ID
	})
}
