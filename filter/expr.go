package filter

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式判断条目，例如 `item.year >= 1980`。
// 默认保留表达式为 true 的条目；Invert 为 true 时过滤表达式为 true 的条目。
type ExprFilter struct {
	program *dsl.Program
	Invert  bool
}

// NewExprFilter 编译表达式。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: p, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	ok, err := f.program.Match(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return ok, nil
	}
	return !ok, nil
}
