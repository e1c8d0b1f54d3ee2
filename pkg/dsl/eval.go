package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cinerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的 Label DSL 表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次，可在多个 goroutine 中重复求值。
//
// 表达式语法（CEL 标准语法）：
//   - 条目：item.year >= 2000 / item.title.contains("Story") / "Comedy" in item.genres
//   - 分数：item.score >= 2.0
//   - 标签：label.recall_source.contains("interaction")
//   - 请求：rctx.mode == "hybrid" / item.id != rctx.seed_id
//   - 存在性：label.recall_source != null
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译 DSL 表达式。空表达式恒为 true。
func Compile(expr string) (*Program, error) {
	p := &Program{expr: expr}
	if expr == "" {
		return p, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	p.prg = prg
	return p, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Match 对单个条目求值，返回布尔结果。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 会报错，应先用 label.key != null 检查存在性
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	it := map[string]any{
		"id":     item.ID,
		"score":  item.Score,
		"title":  "",
		"year":   int64(0),
		"genres": []string{},
	}
	if m := item.Movie; m != nil {
		it["title"] = m.Title
		it["year"] = int64(m.Year)
		if m.Genres != nil {
			it["genres"] = m.Genres
		}
	}

	rc := map[string]any{
		"seed_id": int64(0),
		"n":       int64(0),
		"mode":    "",
		"params":  map[string]any{},
	}
	if rctx != nil {
		rc["seed_id"] = rctx.SeedID
		rc["n"] = int64(rctx.N)
		rc["mode"] = string(rctx.Mode)
		if rctx.Params != nil {
			rc["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  it,
		"label": labels,
		"rctx":  rc,
	}
}
