// Package engine 组装推荐链路：召回（内容 / 交互）-> 投票排序 -> 可配置的后处理 -> 截断 -> 媒体解析。
//
// Engine 持有一份不可变的模型快照，Reload 原子替换快照，进行中的请求继续使用旧快照。
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/history"
	"github.com/rushteam/cinerec/media"
	"github.com/rushteam/cinerec/metrics"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/rank"
	"github.com/rushteam/cinerec/recall"
	"github.com/rushteam/cinerec/rerank"
	"github.com/rushteam/cinerec/similarity"
)

// Engine 是推荐引擎。
type Engine struct {
	snap atomic.Pointer[Snapshot]

	cfg       core.RecommendConfig
	mode      core.Mode
	tokenizer *similarity.Tokenizer
	postRank  *pipeline.Pipeline
	cascade   *media.Cascade
	workers   int
	history   *history.History
}

// Option 配置 Engine。
type Option func(*Engine)

// WithConfig 设置推荐默认值与上限。
func WithConfig(cfg core.RecommendConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithDefaultMode 设置请求未指定模式时使用的模式。
func WithDefaultMode(m core.Mode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithTokenizer 设置内容模型的分词器。
func WithTokenizer(tok *similarity.Tokenizer) Option {
	return func(e *Engine) { e.tokenizer = tok }
}

// WithPostRank 设置排序之后、截断之前执行的 Node（过滤等）。
func WithPostRank(p *pipeline.Pipeline) Option {
	return func(e *Engine) { e.postRank = p }
}

// WithMedia 设置媒体解析级联，workers 为并发解析数。
func WithMedia(c *media.Cascade, workers int) Option {
	return func(e *Engine) {
		e.cascade = c
		e.workers = workers
	}
}

// WithHistory 设置查看记录。
func WithHistory(h *history.History) Option {
	return func(e *Engine) { e.history = h }
}

// New 由目录构建模型并创建 Engine。
func New(c *catalog.Catalog, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, errors.New("engine: nil catalog")
	}
	e := &Engine{
		cfg:  &core.DefaultRecommendConfig{},
		mode: core.ModeHybrid,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.history == nil {
		e.history = history.New(history.DefaultSize)
	}
	e.snap.Store(Build(c, e.tokenizer))
	return e, nil
}

// Reload 用新目录重建模型并原子替换快照。
func (e *Engine) Reload(c *catalog.Catalog) error {
	if c == nil {
		return errors.New("engine: nil catalog")
	}
	e.snap.Store(Build(c, e.tokenizer))
	return nil
}

// Snapshot 返回当前快照。
func (e *Engine) Snapshot() *Snapshot { return e.snap.Load() }

// Catalog 返回当前目录。
func (e *Engine) Catalog() *catalog.Catalog { return e.snap.Load().Catalog }

// Request 是一次推荐请求。N 为 0 时使用默认条数，Mode 为空时使用默认模式。
type Request struct {
	SeedID    int64
	N         int
	Mode      core.Mode
	WithMedia bool
}

// Recommendation 是一条推荐结果。
type Recommendation struct {
	Movie   core.Movie    `json:"movie"`
	Score   float64       `json:"score"`
	Sources []string      `json:"sources"`
	Media   *media.Record `json:"media,omitempty"`
}

// Recommend 返回与种子最相似的至多 N 个条目。
//
// 种子不在目录中返回 NOT_FOUND；N 或模式非法返回 INVALID_INPUT。
// 种子没有交互记录时交互召回为空，不视为错误；两路召回都为空时返回空列表。
func (e *Engine) Recommend(ctx context.Context, req Request) ([]Recommendation, error) {
	start := time.Now()
	raw := req.Mode
	if raw == "" {
		raw = e.mode
	}
	mode, err := core.ParseMode(string(raw))
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("unknown", outcome(err)).Inc()
		return nil, err
	}
	recs, err := e.recommend(ctx, req, mode)
	metrics.RecommendRequests.WithLabelValues(string(mode), outcome(err)).Inc()
	metrics.ObserveSince(metrics.RecommendDuration.WithLabelValues(string(mode)), start)
	return recs, err
}

func (e *Engine) recommend(ctx context.Context, req Request, mode core.Mode) ([]Recommendation, error) {
	n := req.N
	if n == 0 {
		n = e.cfg.DefaultTopN()
	}
	if n < 0 || n > e.cfg.MaxTopN() {
		return nil, core.InvalidInput(core.ModuleEngine, "engine: n must be in [1, %d], got %d", e.cfg.MaxTopN(), n)
	}

	snap := e.snap.Load()
	seed, err := snap.Catalog.Get(req.SeedID)
	if err != nil {
		return nil, err
	}
	e.history.Add(*seed)

	if d := e.cfg.DefaultTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	rctx := &core.RecommendContext{
		RequestID: logging.RequestIDFromContext(ctx),
		SeedID:    seed.ID,
		Seed:      seed,
		N:         n,
		Mode:      mode,
		Params:    map[string]any{"with_media": req.WithMedia},
	}
	items, err := e.pipelineFor(snap, mode, req.WithMedia).Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Int64("seed", seed.ID).
		Str("mode", string(mode)).
		Int("n", n).
		Int("results", len(items)).
		Msg("recommend done")
	return toRecommendations(items), nil
}

// pipelineFor 按模式组装 Pipeline。
// 混合模式下两路召回各取 2n 条，按出现的召回源数量投票排序后截断为 n。
func (e *Engine) pipelineFor(snap *Snapshot, mode core.Mode, withMedia bool) *pipeline.Pipeline {
	overfetch := 1
	if mode == core.ModeHybrid || e.hasPostRank() {
		overfetch = e.cfg.DefaultOverfetch()
	}
	content := &recall.ContentSource{Model: snap.Content, Catalog: snap.Catalog, Overfetch: overfetch}
	interaction := &recall.InteractionSource{Model: snap.Interaction, Catalog: snap.Catalog, Overfetch: overfetch}

	var sources []recall.Source
	switch mode {
	case core.ModeContent:
		sources = []recall.Source{content}
	case core.ModeInteraction:
		sources = []recall.Source{interaction}
	default:
		// 内容列表在前：同分候选按先内容后交互的出现顺序排列
		sources = []recall.Source{content, interaction}
	}

	nodes := []pipeline.Node{&recall.Fanout{
		Sources:       sources,
		Dedup:         true,
		MergeStrategy: recall.FirstMergeStrategy{},
	}}
	if mode == core.ModeHybrid {
		nodes = append(nodes, &rank.VoteNode{LabelKey: recall.LabelRecallSource})
	}
	if e.hasPostRank() {
		nodes = append(nodes, e.postRank.Nodes...)
	}
	nodes = append(nodes, &rerank.TopNNode{})
	if withMedia && e.cascade != nil {
		nodes = append(nodes, &media.EnrichNode{Cascade: e.cascade, Workers: e.workers})
	}
	return &pipeline.Pipeline{Nodes: nodes}
}

func (e *Engine) hasPostRank() bool {
	return e.postRank != nil && len(e.postRank.Nodes) > 0
}

func toRecommendations(items []*core.Item) []Recommendation {
	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil || it.Movie == nil {
			continue
		}
		rec := Recommendation{Movie: *it.Movie, Score: it.Score, Sources: []string{}}
		if lbl, ok := it.GetLabel(recall.LabelRecallSource); ok {
			rec.Sources = lbl.Values()
		}
		if m, ok := media.RecordOf(it); ok {
			rec.Media = &m
		}
		out = append(out, rec)
	}
	return out
}

// ResolveMedia 解析目录条目的媒体信息。未配置级联时返回占位海报。
func (e *Engine) ResolveMedia(ctx context.Context, id int64) (media.Record, error) {
	m, err := e.snap.Load().Catalog.Get(id)
	if err != nil {
		return media.Record{}, err
	}
	if e.cascade == nil {
		return media.Record{PosterURL: media.DefaultPosterURL, PosterSource: media.SourcePlaceholder}, nil
	}
	return e.cascade.Resolve(ctx, media.QueryFor(m)), nil
}

// Item 返回目录条目。
func (e *Engine) Item(id int64) (*core.Movie, error) {
	return e.snap.Load().Catalog.Get(id)
}

// Search 按标题搜索目录。
func (e *Engine) Search(query string, limit int) []core.Movie {
	return e.snap.Load().Catalog.Search(query, limit)
}

// History 返回最近查看的种子，最新的在前。
func (e *Engine) History() []history.Entry {
	return e.history.List()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case core.IsNotFound(err):
		return "not_found"
	case core.IsInvalidInput(err):
		return "invalid"
	default:
		return "error"
	}
}
