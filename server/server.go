// Package server 通过 HTTP 暴露目录查询、推荐与媒体解析。
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/engine"
	"github.com/rushteam/cinerec/history"
	"github.com/rushteam/cinerec/media"
	"github.com/rushteam/cinerec/pkg/logging"
)

// Recommender 是 HTTP 层依赖的引擎能力，由 *engine.Engine 实现。
type Recommender interface {
	Recommend(ctx context.Context, req engine.Request) ([]engine.Recommendation, error)
	ResolveMedia(ctx context.Context, id int64) (media.Record, error)
	Item(id int64) (*core.Movie, error)
	Search(query string, limit int) []core.Movie
	History() []history.Entry
}

var _ Recommender = (*engine.Engine)(nil)

// Options 是 HTTP 层参数。
type Options struct {
	// SearchLimit 是 /items 默认返回条数
	SearchLimit int
	// DefaultMode 为空时由引擎决定
	DefaultMode core.Mode
}

// Handler 处理 HTTP 请求。
type Handler struct {
	rec  Recommender
	opts Options
}

// New 返回挂载了全部路由的 http.Handler。
func New(rec Recommender, opts Options) http.Handler {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 20
	}
	h := &Handler{rec: rec, opts: opts}

	r := chi.NewRouter()
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog())

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.SearchItems)
		r.Get("/{id}", h.GetItem)
		r.Get("/{id}/media", h.GetMedia)
	})
	r.Get("/recommend", h.Recommend)
	r.Get("/history", h.History)
	return r
}

// RequestIDWithLogging 读取或生成 X-Request-ID，并写入日志上下文。
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := logging.ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccessLog 记录每个请求的状态码与耗时。
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ev := logging.Ctx(r.Context()).Debug()
			if status >= http.StatusInternalServerError {
				ev = logging.Ctx(r.Context()).Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}
