package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/engine"
	"github.com/rushteam/cinerec/pkg/logging"
)

type envelope struct {
	Data      any       `json:"data,omitempty"`
	Error     *apiError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := envelope{Data: data, RequestID: logging.RequestIDFromContext(r.Context())}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("encode response")
	}
}

// respondError 把领域错误映射为 HTTP 状态码：NOT_FOUND -> 404，INVALID_INPUT -> 400，其余 500。
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, core.ErrorCodeInternalError
	msg := "internal error"
	if de := core.GetDomainError(err); de != nil {
		code = de.Code
		msg = de.Message
		switch de.Code {
		case core.ErrorCodeNotFound:
			status = http.StatusNotFound
		case core.ErrorCodeInvalidInput:
			status = http.StatusBadRequest
		case core.ErrorCodeUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Error:     &apiError{Code: code, Message: msg},
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.InvalidInput(core.ModuleEngine, "invalid item id %q", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.InvalidInput(core.ModuleEngine, "invalid %s %q", key, raw)
	}
	return n, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, core.InvalidInput(core.ModuleEngine, "invalid %s %q", key, raw)
	}
	return b, nil
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchItems handles GET /items?q=&limit=
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if limit <= 0 {
		limit = h.opts.SearchLimit
	}
	respondJSON(w, r, http.StatusOK, h.rec.Search(r.URL.Query().Get("q"), limit))
}

// GetItem handles GET /items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	m, err := h.rec.Item(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, m)
}

// GetMedia handles GET /items/{id}/media
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	rec, err := h.rec.ResolveMedia(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, rec)
}

// Recommend handles GET /recommend?seed=&n=&mode=&media=
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seed, err := parseID(q.Get("seed"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	n, err := queryInt(r, "n")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if q.Has("n") && n <= 0 {
		respondError(w, r, core.InvalidInput(core.ModuleEngine, "n must be positive, got %d", n))
		return
	}
	withMedia, err := queryBool(r, "media")
	if err != nil {
		respondError(w, r, err)
		return
	}
	mode := core.Mode(q.Get("mode"))
	if mode == "" {
		mode = h.opts.DefaultMode
	}

	recs, err := h.rec.Recommend(r.Context(), engine.Request{
		SeedID:    seed,
		N:         n,
		Mode:      mode,
		WithMedia: withMedia,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recs)
}

// History handles GET /history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.rec.History())
}
