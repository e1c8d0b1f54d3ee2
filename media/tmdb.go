package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// TMDB 默认地址
const (
	DefaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	DefaultTMDBImageURL = "https://image.tmdb.org/t/p/w500"
	YouTubeWatchURL     = "https://www.youtube.com/watch?v="
)

// TMDBConfig 是 TMDB 客户端配置。
type TMDBConfig struct {
	APIKey       string `koanf:"api_key"`
	BaseURL      string `koanf:"base_url"`
	ImageBaseURL string `koanf:"image_base_url"`
}

// TMDB 提供两个 Resolver：海报（tmdb.poster）与预告片（tmdb.videos）。
type TMDB struct {
	cfg    TMDBConfig
	client *http.Client
}

func NewTMDB(cfg TMDBConfig, client *http.Client) *TMDB {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTMDBBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultTMDBImageURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.ImageBaseURL = strings.TrimRight(cfg.ImageBaseURL, "/")
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &TMDB{cfg: cfg, client: client}
}

// Posters 返回海报 Resolver。
func (t *TMDB) Posters() Resolver {
	return ResolverFunc{ID: "tmdb.poster", Fn: t.poster}
}

// Videos 返回预告片 Resolver。
func (t *TMDB) Videos() Resolver {
	return ResolverFunc{ID: "tmdb.videos", Fn: t.trailer}
}

type tmdbMovie struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

type tmdbSearch struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbVideos struct {
	Results []struct {
		Key      string `json:"key"`
		Site     string `json:"site"`
		Type     string `json:"type"`
		Official bool   `json:"official"`
	} `json:"results"`
}

func (t *TMDB) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", t.cfg.APIKey)
	return t.cfg.BaseURL + path + "?" + params.Encode()
}

// lookup 优先按 TMDB ID 读取详情，否则按标题与年份搜索取第一条。
func (t *TMDB) lookup(ctx context.Context, q Query) (tmdbMovie, error) {
	if t.cfg.APIKey == "" {
		return tmdbMovie{}, errNotConfigured("tmdb")
	}
	if q.TMDBID > 0 {
		var m tmdbMovie
		err := getJSON(ctx, t.client, t.endpoint("/movie/"+strconv.FormatInt(q.TMDBID, 10), nil), &m)
		return m, err
	}
	if strings.TrimSpace(q.Title) == "" {
		return tmdbMovie{}, ErrEmptyResult
	}
	params := url.Values{"query": {q.Title}}
	if q.Year > 0 {
		params.Set("year", strconv.Itoa(q.Year))
	}
	var res tmdbSearch
	if err := getJSON(ctx, t.client, t.endpoint("/search/movie", params), &res); err != nil {
		return tmdbMovie{}, err
	}
	if len(res.Results) == 0 {
		return tmdbMovie{}, ErrEmptyResult
	}
	return res.Results[0], nil
}

func (t *TMDB) poster(ctx context.Context, q Query) (string, error) {
	m, err := t.lookup(ctx, q)
	if err != nil {
		return "", err
	}
	if m.PosterPath == "" {
		return "", ErrEmptyResult
	}
	return t.cfg.ImageBaseURL + m.PosterPath, nil
}

// trailer 选取 YouTube 上的 Trailer，官方发布的优先。
func (t *TMDB) trailer(ctx context.Context, q Query) (string, error) {
	id := q.TMDBID
	if id <= 0 {
		m, err := t.lookup(ctx, q)
		if err != nil {
			return "", err
		}
		id = m.ID
	}
	if t.cfg.APIKey == "" {
		return "", errNotConfigured("tmdb")
	}
	var res tmdbVideos
	if err := getJSON(ctx, t.client, t.endpoint(fmt.Sprintf("/movie/%d/videos", id), nil), &res); err != nil {
		return "", err
	}
	key := ""
	for _, v := range res.Results {
		if !strings.EqualFold(v.Site, "YouTube") || !strings.EqualFold(v.Type, "Trailer") || v.Key == "" {
			continue
		}
		if v.Official {
			key = v.Key
			break
		}
		if key == "" {
			key = v.Key
		}
	}
	if key == "" {
		return "", ErrEmptyResult
	}
	return YouTubeWatchURL + key, nil
}
