package media

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultOMDbBaseURL = "https://www.omdbapi.com/"

// OMDbConfig 是 OMDb 客户端配置。
type OMDbConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

// OMDb 提供海报 Resolver（omdb.poster）。
type OMDb struct {
	cfg    OMDbConfig
	client *http.Client
}

func NewOMDb(cfg OMDbConfig, client *http.Client) *OMDb {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOMDbBaseURL
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &OMDb{cfg: cfg, client: client}
}

func (o *OMDb) Posters() Resolver {
	return ResolverFunc{ID: "omdb.poster", Fn: o.poster}
}

type omdbResponse struct {
	Response string `json:"Response"`
	Poster   string `json:"Poster"`
	Error    string `json:"Error"`
}

func (o *OMDb) poster(ctx context.Context, q Query) (string, error) {
	if o.cfg.APIKey == "" {
		return "", errNotConfigured("omdb")
	}
	params := url.Values{"apikey": {o.cfg.APIKey}, "type": {"movie"}}
	switch {
	case q.IMDBID != "":
		params.Set("i", q.IMDBID)
	case strings.TrimSpace(q.Title) != "":
		params.Set("t", q.Title)
		if q.Year > 0 {
			params.Set("y", strconv.Itoa(q.Year))
		}
	default:
		return "", ErrEmptyResult
	}

	var res omdbResponse
	if err := getJSON(ctx, o.client, o.cfg.BaseURL+"?"+params.Encode(), &res); err != nil {
		return "", err
	}
	// {"Response":"False","Error":"Movie not found!"} 是正常响应
	if !strings.EqualFold(res.Response, "True") {
		return "", ErrEmptyResult
	}
	if res.Poster == "" || strings.EqualFold(res.Poster, "N/A") {
		return "", ErrEmptyResult
	}
	return res.Poster, nil
}
