package media

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeConfig 是 YouTube Data API 客户端配置。
type YouTubeConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

// YouTube 提供预告片搜索 Resolver（youtube.search）。
type YouTube struct {
	cfg    YouTubeConfig
	client *http.Client
}

func NewYouTube(cfg YouTubeConfig, client *http.Client) *YouTube {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultYouTubeBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &YouTube{cfg: cfg, client: client}
}

func (y *YouTube) Trailers() Resolver {
	return ResolverFunc{ID: "youtube.search", Fn: y.search}
}

type youtubeSearch struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// searchQuery 返回 "<标题> <年份> official trailer"。
func searchQuery(q Query) string {
	parts := []string{strings.TrimSpace(q.Title)}
	if q.Year > 0 {
		parts = append(parts, strconv.Itoa(q.Year))
	}
	parts = append(parts, "official trailer")
	return strings.Join(parts, " ")
}

func (y *YouTube) search(ctx context.Context, q Query) (string, error) {
	if y.cfg.APIKey == "" {
		return "", errNotConfigured("youtube")
	}
	if strings.TrimSpace(q.Title) == "" {
		return "", ErrEmptyResult
	}
	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"maxResults": {"1"},
		"q":          {searchQuery(q)},
		"key":        {y.cfg.APIKey},
	}
	var res youtubeSearch
	if err := getJSON(ctx, y.client, y.cfg.BaseURL+"/search?"+params.Encode(), &res); err != nil {
		return "", err
	}
	if len(res.Items) == 0 || res.Items[0].ID.VideoID == "" {
		return "", ErrEmptyResult
	}
	return YouTubeWatchURL + res.Items[0].ID.VideoID, nil
}
