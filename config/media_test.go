package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rushteam/cinerec/media"
)

func TestNewCascadeOrderAndFallback(t *testing.T) {
	var ytCalls atomic.Int32
	yt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ytCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer yt.Close()
	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			_, _ = w.Write([]byte(`{"results":[{"id":949,"poster_path":"/heat.jpg"}]}`))
		case "/movie/949/videos":
			_, _ = w.Write([]byte(`{"results":[{"key":"abc","site":"YouTube","type":"Trailer","official":true}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer tmdb.Close()

	mc := Default().Media
	mc.PosterProviders = []string{"omdb", "tmdb"}
	mc.ProviderTimeout = time.Second
	mc.Retry.BaseDelay = time.Millisecond
	mc.Retry.MaxDelay = time.Millisecond
	mc.TMDB.APIKey = "k"
	mc.TMDB.BaseURL = tmdb.URL
	mc.YouTube.APIKey = "k"
	mc.YouTube.BaseURL = yt.URL
	mc.RateLimit = 100
	// OMDb 未配置 key，直接失败

	c, err := NewCascade(mc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Stages(media.KindPoster); !reflect.DeepEqual(got, []string{"omdb.poster", "tmdb.poster"}) {
		t.Fatalf("poster stages = %v", got)
	}
	if got := c.Stages(media.KindTrailer); !reflect.DeepEqual(got, []string{"youtube.search", "tmdb.videos"}) {
		t.Fatalf("trailer stages = %v", got)
	}

	rec := c.Resolve(context.Background(), media.Query{Title: "Heat", Year: 1995})
	if rec.PosterSource != "tmdb.poster" || rec.PosterURL != media.DefaultTMDBImageURL+"/heat.jpg" {
		t.Fatalf("poster = %+v", rec)
	}
	if rec.Trailer == nil || rec.Trailer.Provider != "tmdb" || rec.Trailer.URL != media.YouTubeWatchURL+"abc" {
		t.Fatalf("trailer = %+v", rec.Trailer)
	}
	if ytCalls.Load() != 2 {
		t.Fatalf("youtube calls = %d, want 2 (one retry)", ytCalls.Load())
	}
}

func TestNewCascadeUnknownProvider(t *testing.T) {
	mc := Default().Media
	mc.TrailerProviders = []string{"vimeo"}
	if _, err := NewCascade(mc, nil); err == nil {
		t.Fatal("expected error")
	}
}
