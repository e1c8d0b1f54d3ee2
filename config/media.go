package config

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/rushteam/cinerec/media"
)

// NewCascade 按配置的 Provider 顺序组装媒体解析级联。
//
// 每个 Provider 依次包装限流与熔断；YouTube 搜索额外包装重试，重试预算即该阶段的时长上限。
func NewCascade(mc MediaConfig, cache media.Cache) (*media.Cascade, error) {
	client := media.NewHTTPClient(2 * mc.ProviderTimeout)
	tmdb := media.NewTMDB(mc.TMDB, client)
	omdb := media.NewOMDb(mc.OMDb, client)
	yt := media.NewYouTube(mc.YouTube, client)

	guard := func(r media.Resolver) media.Resolver {
		if mc.RateLimit > 0 {
			burst := mc.RateBurst
			if burst < 1 {
				burst = 1
			}
			r = media.WithRateLimit(r, rate.NewLimiter(rate.Limit(mc.RateLimit), burst))
		}
		return media.WithBreaker(r, mc.Breaker)
	}

	posters := make([]media.Resolver, 0, len(mc.PosterProviders))
	for _, name := range mc.PosterProviders {
		switch name {
		case "tmdb":
			posters = append(posters, guard(tmdb.Posters()))
		case "omdb":
			posters = append(posters, guard(omdb.Posters()))
		default:
			return nil, fmt.Errorf("unknown poster provider %q", name)
		}
	}

	trailers := make([]media.Resolver, 0, len(mc.TrailerProviders))
	for _, name := range mc.TrailerProviders {
		switch name {
		case "youtube":
			trailers = append(trailers, media.WithRetry(guard(yt.Trailers()), mc.Retry, mc.ProviderTimeout))
		case "tmdb":
			trailers = append(trailers, guard(tmdb.Videos()))
		default:
			return nil, fmt.Errorf("unknown trailer provider %q", name)
		}
	}

	opts := []media.CascadeOption{
		media.WithProviderTimeout(mc.ProviderTimeout),
		media.WithPlaceholder(media.Placeholder{URL: mc.PlaceholderURL, WithTitle: mc.PlaceholderWithTitle}),
	}
	if cache != nil {
		opts = append(opts, media.WithCache(cache))
	}
	return media.NewCascade(posters, trailers, opts...), nil
}
