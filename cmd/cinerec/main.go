// Command cinerec 加载 MovieLens 目录，构建相似度模型并通过 HTTP 提供推荐与媒体解析。
//
//	cinerec -config cinerec.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/config"
	_ "github.com/rushteam/cinerec/config/builders"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/engine"
	"github.com/rushteam/cinerec/history"
	"github.com/rushteam/cinerec/media"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/logging"
	"github.com/rushteam/cinerec/server"
	"github.com/rushteam/cinerec/store"
)

func main() {
	path := flag.String("config", "", "config file (default: $CINEREC_CONFIG or ./cinerec.yaml)")
	flag.Parse()

	if err := run(*path); err != nil {
		logging.Error().Err(err).Msg("cinerec exited")
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.LoadMovieLens(cfg.Catalog.Dir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	st, err := openStore(cfg.Cache)
	if err != nil {
		return err
	}
	defer st.Close()
	config.SetStore(st)

	post, err := loadPostRank(cfg.Pipeline)
	if err != nil {
		return err
	}

	cascade, err := config.NewCascade(cfg.Media, media.NewStoreCache(st, cfg.Cache.TTL))
	if err != nil {
		return err
	}
	mode, err := core.ParseMode(cfg.Recommend.DefaultMode)
	if err != nil {
		return err
	}

	eng, err := engine.New(cat,
		engine.WithConfig(cfg.Recommend),
		engine.WithDefaultMode(mode),
		engine.WithPostRank(post),
		engine.WithMedia(cascade, cfg.Media.Workers),
		engine.WithHistory(history.New(cfg.History.Size)),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(eng, server.Options{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("store", st.Name()).
			Strs("poster_providers", cascade.Stages(media.KindPoster)).
			Strs("trailer_providers", cascade.Stages(media.KindTrailer)).
			Msg("cinerec listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func openStore(cc config.CacheConfig) (core.Store, error) {
	if cc.Driver == "redis" {
		s, err := store.NewRedisStore(cc.Redis)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return s, nil
	}
	return store.NewMemoryStore(), nil
}

func loadPostRank(path string) (*pipeline.Pipeline, error) {
	if path == "" {
		return nil, nil
	}
	pc, err := pipeline.LoadFromYAML(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	p, err := config.BuildPipeline(pc)
	if err != nil {
		return nil, fmt.Errorf("build pipeline %s: %w", path, err)
	}
	return p, nil
}
