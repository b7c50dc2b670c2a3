package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/config"
	"github.com/hamed0406/drownwatch/internal/feed"
	"github.com/hamed0406/drownwatch/internal/httpapi"
	apimw "github.com/hamed0406/drownwatch/internal/httpapi/middleware"
	"github.com/hamed0406/drownwatch/internal/logging"
	"github.com/hamed0406/drownwatch/internal/poller"
	"github.com/hamed0406/drownwatch/internal/repo"
	"github.com/hamed0406/drownwatch/internal/repo/memory"
	"github.com/hamed0406/drownwatch/internal/repo/postgres"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var store repo.FeedbackStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Info("using_in_memory_store")
		store = memory.New()
	}

	fetcher := feed.NewFetcher(cfg.FetchTimeout)
	p := poller.New(logger, fetcher, cfg.FeedURL, cfg.PollInterval)
	go p.Run(ctx)

	api := httpapi.NewServer(logger, store, p, fetcher, cfg.FeedURL, cfg.DefaultVideoURL)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.String("feed_url", cfg.FeedURL))
	if err := http.ListenAndServe(cfg.Addr, api.Router(keys, cfg.RateLimitPerMin, cfg.RateLimitBurst)); err != nil {
		log.Fatal(err)
	}
}
