package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"spiritlife-frontend/internal/audio"
	"spiritlife-frontend/internal/config"
	"spiritlife-frontend/internal/frontend"
	"spiritlife-frontend/internal/logging"
	"spiritlife-frontend/internal/search"
	"spiritlife-frontend/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	sweepEvery      = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.LogLevel)

	handler, cleanup, err := setupServer(ctx, cfg)
	if err != nil {
		log.Fatalf("frontend: %v", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithFields(log.Fields{
		"port":   cfg.Port,
		"search": cfg.SearchAPIURL,
		"redis":  cfg.RedisURL != "",
	}).Info("sermon search frontend listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("frontend: %v", err)
	}
}

// setupServer builds the handler tree from cfg. The returned cleanup
// closes the Redis client when one was opened.
func setupServer(ctx context.Context, cfg config.Config) (http.Handler, func(), error) {
	cache := audio.NewCache(cfg.AudioCacheMaxBytes)
	fetcher := audio.NewFetcher(cfg.AudioFetchTimeout, cache)
	client := search.NewClient(cfg.SearchAPIURL, cfg.SearchTimeout, cfg.SearchRateLimit)

	sessions := session.NewStore(cfg.SessionIdleTTL)
	sessions.StartSweeper(ctx, sweepEvery)

	cleanup := func() {}
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, errors.New("invalid REDIS_URL: " + err.Error())
		}
		rdb = redis.NewClient(opt)
		cleanup = func() { _ = rdb.Close() }
	}

	var metrics *frontend.Metrics
	if cfg.MetricsEnabled {
		metrics = frontend.NewMetrics(cache)
	}

	s, err := frontend.NewServer(client, fetcher, sessions, frontend.NewPublisher(rdb), metrics, frontend.Options{
		PageTitle:         cfg.PageTitle,
		DateFilterEnabled: cfg.DateFilterEnabled,
		AudioPrefetch:     cfg.AudioPrefetch,
		SearchTimeout:     cfg.SearchTimeout,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	r := s.Router(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger,
		middleware.Recoverer,
	)
	return r, cleanup, nil
}
