package main

import (
	"context"
	"detectbot/internal/adapters/converter"
	"detectbot/internal/adapters/cursor"
	"detectbot/internal/adapters/detector"
	"detectbot/internal/adapters/handler"
	"detectbot/internal/adapters/metrics"
	"detectbot/internal/adapters/twitter"
	"detectbot/internal/config"
	"detectbot/internal/core/service"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("starting detectbot...")

	v := config.New()

	log.Info().Msg("reading config file...")
	err := v.ReadInConfig()
	if err != nil {
		log.Warn().Err(err).Msg("could not read config file, relying on environment")
	}

	cfg, err := config.Load(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := cursor.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing cursor store")
	}
	defer store.Close()

	recorder := metrics.NewPrometheus()
	if cfg.MetricsListen != "" {
		go serveMetrics(ctx, cfg.MetricsListen, recorder.Handler())
	}

	platform := twitter.NewClient(twitter.NewOAuthClient(ctx, cfg.Credentials),
		cfg.APIURL, cfg.UploadURL, cfg.MentionsCount)

	yolo := detector.NewYOLO(cfg.PredictURL, &http.Client{})

	jpegConverter, err := converter.NewJPEGConverter(cfg.MaxDimension, cfg.JPEGQuality)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing jpeg converter")
	}

	dispatcher := service.NewMentionDispatcher(yolo, jpegConverter, platform, recorder,
		cfg.DetectTimeout, cfg.FallbackOnTimeout)
	walker := service.NewFeedWalker(platform, store, dispatcher, recorder)

	poller, err := handler.NewPoller(walker, cfg.PollInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing poller")
	}

	log.Info().Msg("bot polling")
	if err := poller.Run(ctx); err != nil {
		log.Error().Err(err).Msg("poller stopped with error")
	}

	log.Info().Msg("detectbot stopped")
}

func serveMetrics(ctx context.Context, addr string, h http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
