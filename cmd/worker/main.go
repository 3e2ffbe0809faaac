package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"cryptoaggregator/internal/config"
	"cryptoaggregator/internal/httpx"
	"cryptoaggregator/internal/ingest"
	"cryptoaggregator/internal/logging"
	"cryptoaggregator/internal/metrics"
	"cryptoaggregator/internal/scheduler"
	"cryptoaggregator/internal/sources"
	"cryptoaggregator/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("worker")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Addr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client := httpx.New(cfg.RequestTimeout())
	coordinator := ingest.New(db, log, sources.FromConfig(cfg.Sources, client, log)...)
	assets := cfg.Ingest.Assets

	sched := scheduler.New(
		func(ctx context.Context) error { return coordinator.Ingest(ctx, assets) },
		scheduler.Config{
			Interval:       cfg.IngestInterval(),
			InitialBackoff: cfg.InitialBackoff(),
			MaxRetries:     cfg.Ingest.MaxRetries,
		},
		log,
	)
	log.Info().Strs("assets", assets).Msg("worker started")
	sched.Run(ctx)
	return nil
}

func serveMetrics(addr string, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()
	return srv
}
