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
	"cryptoaggregator/internal/logging"
	"cryptoaggregator/internal/pricecache"
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
		log.Fatal().Err(err).Msg("server")
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

	backend, closeBackend, err := newBackend(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeBackend()

	a := &api{
		prices:  pricecache.New(db, backend, cfg.CacheTTL(), log),
		log:     logging.Component(log, "http"),
		timeout: cfg.RequestTimeout(),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(a, cfg.Metrics.Enabled),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("cache", cfg.Cache.Backend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newBackend picks the cache backend. "none" returns a nil Backend, which
// makes the read path query the store directly.
func newBackend(ctx context.Context, cfg config.Cache) (pricecache.Backend, func(), error) {
	switch cfg.Backend {
	case "redis":
		client, err := pricecache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return pricecache.NewRedisBackend(client), func() { _ = client.Close() }, nil
	case "memory":
		return pricecache.NewMemoryBackend(cfg.MaxItems), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
