package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"cryptoaggregator/internal/config"
	"cryptoaggregator/internal/httpx"
	"cryptoaggregator/internal/ingest"
	"cryptoaggregator/internal/logging"
	"cryptoaggregator/internal/sources"
	"cryptoaggregator/internal/store"
)

func main() {
	var (
		assetsCSV  string
		dryRun     bool
		timeout    int
		configPath string
	)
	flag.StringVar(&assetsCSV, "assets", "", "comma-separated asset symbols (default: ingest.assets from config)")
	flag.BoolVar(&dryRun, "dry-run", false, "print the fetched quotes as JSON instead of writing them")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (default: server.request_timeout_sec)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if assetsCSV != "" {
		cfg.Ingest.Assets = config.SplitCSV(assetsCSV)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	if !dryRun {
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid config")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, dryRun, log); err != nil {
		log.Fatal().Err(err).Msg("fetch")
	}
}

func run(ctx context.Context, cfg config.Config, dryRun bool, log zerolog.Logger) error {
	client := httpx.New(cfg.RequestTimeout())
	providers := sources.FromConfig(cfg.Sources, client, log)
	assets := cfg.Ingest.Assets

	if dryRun {
		quotes, err := ingest.New(nil, log, providers...).Fetch(ctx, assets)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quotes)
	}

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

	res, err := ingest.New(db, log, providers...).Run(ctx, assets)
	if err != nil {
		return err
	}
	fmt.Printf("ingested %d quotes for %s in %s\n", res.Quotes, strings.Join(assets, ","), res.Duration)
	return nil
}
