package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Server struct {
	Port              string `yaml:"port"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

type Database struct {
	URL         string `yaml:"url"`
	MaxConns    int32  `yaml:"max_conns"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// Cache selects the read-through cache backend: "redis", "memory" or "none".
type Cache struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redis_url"`
	TTLSec   int    `yaml:"ttl_sec"`
	MaxItems int    `yaml:"max_items"`
}

// MaxIngestRetries bounds ingest.max_retries.
const MaxIngestRetries = 20

type Ingest struct {
	Assets            []string `yaml:"assets"`
	IntervalSec       int      `yaml:"interval_sec"`
	InitialBackoffSec int      `yaml:"initial_backoff_sec"`
	MaxRetries        int      `yaml:"max_retries"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Source holds the settings shared by every price source.
type Source struct {
	Enabled               bool              `yaml:"enabled"`
	BaseURL               string            `yaml:"base_url"`
	IDs                   map[string]string `yaml:"ids"`
	MaxRequestsPerMinute  int               `yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int               `yaml:"min_request_interval_sec"`
	Burst                 int               `yaml:"burst"`
}

type CoinGecko struct {
	Source `yaml:",inline"`
	APIKey string `yaml:"api_key"`
}

type Binance struct {
	Source     `yaml:",inline"`
	Stablecoin string `yaml:"stablecoin"`
}

type Sources struct {
	CoinGecko CoinGecko `yaml:"coingecko"`
	Coinbase  Source    `yaml:"coinbase"`
	Binance   Binance   `yaml:"binance"`
}

type Config struct {
	Environment string   `yaml:"environment"`
	Server      Server   `yaml:"server"`
	Database    Database `yaml:"database"`
	Cache       Cache    `yaml:"cache"`
	Ingest      Ingest   `yaml:"ingest"`
	Log         Log      `yaml:"log"`
	Metrics     Metrics  `yaml:"metrics"`
	Sources     Sources  `yaml:"sources"`
}

func Default() Config {
	return Config{
		Environment: "dev",
		Server:      Server{Port: "8080", RequestTimeoutSec: 10},
		Database:    Database{MaxConns: 10, AutoMigrate: true},
		Cache: Cache{
			Backend:  "redis",
			RedisURL: "redis://localhost:6379/0",
			TTLSec:   30,
			MaxItems: 10000,
		},
		Ingest: Ingest{
			Assets:            []string{"btc", "eth"},
			IntervalSec:       60,
			InitialBackoffSec: 10,
			MaxRetries:        5,
		},
		Log:     Log{Level: "info", Format: "json"},
		Metrics: Metrics{Enabled: true, Addr: ":9090"},
		Sources: Sources{
			CoinGecko: CoinGecko{Source: Source{Enabled: true, MaxRequestsPerMinute: 30, Burst: 1}},
			Coinbase:  Source{Enabled: true, MaxRequestsPerMinute: 60, Burst: 2},
			Binance:   Binance{Source: Source{Enabled: true, MaxRequestsPerMinute: 60, Burst: 2}, Stablecoin: "USDT"},
		},
	}
}

// Load reads YAML config from path. If path is empty, config.yaml in the
// working directory is used when present; a missing file yields defaults.
// In the dev environment a .env file is loaded first. Environment variables
// override file values.
func Load(path string) (Config, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "" || env == "dev" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports settings the binaries cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url (DATABASE_URL) is required"))
	}
	if c.Ingest.IntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("ingest.interval_sec must be positive, got %d", c.Ingest.IntervalSec))
	}
	if c.Ingest.MaxRetries < 0 || c.Ingest.MaxRetries > MaxIngestRetries {
		errs = append(errs, fmt.Errorf("ingest.max_retries must be between 0 and %d, got %d", MaxIngestRetries, c.Ingest.MaxRetries))
	}
	if c.Server.RequestTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout_sec must be positive, got %d", c.Server.RequestTimeoutSec))
	}
	if c.Cache.TTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl_sec must be positive, got %d", c.Cache.TTLSec))
	}
	if len(c.Ingest.Assets) == 0 {
		errs = append(errs, errors.New("ingest.assets must not be empty"))
	}
	switch c.Cache.Backend {
	case "redis", "memory", "none":
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of redis, memory, none", c.Cache.Backend))
	}
	return errors.Join(errs...)
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.Cache.TTLSec) * time.Second }

func (c Config) IngestInterval() time.Duration {
	return time.Duration(c.Ingest.IntervalSec) * time.Second
}

func (c Config) InitialBackoff() time.Duration {
	return time.Duration(c.Ingest.InitialBackoffSec) * time.Second
}

// MinInterval is the minimum spacing between requests to a source.
func (s Source) MinInterval() time.Duration {
	return time.Duration(s.MinRequestIntervalSec) * time.Second
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	envInt("REQUEST_TIMEOUT_SEC", &cfg.Server.RequestTimeoutSec)

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	envBool("DATABASE_AUTO_MIGRATE", &cfg.Database.AutoMigrate)

	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	envInt("CACHE_TTL_SEC", &cfg.Cache.TTLSec)

	if v := os.Getenv("INGEST_ASSETS"); v != "" {
		cfg.Ingest.Assets = SplitCSV(v)
	}
	envInt("INGEST_INTERVAL_SEC", &cfg.Ingest.IntervalSec)
	envInt("INGEST_MAX_RETRIES", &cfg.Ingest.MaxRetries)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	envBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.Sources.CoinGecko.APIKey = v
	}
	envBool("COINGECKO_ENABLED", &cfg.Sources.CoinGecko.Enabled)
	envBool("COINBASE_ENABLED", &cfg.Sources.Coinbase.Enabled)
	envBool("BINANCE_ENABLED", &cfg.Sources.Binance.Enabled)
	if v := os.Getenv("BINANCE_STABLECOIN"); v != "" {
		cfg.Sources.Binance.Stablecoin = v
	}
}

// envInt overwrites dst with a non-negative integer from key.
func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if x, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && x >= 0 {
		*dst = x
	}
}

func envBool(key string, dst *bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	}
}

// SplitCSV splits s on commas, dropping blanks.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
