package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9000"
database:
  url: postgres://file/db
ingest:
  assets: [btc]
  interval_sec: 120
sources:
  coingecko:
    api_key: from-file
    ids:
      btc: bitcoin
  binance:
    enabled: false
    stablecoin: USDC
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("INGEST_ASSETS", "btc, eth ,")
	t.Setenv("CACHE_TTL_SEC", "45")
	t.Setenv("COINBASE_ENABLED", "no")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	// file values
	require.Equal(t, "9000", cfg.Server.Port)
	require.Equal(t, 120*time.Second, cfg.IngestInterval())
	require.Equal(t, "from-file", cfg.Sources.CoinGecko.APIKey)
	require.Equal(t, map[string]string{"btc": "bitcoin"}, cfg.Sources.CoinGecko.IDs)
	require.True(t, cfg.Sources.CoinGecko.Enabled, "defaults survive for keys the file omits")
	require.False(t, cfg.Sources.Binance.Enabled)
	require.Equal(t, "USDC", cfg.Sources.Binance.Stablecoin)

	// env overrides
	require.Equal(t, "postgres://env/db", cfg.Database.URL)
	require.Equal(t, []string{"btc", "eth"}, cfg.Ingest.Assets)
	require.Equal(t, 45*time.Second, cfg.CacheTTL())
	require.False(t, cfg.Sources.Coinbase.Enabled)
	require.Equal(t, "test", cfg.Environment)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.CacheTTL())
	require.Equal(t, 60*time.Second, cfg.IngestInterval())
	require.Equal(t, 10*time.Second, cfg.InitialBackoff())
	require.Equal(t, 5, cfg.Ingest.MaxRetries)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	_, err := Load(writeConfig(t, "server: [unclosed"))
	require.ErrorContains(t, err, "parse config")
}

func TestLoad_DotEnvInDev(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://dotenv/db\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("ENVIRONMENT", "dev")
	// registers cleanup so the variable godotenv sets is removed again
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "postgres://dotenv/db", cfg.Database.URL)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Ingest.IntervalSec = 0
	cfg.Ingest.Assets = nil
	cfg.Cache.Backend = "memcached"
	cfg.Ingest.MaxRetries = 64

	err := cfg.Validate()
	require.ErrorContains(t, err, "database.url")
	require.ErrorContains(t, err, "ingest.interval_sec must be positive")
	require.ErrorContains(t, err, "ingest.assets must not be empty")
	require.ErrorContains(t, err, `cache.backend "memcached"`)
	require.ErrorContains(t, err, "ingest.max_retries must be between 0 and 20, got 64")
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://localhost/prices"
	cfg.Ingest.MaxRetries = MaxIngestRetries

	require.NoError(t, cfg.Validate())
}
