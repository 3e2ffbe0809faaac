package sources

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"cryptoaggregator/internal/config"
	"cryptoaggregator/internal/provider/ratelimit"
)

func names(t *testing.T, cfg config.Sources) []string {
	t.Helper()
	var out []string
	for _, p := range FromConfig(cfg, http.DefaultClient, zerolog.Nop()) {
		out = append(out, p.Name())
	}
	return out
}

func TestFromConfig_Order(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Sources
	require.Equal(t, []string{"coingecko", "coinbase", "binance"}, names(t, cfg))

	cfg.Coinbase.Enabled = false
	require.Equal(t, []string{"coingecko", "binance"}, names(t, cfg))
}

func TestFromConfig_RateLimitedAndConfigured(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		fmt.Fprint(w, `[{"symbol":"SOLUSDC","price":"150.5"}]`)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Sources{
		Binance: config.Binance{
			Source: config.Source{
				Enabled:              true,
				BaseURL:              srv.URL,
				IDs:                  map[string]string{"sol": "SOL"},
				MaxRequestsPerMinute: 60,
			},
			Stablecoin: "usdc",
		},
	}
	providers := FromConfig(cfg, srv.Client(), zerolog.Nop())
	require.Len(t, providers, 1)
	require.IsType(t, &ratelimit.Provider{}, providers[0])

	quotes, err := providers[0].GetPrices(t.Context(), []string{"SOL"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, "SOL", quotes[0].Asset)
	require.Equal(t, "150.5", quotes[0].Price.String())
}
