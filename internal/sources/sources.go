// Package sources assembles the enabled price providers from configuration.
package sources

import (
	"github.com/rs/zerolog"

	"cryptoaggregator/internal/config"
	"cryptoaggregator/internal/provider"
	"cryptoaggregator/internal/provider/binance"
	"cryptoaggregator/internal/provider/coinbase"
	"cryptoaggregator/internal/provider/coingecko"
	"cryptoaggregator/internal/provider/ratelimit"
)

// FromConfig returns the enabled providers in a fixed order
// (coingecko, coinbase, binance), each wrapped with its rate limit.
func FromConfig(cfg config.Sources, client provider.HTTPClient, log zerolog.Logger) []provider.Provider {
	var providers []provider.Provider

	if src := cfg.CoinGecko; src.Enabled {
		opts := []coingecko.Option{coingecko.WithHTTPClient(client), coingecko.WithIDs(src.IDs), coingecko.WithAPIKey(src.APIKey)}
		if src.BaseURL != "" {
			opts = append(opts, coingecko.WithBaseURL(src.BaseURL))
		}
		providers = append(providers, limited(coingecko.New(opts...), src.Source))
	}
	if src := cfg.Coinbase; src.Enabled {
		opts := []coinbase.Option{coinbase.WithHTTPClient(client), coinbase.WithIDs(src.IDs)}
		if src.BaseURL != "" {
			opts = append(opts, coinbase.WithBaseURL(src.BaseURL))
		}
		providers = append(providers, limited(coinbase.New(opts...), src))
	}
	if src := cfg.Binance; src.Enabled {
		opts := []binance.Option{binance.WithHTTPClient(client), binance.WithIDs(src.IDs), binance.WithStablecoin(src.Stablecoin)}
		if src.BaseURL != "" {
			opts = append(opts, binance.WithBaseURL(src.BaseURL))
		}
		providers = append(providers, limited(binance.New(opts...), src.Source))
	}

	if len(providers) == 0 {
		log.Warn().Msg("no price sources enabled")
	}
	for _, p := range providers {
		log.Debug().Str("source", p.Name()).Msg("price source enabled")
	}
	return providers
}

func limited(p provider.Provider, src config.Source) provider.Provider {
	return ratelimit.Wrap(p, src.MaxRequestsPerMinute, src.Burst, src.MinInterval())
}
