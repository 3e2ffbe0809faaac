// Package binance reads the full ticker table and picks the requested
// {ASSET}{stablecoin} symbols out of it. The stablecoin price is recorded as USD.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"cryptoaggregator/internal/provider"
)

const (
	// Name is the source identifier stored with every quote.
	Name = "binance"

	defaultBaseURL    = "https://api.binance.com"
	defaultStablecoin = "USDT"
)

// DefaultIDs maps caller symbols to Binance base asset codes.
var DefaultIDs = map[string]string{
	"btc": "BTC",
	"eth": "ETH",
}

// Client is a full-table-scan provider.
type Client struct {
	baseURL    string
	httpClient provider.HTTPClient
	ids        map[string]string
	stablecoin string
	now        provider.Clock
}

// Option is a configuration option for the Binance client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient provider.HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithIDs replaces the symbol -> base asset table.
func WithIDs(ids map[string]string) Option {
	return func(c *Client) {
		if len(ids) > 0 {
			c.ids = ids
		}
	}
}

// WithStablecoin sets the quote asset used to build ticker symbols.
func WithStablecoin(code string) Option {
	return func(c *Client) {
		if code != "" {
			c.stablecoin = strings.ToUpper(code)
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now provider.Clock) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a Binance client.
func New(options ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		ids:        DefaultIDs,
		stablecoin: defaultStablecoin,
		now:        provider.UTCNow,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return Name }

// ticker is one row of /api/v3/ticker/price.
type ticker struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
}

// GetPrices fetches every ticker once and scans it for the requested assets.
func (c *Client) GetPrices(ctx context.Context, assets []string) ([]provider.Quote, error) {
	mapping := provider.MapAssets(assets, c.ids)
	if err := mapping.Err(Name); err != nil {
		return nil, err
	}
	if len(mapping.AssetIDs) == 0 {
		return nil, nil
	}

	var tickers []ticker
	if err := provider.GetJSON(ctx, c.httpClient, c.baseURL+"/api/v3/ticker/price", nil, &tickers); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	// ticker symbol -> source id for the ids still being looked for
	wanted := make(map[string]string, len(mapping.ReverseMapping))
	for id := range mapping.ReverseMapping {
		wanted[id+c.stablecoin] = id
	}

	at := c.now()
	pending := mapping.Pending()
	found := make(map[string]provider.Quote, len(pending))
	for _, t := range tickers {
		if len(pending) == 0 {
			break
		}
		id, ok := wanted[t.Symbol]
		if !ok {
			continue
		}
		if _, open := pending[id]; !open {
			continue
		}
		if t.Price == nil {
			return nil, fmt.Errorf("%s: %w: ticker %s has no price", Name, provider.ErrInvalidResponse, t.Symbol)
		}
		q, err := provider.NewQuote(pending[id], *t.Price, Name, at)
		if err != nil {
			return nil, err
		}
		found[id] = q
		delete(pending, id)
	}

	if len(pending) > 0 {
		return nil, provider.MissingAssetsError(Name, mapping.Remaining(pending))
	}

	quotes := make([]provider.Quote, 0, len(found))
	for _, id := range mapping.UniqueIDs() {
		quotes = append(quotes, found[id])
	}
	return quotes, nil
}
