// Package coingecko fetches USD prices for a batch of assets with one
// simple/price call.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"cryptoaggregator/internal/provider"
)

const (
	// Name is the source identifier stored with every quote.
	Name = "coingecko"

	defaultBaseURL = "https://api.coingecko.com/api/v3"
)

// DefaultIDs maps caller symbols to CoinGecko coin ids.
var DefaultIDs = map[string]string{
	"btc": "bitcoin",
	"eth": "ethereum",
}

// Client is a batch-query provider: all ids go out in one request.
type Client struct {
	baseURL    string
	httpClient provider.HTTPClient
	header     http.Header
	ids        map[string]string
	now        provider.Clock
}

// Option is a configuration option for the CoinGecko client.
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

// WithAPIKey authenticates requests against the pro API.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.header.Set("x-cg-pro-api-key", key)
		}
	}
}

// WithIDs replaces the symbol -> coin id table.
func WithIDs(ids map[string]string) Option {
	return func(c *Client) {
		if len(ids) > 0 {
			c.ids = ids
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now provider.Clock) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a CoinGecko client.
func New(options ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		ids:        DefaultIDs,
		now:        provider.UTCNow,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return Name }

// GetPrices fetches every requested asset in a single call.
func (c *Client) GetPrices(ctx context.Context, assets []string) ([]provider.Quote, error) {
	mapping := provider.MapAssets(assets, c.ids)
	if err := mapping.Err(Name); err != nil {
		return nil, err
	}
	if len(mapping.AssetIDs) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("ids", strings.Join(mapping.UniqueIDs(), ","))
	query.Set("vs_currencies", "usd")

	// {"bitcoin": {"usd": 123.45}, ...}
	var body map[string]map[string]decimal.Decimal
	if err := provider.GetJSON(ctx, c.httpClient, c.baseURL+"/simple/price?"+query.Encode(), c.header, &body); err != nil {
		return nil, fmt.Errorf("%s: %w", Name, err)
	}

	at := c.now()
	pending := mapping.Pending()
	quotes := make([]provider.Quote, 0, len(pending))
	for _, id := range mapping.UniqueIDs() {
		price, ok := body[id]["usd"]
		if !ok {
			continue
		}
		q, err := provider.NewQuote(pending[id], price, Name, at)
		if err != nil {
			return nil, err
		}
		delete(pending, id)
		quotes = append(quotes, q)
	}

	if len(pending) > 0 {
		return nil, provider.MissingAssetsError(Name, mapping.Remaining(pending))
	}
	return quotes, nil
}
