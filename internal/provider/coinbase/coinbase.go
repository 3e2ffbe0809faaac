// Package coinbase fetches spot prices one asset at a time.
package coinbase

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
	Name = "coinbase"

	defaultBaseURL = "https://api.coinbase.com"
)

// DefaultIDs maps caller symbols to Coinbase currency codes.
var DefaultIDs = map[string]string{
	"btc": "BTC",
	"eth": "ETH",
}

// Client is a per-asset provider: one spot request per asset, issued sequentially.
type Client struct {
	baseURL    string
	httpClient provider.HTTPClient
	ids        map[string]string
	now        provider.Clock
}

// Option is a configuration option for the Coinbase client.
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

// WithIDs replaces the symbol -> currency code table.
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

// New creates a Coinbase client.
func New(options ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		ids:        DefaultIDs,
		now:        provider.UTCNow,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return Name }

type spotResponse struct {
	Data struct {
		// nil when the field is absent
		Amount   *decimal.Decimal `json:"amount"`
		Base     string           `json:"base"`
		Currency string           `json:"currency"`
	} `json:"data"`
}

// GetPrices validates the whole batch up front, then fetches each asset in order.
// The first failing request aborts the call.
func (c *Client) GetPrices(ctx context.Context, assets []string) ([]provider.Quote, error) {
	mapping := provider.MapAssets(assets, c.ids)
	if err := mapping.Err(Name); err != nil {
		return nil, err
	}

	at := c.now()
	quotes := make([]provider.Quote, 0, len(mapping.AssetIDs))
	for _, id := range mapping.AssetIDs {
		price, err := c.spot(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", Name, mapping.ReverseMapping[id], err)
		}
		q, err := provider.NewQuote(mapping.ReverseMapping[id], price, Name, at)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *Client) spot(ctx context.Context, id string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v2/prices/%s-%s/spot", c.baseURL, url.PathEscape(id), provider.QuoteUSD)

	var body spotResponse
	if err := provider.GetJSON(ctx, c.httpClient, endpoint, nil, &body); err != nil {
		return decimal.Decimal{}, err
	}
	// An error envelope or a truncated payload carries no amount.
	if body.Data.Amount == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: no spot amount for %s", provider.ErrInvalidResponse, id)
	}
	return *body.Data.Amount, nil
}
