package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteUSD is the only quote currency the sources are asked for.
const QuoteUSD = "USD"

// Quote is the normalized shape returned by all providers.
// Price is a decimal so no precision is lost between the source and the store.
type Quote struct {
	Asset     string          `json:"asset"`
	Quote     string          `json:"quote"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Provider fetches current prices for a batch of caller-facing asset symbols.
// All quotes produced by one GetPrices call share the same FetchedAt.
//
//go:generate mockgen -package=mocks -destination=../mocks/mock_provider.go -source=provider.go
type Provider interface {
	Name() string
	GetPrices(ctx context.Context, assets []string) ([]Quote, error)
}

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Clock returns the current time. Sources take one so tests can pin FetchedAt.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time { return time.Now().UTC() }

// NewQuote builds a USD quote for a caller symbol, rejecting negative prices.
func NewQuote(asset string, price decimal.Decimal, source string, at time.Time) (Quote, error) {
	if price.IsNegative() {
		return Quote{}, fmt.Errorf("%w: negative price %s for %s from %s", ErrInvalidResponse, price, asset, source)
	}
	return Quote{
		Asset:     strings.ToUpper(asset),
		Quote:     QuoteUSD,
		Price:     price,
		Source:    source,
		FetchedAt: at,
	}, nil
}
