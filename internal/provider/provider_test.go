package provider

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewQuote(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	q, err := NewQuote("btc", decimal.RequireFromString("123.456"), "binance", at)
	require.NoError(t, err)
	require.Equal(t, "BTC", q.Asset)
	require.Equal(t, QuoteUSD, q.Quote)
	require.Equal(t, "binance", q.Source)
	require.Equal(t, at, q.FetchedAt)
	require.Equal(t, "123.456", q.Price.String())

	_, err = NewQuote("btc", decimal.RequireFromString("-1"), "binance", at)
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestGetJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/ok":
			require.Equal(t, "secret", r.Header.Get("x-key"))
			_, _ = w.Write([]byte(`{"value":"1.50"}`))
		case "/garbage":
			_, _ = w.Write([]byte(`not json`))
		default:
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}
	}))
	t.Cleanup(srv.Close)

	var out struct {
		Value decimal.Decimal `json:"value"`
	}
	require.NoError(t, GetJSON(t.Context(), srv.Client(), srv.URL+"/ok", http.Header{"X-Key": {"secret"}}, &out))
	require.Equal(t, "1.5", out.Value.String())

	err := GetJSON(t.Context(), srv.Client(), srv.URL+"/garbage", nil, &out)
	require.ErrorIs(t, err, ErrInvalidResponse)

	err = GetJSON(t.Context(), srv.Client(), srv.URL+"/limited", nil, &out)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "rate limited")
}
