package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptoaggregator/internal/ingest"
	"cryptoaggregator/internal/mocks"
	"cryptoaggregator/internal/provider"
)

var mockTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func quotes(source string) []provider.Quote {
	return []provider.Quote{
		{Asset: "BTC", Quote: provider.QuoteUSD, Price: decimal.RequireFromString("123.456"), Source: source, FetchedAt: mockTime},
		{Asset: "ETH", Quote: provider.QuoteUSD, Price: decimal.RequireFromString("111.111"), Source: source, FetchedAt: mockTime},
	}
}

func mockSource(ctrl *gomock.Controller, name string) *mocks.MockProvider {
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().Name().Return(name).AnyTimes()
	return p
}

func TestIngest_AllSources(t *testing.T) {
	t.Parallel()

	// Arrange: three sources each returning btc and eth.
	ctrl := gomock.NewController(t)
	assets := []string{"btc", "eth"}
	var sources []provider.Provider
	for _, name := range []string{"coingecko", "coinbase", "binance"} {
		p := mockSource(ctrl, name)
		p.EXPECT().GetPrices(gomock.Any(), assets).Return(quotes(name), nil)
		sources = append(sources, p)
	}

	store := mocks.NewMockUpserter(ctrl)
	var written []provider.Quote
	store.EXPECT().
		UpsertQuotes(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q []provider.Quote) error {
			written = q
			return nil
		}).
		Times(1)

	c := ingest.New(store, zerolog.Nop(), sources...)

	// Act
	res, err := c.Run(t.Context(), assets)

	// Assert: six rows, in provider registration order.
	require.NoError(t, err)
	require.Equal(t, 6, res.Quotes)
	require.Len(t, written, 6)
	require.Equal(t, "coingecko", written[0].Source)
	require.Equal(t, "BTC", written[0].Asset)
	require.Equal(t, "coinbase", written[2].Source)
	require.Equal(t, "binance", written[5].Source)
	require.Equal(t, "ETH", written[5].Asset)
}

func TestIngest_FailFastWritesNothing(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	assets := []string{"btc", "eth"}
	boom := errors.New("connection reset")

	ok := mockSource(ctrl, "coingecko")
	ok.EXPECT().
		GetPrices(gomock.Any(), assets).
		DoAndReturn(func(ctx context.Context, _ []string) ([]provider.Quote, error) {
			// the failing source cancels this one
			<-ctx.Done()
			return nil, ctx.Err()
		}).
		MaxTimes(1)
	bad := mockSource(ctrl, "binance")
	bad.EXPECT().GetPrices(gomock.Any(), assets).Return(nil, boom)

	// no UpsertQuotes expectation: any write fails the test
	store := mocks.NewMockUpserter(ctrl)
	c := ingest.New(store, zerolog.Nop(), ok, bad)

	err := c.Ingest(t.Context(), assets)

	require.ErrorIs(t, err, boom)
	var srcErr *ingest.SourceError
	require.ErrorAs(t, err, &srcErr)
	require.Equal(t, "binance", srcErr.Source)
	require.Equal(t, assets, srcErr.Assets)
}

func TestIngest_EmptyAssets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := mocks.NewMockProvider(ctrl)
	store := mocks.NewMockUpserter(ctrl)

	require.NoError(t, ingest.New(store, zerolog.Nop(), p).Ingest(t.Context(), nil))
}

func TestIngest_WriteError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	p := mockSource(ctrl, "coinbase")
	p.EXPECT().GetPrices(gomock.Any(), gomock.Any()).Return(quotes("coinbase"), nil)
	store := mocks.NewMockUpserter(ctrl)
	store.EXPECT().UpsertQuotes(gomock.Any(), gomock.Len(2)).Return(errors.New("tx aborted"))

	err := ingest.New(store, zerolog.Nop(), p).Ingest(t.Context(), []string{"btc", "eth"})
	require.ErrorContains(t, err, "upserting 2 quotes")
}

func TestFetch_CollapsesDuplicates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	older := quotes("binance")[:1]
	newer := []provider.Quote{older[0]}
	newer[0].Price = decimal.RequireFromString("200")
	newer[0].FetchedAt = mockTime.Add(time.Minute)

	p := mockSource(ctrl, "binance")
	p.EXPECT().GetPrices(gomock.Any(), gomock.Any()).Return(append(older, newer...), nil)

	got, err := ingest.New(mocks.NewMockUpserter(ctrl), zerolog.Nop(), p).Fetch(t.Context(), []string{"btc"})

	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "200", got[0].Price.String())
}
