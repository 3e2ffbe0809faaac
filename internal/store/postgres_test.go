package store

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cryptoaggregator/internal/provider"
)

func TestBuildUpsert(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sql, args := buildUpsert([]provider.Quote{
		{Asset: "BTC", Quote: "USD", Price: decimal.RequireFromString("123.456"), Source: "coingecko", FetchedAt: at},
		{Asset: "ETH", Quote: "USD", Price: decimal.RequireFromString("120"), Source: "binance", FetchedAt: at},
	})

	require.Equal(t,
		"INSERT INTO crypto_price (asset, quote, price, source, fetched_at) VALUES "+
			"($1, $2, $3::numeric, $4, $5), ($6, $7, $8::numeric, $9, $10) "+
			"ON CONFLICT ON CONSTRAINT uq_asset_quote_source DO UPDATE SET price = EXCLUDED.price, fetched_at = EXCLUDED.fetched_at",
		sql)
	require.Equal(t, []any{"BTC", "USD", "123.456", "coingecko", at, "ETH", "USD", "120", "binance", at}, args)
}

func TestBuildFind(t *testing.T) {
	sql, args := buildFind("FBR", Filter{})
	require.Equal(t, "SELECT id, asset, quote, price::text, source, fetched_at FROM crypto_price WHERE asset = $1 ORDER BY id", sql)
	require.Equal(t, []any{"FBR"}, args)

	sql, args = buildFind("FBR", Filter{Source: ptr("binance"), Quote: ptr("USD"), Offset: ptr(1), Limit: ptr(2)})
	require.Equal(t, "SELECT id, asset, quote, price::text, source, fetched_at FROM crypto_price "+
		"WHERE asset = $1 AND source = $2 AND quote = $3 ORDER BY id LIMIT $4 OFFSET $5", sql)
	require.Equal(t, []any{"FBR", "binance", "USD", 2, 1}, args)
}

func TestPointLookup_MatchesStoredCasing(t *testing.T) {
	// Arrange
	k, f := pointLookup(" btc", "usd", "Binance ")

	// Act
	sql, args := buildFind(k.Asset, f)

	// Assert
	require.Equal(t, "SELECT id, asset, quote, price::text, source, fetched_at FROM crypto_price "+
		"WHERE asset = $1 AND source = $2 AND quote = $3 ORDER BY id", sql)
	require.Equal(t, []any{"BTC", "binance", "USD"}, args)
}

// TestPostgres_Upsert runs against a real database when CRYPTOAGG_TEST_DATABASE_URL is set.
func TestPostgres_Upsert(t *testing.T) {
	url := os.Getenv("CRYPTOAGG_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CRYPTOAGG_TEST_DATABASE_URL not set")
	}

	ctx := t.Context()
	pg, err := Connect(ctx, url, 2)
	require.NoError(t, err)
	defer pg.Close()

	require.NoError(t, pg.Migrate(ctx))
	_, err = pg.db.Exec(ctx, "TRUNCATE crypto_price RESTART IDENTITY")
	require.NoError(t, err)

	t1 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Arrange: first ingestion creates the row.
	require.NoError(t, pg.UpsertQuotes(ctx, []provider.Quote{
		{Asset: "BTC", Quote: "USD", Price: decimal.RequireFromString("150.5"), Source: "coingecko", FetchedAt: t1},
	}))

	// Act: second ingestion of the same triple plus a new one.
	require.NoError(t, pg.UpsertQuotes(ctx, []provider.Quote{
		{Asset: "BTC", Quote: "USD", Price: decimal.RequireFromString("123.4560"), Source: "coingecko", FetchedAt: t2},
		{Asset: "BTC", Quote: "USD", Price: decimal.RequireFromString("130.3"), Source: "binance", FetchedAt: t2},
	}))

	// Assert: exactly one row per triple, latest values, insertion order kept.
	got, err := pg.ByAsset(ctx, "btc")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "coingecko", got[0].Source)
	require.Equal(t, "123.456", got[0].Price.String())
	require.True(t, got[0].FetchedAt.Equal(t2))
	require.Equal(t, "binance", got[1].Source)

	one, err := pg.Get(ctx, "btc", "usd", "Binance")
	require.NoError(t, err)
	require.Equal(t, "130.3", one.Price.String())

	_, err = pg.Get(ctx, "btc", "usd", "kraken")
	require.ErrorIs(t, err, ErrNotFound)
}
