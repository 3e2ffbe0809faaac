package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cryptoaggregator/internal/aggregate"
	"cryptoaggregator/internal/provider"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("price not found")

const (
	table = "crypto_price"

	// upsertChunk keeps one statement under the 65535 bind parameter limit.
	upsertChunk = 5000

	selectColumns = "id, asset, quote, price::text, source, fetched_at"
)

const schema = `
CREATE TABLE IF NOT EXISTS crypto_price (
	id         BIGSERIAL PRIMARY KEY,
	asset      TEXT        NOT NULL,
	quote      TEXT        NOT NULL,
	price      NUMERIC     NOT NULL,
	source     TEXT        NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	CONSTRAINT uq_asset_quote_source UNIQUE (asset, quote, source)
)`

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres is the durable latest-price table.
type Postgres struct {
	db    DB
	close func()
}

// Connect opens a pgx pool against databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{db: pool, close: pool.Close}, nil
}

// New wraps an existing connection or pool.
func New(db DB) *Postgres {
	return &Postgres{db: db, close: func() {}}
}

// Close releases the pool.
func (p *Postgres) Close() { p.close() }

// Migrate creates the price table and its unique constraint when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	return nil
}

// UpsertQuotes writes quotes in one transaction: new triples are inserted,
// existing ones get price and fetched_at overwritten. Either every row
// commits or none does.
func (p *Postgres) UpsertQuotes(ctx context.Context, quotes []provider.Quote) (err error) {
	rows := aggregate.Latest(quotes)
	if len(rows) == 0 {
		return nil
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for start := 0; start < len(rows); start += upsertChunk {
		end := min(start+upsertChunk, len(rows))
		sql, args := buildUpsert(rows[start:end])
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("upsert prices: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// ByAsset returns every row of an asset in insertion order.
func (p *Postgres) ByAsset(ctx context.Context, asset string) ([]PriceRecord, error) {
	return p.Find(ctx, asset, Filter{})
}

// Find returns an asset's rows with the filter pushed into SQL.
func (p *Postgres) Find(ctx context.Context, asset string, f Filter) ([]PriceRecord, error) {
	sql, args := buildFind(strings.ToUpper(asset), f)
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices for %s: %w", asset, err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("scan prices for %s: %w", asset, err)
	}
	return records, nil
}

// Get returns the row of one (asset, quote, source) triple, matched in the
// casing rows are stored with.
func (p *Postgres) Get(ctx context.Context, asset, quote, source string) (PriceRecord, error) {
	k, f := pointLookup(asset, quote, source)
	records, err := p.Find(ctx, k.Asset, f)
	if err != nil {
		return PriceRecord{}, err
	}
	if len(records) == 0 {
		return PriceRecord{}, fmt.Errorf("%w: %s/%s from %s", ErrNotFound, k.Asset, k.Quote, k.Source)
	}
	return records[0], nil
}

func pointLookup(asset, quote, source string) (aggregate.Key, Filter) {
	k := aggregate.KeyOf(provider.Quote{Asset: asset, Quote: quote, Source: source})
	return k, Filter{Quote: &k.Quote, Source: &k.Source}
}

func buildUpsert(quotes []provider.Quote) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(quotes)*5)

	b.WriteString("INSERT INTO " + table + " (asset, quote, price, source, fetched_at) VALUES ")
	for i, q := range quotes {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&b, "($%d, $%d, $%d::numeric, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, q.Asset, q.Quote, q.Price.String(), q.Source, q.FetchedAt)
	}
	b.WriteString(" ON CONFLICT ON CONSTRAINT uq_asset_quote_source DO UPDATE SET price = EXCLUDED.price, fetched_at = EXCLUDED.fetched_at")
	return b.String(), args
}

func buildFind(asset string, f Filter) (string, []any) {
	var b strings.Builder
	args := []any{asset}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	b.WriteString("SELECT " + selectColumns + " FROM " + table + " WHERE asset = $1")
	if f.Source != nil {
		b.WriteString(" AND source = " + arg(*f.Source))
	}
	if f.Quote != nil {
		b.WriteString(" AND quote = " + arg(*f.Quote))
	}
	b.WriteString(" ORDER BY id")
	if f.Limit != nil {
		b.WriteString(" LIMIT " + arg(max(*f.Limit, 0)))
	}
	if f.Offset != nil {
		b.WriteString(" OFFSET " + arg(max(*f.Offset, 0)))
	}
	return b.String(), args
}

func scanRecord(row pgx.CollectableRow) (PriceRecord, error) {
	var (
		r     PriceRecord
		price string
		at    time.Time
	)
	if err := row.Scan(&r.ID, &r.Asset, &r.Quote, &price, &r.Source, &at); err != nil {
		return PriceRecord{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return PriceRecord{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	r.Price = d
	r.FetchedAt = at.UTC()
	return r, nil
}
