// Package pricecache serves an asset's price rows through a key/value cache
// in front of the store.
package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"cryptoaggregator/internal/metrics"
	"cryptoaggregator/internal/store"
)

// DefaultTTL is how long an asset's rows stay cached.
const DefaultTTL = 30 * time.Second

// loadTimeout bounds a shared store load, which outlives any single caller.
const loadTimeout = 10 * time.Second

// ErrNotFound is wrapped by every *NotFoundError.
var ErrNotFound = errors.New("price not found")

// NotFoundError reports an empty result for a lookup.
type NotFoundError struct {
	// Asset as the caller spelled it.
	Asset string
	// Filtered is set when any filter or pagination parameter was supplied.
	Filtered bool
}

func (e *NotFoundError) Error() string {
	if e.Filtered {
		return fmt.Sprintf("Crypto asset %s with the given parameters not found.", e.Asset)
	}
	return fmt.Sprintf("Crypto asset %s not found.", e.Asset)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

//go:generate mockgen -package=mocks -destination=../mocks/mock_pricecache.go -source=pricecache.go

// AssetReader is the read side of the price store.
type AssetReader interface {
	ByAsset(ctx context.Context, asset string) ([]store.PriceRecord, error)
	Find(ctx context.Context, asset string, filter store.Filter) ([]store.PriceRecord, error)
}

// Backend is a byte-oriented cache. Get reports a miss with ok == false and a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key returns the cache key holding every row of asset.
func Key(asset string) string {
	return "prices:" + strings.ToUpper(asset)
}

// ReadThrough caches whole per-asset row sets and filters them in memory.
// Filters are not part of the key, so every query shape shares one entry.
type ReadThrough struct {
	store   AssetReader
	backend Backend
	ttl     time.Duration
	log     zerolog.Logger
	group   singleflight.Group
}

// New creates a ReadThrough. A nil backend disables caching and pushes filters into the store query.
func New(reader AssetReader, backend Backend, ttl time.Duration, log zerolog.Logger) *ReadThrough {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReadThrough{
		store:   reader,
		backend: backend,
		ttl:     ttl,
		log:     log.With().Str("component", "pricecache").Logger(),
	}
}

// GetPrices returns asset's rows narrowed by f, or a *NotFoundError when none remain.
func (c *ReadThrough) GetPrices(ctx context.Context, asset string, f store.Filter) ([]store.PriceRecord, error) {
	var (
		rows []store.PriceRecord
		err  error
	)
	if c.backend == nil {
		metrics.RecordCache("bypass")
		rows, err = c.store.Find(ctx, strings.ToUpper(asset), f)
	} else {
		rows, err = c.cached(ctx, asset, f)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Asset: asset, Filtered: f.Supplied()}
	}
	return rows, nil
}

func (c *ReadThrough) cached(ctx context.Context, asset string, f store.Filter) ([]store.PriceRecord, error) {
	key := Key(asset)

	payload, ok, err := c.backend.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		c.log.Warn().Err(err).Str("key", key).Msg("cache read failed, using store")
	case ok:
		metrics.RecordCache("hit")
	default:
		metrics.RecordCache("miss")
	}

	if !ok {
		payload, err = c.load(ctx, key)
		if err != nil {
			return nil, err
		}
	}

	// Both paths decode the same bytes, so a hit and a miss answer identically.
	var rows []store.PriceRecord
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return f.Apply(rows), nil
}

// load joins or starts the shared fill for key. The fill runs detached from
// ctx so one caller giving up does not fail the others waiting on it.
func (c *ReadThrough) load(ctx context.Context, key string) ([]byte, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return c.fill(fillCtx, key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// fill loads every row of the asset behind key and caches the encoded set.
func (c *ReadThrough) fill(ctx context.Context, key string) ([]byte, error) {
	asset := strings.TrimPrefix(key, "prices:")
	rows, err := c.store.ByAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", asset, err)
	}
	if rows == nil {
		rows = []store.PriceRecord{}
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", asset, err)
	}
	// unknown assets are not cached
	if len(rows) == 0 {
		return payload, nil
	}
	if err := c.backend.Set(ctx, key, payload, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return payload, nil
}
