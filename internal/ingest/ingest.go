// Package ingest fetches prices from every source concurrently and writes
// them to the store in a single upsert.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cryptoaggregator/internal/aggregate"
	"cryptoaggregator/internal/metrics"
	"cryptoaggregator/internal/provider"
)

// Upserter persists quotes, one row per (asset, quote, source).
//
//go:generate mockgen -package=mocks -destination=../mocks/mock_ingest.go -source=ingest.go
type Upserter interface {
	UpsertQuotes(ctx context.Context, quotes []provider.Quote) error
}

// SourceError is returned when one source fails during a run.
type SourceError struct {
	Source string
	Assets []string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("fetching %s from %s: %v", strings.Join(e.Assets, ","), e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Result summarizes a successful run.
type Result struct {
	Quotes   int
	Duration time.Duration
}

// Coordinator runs ingestion over a fixed, ordered set of providers.
type Coordinator struct {
	providers []provider.Provider
	store     Upserter
	log       zerolog.Logger
}

// New creates a Coordinator. Provider order decides the order of rows in the upsert.
func New(store Upserter, log zerolog.Logger, providers ...provider.Provider) *Coordinator {
	return &Coordinator{
		providers: providers,
		store:     store,
		log:       log.With().Str("component", "ingest").Logger(),
	}
}

// Ingest fetches assets from every provider and upserts the result.
func (c *Coordinator) Ingest(ctx context.Context, assets []string) error {
	_, err := c.Run(ctx, assets)
	return err
}

// Run is Ingest with a summary of what was written.
// The first failing source cancels the others and nothing is written.
func (c *Coordinator) Run(ctx context.Context, assets []string) (Result, error) {
	start := time.Now()
	if len(assets) == 0 {
		return Result{}, nil
	}

	quotes, err := c.Fetch(ctx, assets)
	if err != nil {
		metrics.RecordIngestion(0, err)
		return Result{}, err
	}

	if err := c.store.UpsertQuotes(ctx, quotes); err != nil {
		err = fmt.Errorf("upserting %d quotes: %w", len(quotes), err)
		c.log.Error().Err(err).Strs("assets", assets).Msg("ingestion write failed")
		metrics.RecordIngestion(0, err)
		return Result{}, err
	}

	res := Result{Quotes: len(quotes), Duration: time.Since(start)}
	metrics.RecordIngestion(res.Quotes, nil)
	c.log.Info().
		Strs("assets", assets).
		Int("quotes", res.Quotes).
		Dur("duration", res.Duration).
		Msg("ingestion completed")
	return res, nil
}

// Fetch queries every provider concurrently and returns the collapsed quotes
// without writing them.
func (c *Coordinator) Fetch(ctx context.Context, assets []string) ([]provider.Quote, error) {
	if len(assets) == 0 {
		return nil, nil
	}

	// one slot per provider; the join makes the writes visible
	slots := make([][]provider.Quote, len(c.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range c.providers {
		g.Go(func() error {
			started := time.Now()
			quotes, err := p.GetPrices(gctx, assets)
			metrics.RecordSourceFetch(p.Name(), time.Since(started), err)
			if err != nil {
				c.log.Error().
					Err(err).
					Str("source", p.Name()).
					Strs("assets", assets).
					Msg("source fetch failed")
				return &SourceError{Source: p.Name(), Assets: assets, Err: err}
			}
			c.log.Debug().Str("source", p.Name()).Int("quotes", len(quotes)).Msg("source fetched")
			slots[i] = quotes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []provider.Quote
	for _, quotes := range slots {
		all = append(all, quotes...)
	}
	return aggregate.Latest(all), nil
}
