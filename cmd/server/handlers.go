package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cryptoaggregator/internal/metrics"
	"cryptoaggregator/internal/pricecache"
	"cryptoaggregator/internal/store"
)

// priceReader serves filtered price rows for one asset.
type priceReader interface {
	GetPrices(ctx context.Context, asset string, f store.Filter) ([]store.PriceRecord, error)
}

// priceResponse is one row of GET /prices/{asset}. The surrogate id is not exposed.
type priceResponse struct {
	Asset     string          `json:"asset"`
	Quote     string          `json:"quote"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type api struct {
	prices  priceReader
	log     zerolog.Logger
	timeout time.Duration
}

func newRouter(a *api, withMetrics bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, instrument(a.log), recoverPanic(a.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if withMetrics {
		// promhttp negotiates its own compression
		r.Handle("/metrics", metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(withJSONHeaders, compressJSON)
		r.Get("/prices/{asset}", a.getPrices)
	})
	return r
}

func (a *api) getPrices(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, detailResponse{Detail: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	rows, err := a.prices.GetPrices(ctx, asset, f)
	var notFound *pricecache.NotFoundError
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, detailResponse{Detail: notFound.Error()})
		return
	case err != nil:
		a.log.Error().
			Err(err).
			Str("asset", asset).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("price lookup failed")
		writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "internal server error"})
		return
	}

	resp := make([]priceResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, priceResponse{
			Asset:     row.Asset,
			Quote:     row.Quote,
			Price:     row.Price,
			Source:    row.Source,
			FetchedAt: row.FetchedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseFilter reads source, quote, offset and limit. A parameter counts as
// supplied whenever it is present, even if empty.
func parseFilter(q url.Values) (store.Filter, error) {
	var f store.Filter
	if q.Has("source") {
		v := q.Get("source")
		f.Source = &v
	}
	if q.Has("quote") {
		v := q.Get("quote")
		f.Quote = &v
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{{"offset", &f.Offset}, {"limit", &f.Limit}} {
		if !q.Has(p.name) {
			continue
		}
		n, err := strconv.Atoi(q.Get(p.name))
		if err != nil || n < 0 {
			return store.Filter{}, fmt.Errorf("query parameter %s must be a non-negative integer", p.name)
		}
		*p.dst = &n
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
