package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is the latest price of one (asset, quote, source) triple.
type PriceRecord struct {
	ID        int64           `json:"id"`
	Asset     string          `json:"asset"`
	Quote     string          `json:"quote"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Filter narrows an asset's rows. Nil fields were not supplied by the caller.
type Filter struct {
	Source *string
	Quote  *string
	Offset *int
	Limit  *int
}

// Supplied reports whether the caller passed any filter or pagination parameter.
func (f Filter) Supplied() bool {
	return f.Source != nil || f.Quote != nil || f.Offset != nil || f.Limit != nil
}

// Apply filters rows by exact source and quote, then slices [offset, offset+limit).
// An offset past the end yields an empty slice; a nil limit is unbounded.
func (f Filter) Apply(rows []PriceRecord) []PriceRecord {
	out := make([]PriceRecord, 0, len(rows))
	for _, r := range rows {
		if f.Source != nil && r.Source != *f.Source {
			continue
		}
		if f.Quote != nil && r.Quote != *f.Quote {
			continue
		}
		out = append(out, r)
	}

	offset := 0
	if f.Offset != nil && *f.Offset > 0 {
		offset = *f.Offset
	}
	if offset >= len(out) {
		return out[:0]
	}
	out = out[offset:]

	if f.Limit != nil {
		limit := max(*f.Limit, 0)
		if limit < len(out) {
			out = out[:limit]
		}
	}
	return out
}
