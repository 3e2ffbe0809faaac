package aggregate

import (
	"strings"

	"cryptoaggregator/internal/provider"
)

// Key identifies one stored price row.
type Key struct {
	Asset  string
	Quote  string
	Source string
}

// KeyOf returns the normalized key of q.
func KeyOf(q provider.Quote) Key {
	return Key{
		Asset:  strings.ToUpper(strings.TrimSpace(q.Asset)),
		Quote:  strings.ToUpper(strings.TrimSpace(q.Quote)),
		Source: strings.ToLower(strings.TrimSpace(q.Source)),
	}
}

// Normalize rewrites q with its canonical casing: upper-case asset and quote,
// lower-case source, UTC timestamp.
func Normalize(q provider.Quote) provider.Quote {
	k := KeyOf(q)
	q.Asset, q.Quote, q.Source = k.Asset, k.Quote, k.Source
	q.FetchedAt = q.FetchedAt.UTC()
	return q
}

// Latest collapses quotes to one per Key keeping the newest FetchedAt.
// For equal timestamps, later input wins. Output follows the order in which
// each key was first seen, so a multi-row upsert never touches a row twice.
func Latest(quotes []provider.Quote) []provider.Quote {
	index := make(map[Key]int, len(quotes))
	out := make([]provider.Quote, 0, len(quotes))

	for _, q := range quotes {
		q = Normalize(q)
		k := KeyOf(q)
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, q)
			continue
		}
		if !q.FetchedAt.Before(out[i].FetchedAt) {
			out[i] = q
		}
	}
	return out
}
