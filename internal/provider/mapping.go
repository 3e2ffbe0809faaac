package provider

import (
	"maps"
	"strings"
)

// AssetMapping translates caller symbols to source identifiers for one call.
type AssetMapping struct {
	// ReverseMapping maps a source id back to the lower-cased caller symbol.
	// Duplicate symbols collapse here; the last one wins.
	ReverseMapping map[string]string
	// AssetIDs holds the source ids in request order, duplicates included.
	AssetIDs []string
	// InvalidAssets holds caller symbols the source has no id for.
	InvalidAssets []string
}

// MapAssets looks up every symbol, lower-cased, in table.
// Unknown symbols are collected instead of failing so the caller can report all of them at once.
func MapAssets(assets []string, table map[string]string) AssetMapping {
	m := AssetMapping{
		ReverseMapping: make(map[string]string, len(assets)),
		AssetIDs:       make([]string, 0, len(assets)),
	}
	for _, asset := range assets {
		lower := strings.ToLower(strings.TrimSpace(asset))
		id, ok := table[lower]
		if !ok || id == "" {
			m.InvalidAssets = append(m.InvalidAssets, asset)
			continue
		}
		m.AssetIDs = append(m.AssetIDs, id)
		m.ReverseMapping[id] = lower
	}
	return m
}

// Err returns an *UnsupportedAssetError when any asset could not be mapped.
func (m AssetMapping) Err(source string) error {
	if len(m.InvalidAssets) == 0 {
		return nil
	}
	return &UnsupportedAssetError{Source: source, Assets: append([]string(nil), m.InvalidAssets...)}
}

// Pending returns a copy of ReverseMapping that callers can drain while
// matching a response, to detect ids the source never returned.
func (m AssetMapping) Pending() map[string]string {
	return maps.Clone(m.ReverseMapping)
}

// UniqueIDs returns AssetIDs without duplicates, first occurrence kept.
func (m AssetMapping) UniqueIDs() []string {
	seen := make(map[string]struct{}, len(m.AssetIDs))
	out := make([]string, 0, len(m.AssetIDs))
	for _, id := range m.AssetIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Remaining lists the caller symbols still left in pending, in request order.
func (m AssetMapping) Remaining(pending map[string]string) []string {
	out := make([]string, 0, len(pending))
	for _, id := range m.UniqueIDs() {
		if sym, ok := pending[id]; ok {
			out = append(out, sym)
		}
	}
	return out
}
