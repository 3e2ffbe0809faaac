package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedAsset indicates that a source has no identifier for a requested asset.
	ErrUnsupportedAsset = errors.New("unsupported asset")
	// ErrIncompleteResponse indicates that a source returned fewer assets than requested.
	ErrIncompleteResponse = errors.New("incomplete response")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates a response body that could not be turned into quotes.
	ErrInvalidResponse = errors.New("invalid response")
)

// UnsupportedAssetError names the assets a source cannot serve.
type UnsupportedAssetError struct {
	Source string
	Assets []string
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("invalid assets for %s: %s", e.Source, strings.Join(e.Assets, ", "))
}

func (e *UnsupportedAssetError) Unwrap() error { return ErrUnsupportedAsset }

// MissingAssetsError reports requested assets absent from a source response.
func MissingAssetsError(source string, assets []string) error {
	return fmt.Errorf("%w: assets with invalid %s asset IDs: %s", ErrIncompleteResponse, source, strings.Join(assets, ", "))
}
