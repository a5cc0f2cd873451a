// Package provider implements the rate sources that supply rate snapshots.
package provider

import (
	"context"
	"errors"

	"metalpriceservice/internal/rates"
)

// RatesSource fetches a snapshot of metal and currency rates relative to base.
type RatesSource interface {
	FetchRates(ctx context.Context, apiKey string, base rates.Code) (rates.Snapshot, error)
}

// ErrMissingCredential is returned when a live fetch is requested without an API key.
var ErrMissingCredential = errors.New("enter your Metals-API access key")

// ProviderError reports a failed fetch. Its message is shown to users verbatim.
type ProviderError struct {
	Provider string
	Msg      string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(provider string, err error, msg string) *ProviderError {
	return &ProviderError{Provider: provider, Msg: msg, Err: err}
}
