package service

import (
	"time"

	"metalpriceservice/internal/rates"
	"metalpriceservice/internal/repository"
)

// RefreshResult represents a refresh as returned by the service layer.
// Fields are populated according to the refresh status:
//   - SUCCESS: Snapshot and UpdatedAt are set, ErrorMsg is nil.
//   - FAILED:  ErrorMsg is set, Snapshot is nil.
//   - PENDING/RUNNING: Snapshot, ErrorMsg and UpdatedAt are nil.
type RefreshResult struct {
	ID        string
	Base      string
	Source    string
	Status    string
	Snapshot  *rates.Snapshot
	ErrorMsg  *string
	UpdatedAt *string
}

func refreshResultFromRepo(r *repository.Refresh) *RefreshResult {
	out := &RefreshResult{
		ID:     r.ID,
		Base:   r.Base,
		Source: string(r.Source),
		Status: string(r.Status),
	}

	switch r.Status {
	case repository.StatusSuccess:
		out.Snapshot = r.Snapshot
		if r.UpdatedAt != nil {
			ts := r.UpdatedAt.UTC().Format(time.RFC3339)
			out.UpdatedAt = &ts
		}
	case repository.StatusFailed:
		out.ErrorMsg = r.ErrorMsg
	}

	return out
}

// PriceView is the current snapshot with metal prices derived from it.
type PriceView struct {
	Snapshot rates.Snapshot
	Metals   rates.MetalPrices
}

// ConversionRequest asks to convert Amount (raw user text) between two codes.
type ConversionRequest struct {
	Amount string
	From   rates.Code
	To     rates.Code
}

// ConversionResult is the outcome of a conversion against the current snapshot.
// Result is 0 when the amount or either code is unusable.
type ConversionResult struct {
	Amount    string
	From      rates.Code
	To        rates.Code
	Result    float64
	Base      rates.Code
	Timestamp int64
}

// PreferencesView is the displayable form of the stored preferences.
type PreferencesView struct {
	BaseCurrency string
	HasAPIKey    bool
	MaskedAPIKey string
}

// PreferencesUpdate carries the preference fields to change. Nil fields are kept.
type PreferencesUpdate struct {
	APIKey       *string
	BaseCurrency *string
}

// RefreshOptions controls a refresh request. Empty Base means the preferred
// base; nil UseMock means the configured default.
type RefreshOptions struct {
	Base    string
	UseMock *bool
}
