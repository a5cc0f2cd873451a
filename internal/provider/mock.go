package provider

import (
	"context"
	"time"

	"metalpriceservice/internal/rates"
)

var _ RatesSource = (*MockProvider)(nil)

// MockProvider serves the static illustrative rate table. It needs no credential.
type MockProvider struct {
	now func() time.Time
}

// NewMockProvider creates a MockProvider stamping snapshots with the current time.
func NewMockProvider() *MockProvider {
	return &MockProvider{now: time.Now}
}

// FetchRates returns the mock table for base.
func (p *MockProvider) FetchRates(ctx context.Context, _ string, base rates.Code) (rates.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return rates.Snapshot{}, err
	}
	return rates.MockSnapshot(base, p.now().Unix()), nil
}
