package provider

import (
	"context"

	"github.com/stretchr/testify/mock"

	"metalpriceservice/internal/rates"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchRates(ctx context.Context, apiKey string, base rates.Code) (rates.Snapshot, error) {
	args := m.Called(ctx, apiKey, base)
	return args.Get(0).(rates.Snapshot), args.Error(1)
}
