package api

import (
	"context"

	"metalpriceservice/internal/service"
)

// mockPriceService implements service.PriceServiceInterface for testing.
type mockPriceService struct {
	requestRefreshFunc    func(ctx context.Context, opts service.RefreshOptions) (string, string, error)
	getRefreshResultFunc  func(ctx context.Context, refreshID string) (*service.RefreshResult, error)
	currentPricesFunc     func(ctx context.Context) (*service.PriceView, error)
	convertFunc           func(ctx context.Context, req service.ConversionRequest) (*service.ConversionResult, error)
	getPreferencesFunc    func(ctx context.Context) (*service.PreferencesView, error)
	updatePreferencesFunc func(ctx context.Context, upd service.PreferencesUpdate) (*service.PreferencesView, error)
}

func (m *mockPriceService) RequestRefresh(ctx context.Context, opts service.RefreshOptions) (string, string, error) {
	return m.requestRefreshFunc(ctx, opts)
}

func (m *mockPriceService) ProcessRefresh(_ context.Context, _, _ string, _ bool) error {
	return nil // Not used in handler tests
}

func (m *mockPriceService) GetRefreshResult(ctx context.Context, refreshID string) (*service.RefreshResult, error) {
	return m.getRefreshResultFunc(ctx, refreshID)
}

func (m *mockPriceService) CurrentPrices(ctx context.Context) (*service.PriceView, error) {
	return m.currentPricesFunc(ctx)
}

func (m *mockPriceService) Convert(ctx context.Context, req service.ConversionRequest) (*service.ConversionResult, error) {
	return m.convertFunc(ctx, req)
}

func (m *mockPriceService) GetPreferences(ctx context.Context) (*service.PreferencesView, error) {
	return m.getPreferencesFunc(ctx)
}

func (m *mockPriceService) UpdatePreferences(ctx context.Context, upd service.PreferencesUpdate) (*service.PreferencesView, error) {
	return m.updatePreferencesFunc(ctx, upd)
}
