// Package service implements the business logic for fetching rate snapshots,
// deriving metal prices, converting amounts and managing preferences.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"metalpriceservice/internal/preferences"
	"metalpriceservice/internal/provider"
	"metalpriceservice/internal/rates"
	"metalpriceservice/internal/repository"
)

const failureBookkeepingTimeout = 5 * time.Second

// PriceServiceInterface defines the operations available to the presentation layer and the worker.
type PriceServiceInterface interface {
	RequestRefresh(ctx context.Context, opts RefreshOptions) (refreshID, status string, err error)
	ProcessRefresh(ctx context.Context, refreshID, base string, useMock bool) error
	GetRefreshResult(ctx context.Context, refreshID string) (*RefreshResult, error)
	CurrentPrices(ctx context.Context) (*PriceView, error)
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error)
	GetPreferences(ctx context.Context) (*PreferencesView, error)
	UpdatePreferences(ctx context.Context, upd PreferencesUpdate) (*PreferencesView, error)
}

// Sources are the rate sources a refresh can draw from. Live may be nil when
// the service runs in mock-only mode.
type Sources struct {
	Live provider.RatesSource
	Mock provider.RatesSource
}

// Options tunes the service.
type Options struct {
	GramsPerTroyOunce  float64
	CurrentSnapshotTTL time.Duration
	UseMockByDefault   bool
}

// PriceService implements PriceServiceInterface.
type PriceService struct {
	repo      repository.RefreshRepository
	sources   Sources
	prefStore preferences.Store
	validator Validator
	enqueuer  TaskEnqueuer
	cache     *redis.Client
	log       *zap.SugaredLogger
	opts      Options

	mu    sync.RWMutex
	prefs preferences.Preferences
}

// NewPriceService creates a new PriceService. prefs are the preferences
// loaded at startup; later changes are written back through prefStore.
func NewPriceService(
	repo repository.RefreshRepository,
	sources Sources,
	prefStore preferences.Store,
	prefs preferences.Preferences,
	validator Validator,
	enqueuer TaskEnqueuer,
	cache *redis.Client,
	logger *zap.SugaredLogger,
	opts Options,
) *PriceService {
	return &PriceService{
		repo:      repo,
		sources:   sources,
		prefStore: prefStore,
		prefs:     prefs,
		validator: validator,
		enqueuer:  enqueuer,
		cache:     cache,
		log:       logger,
		opts:      opts,
	}
}

func (s *PriceService) preferences() preferences.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// RequestRefresh records a refresh and schedules the fetch in the background.
// A live refresh without an API key is refused before anything is recorded.
func (s *PriceService) RequestRefresh(ctx context.Context, opts RefreshOptions) (refreshID, status string, err error) {
	prefs := s.preferences()

	base := opts.Base
	if base == "" {
		base = string(prefs.BaseCurrency)
	}
	if vErr := s.validator.Validate(base); vErr != nil {
		return "", "", vErr
	}

	useMock := s.opts.UseMockByDefault
	if opts.UseMock != nil {
		useMock = *opts.UseMock
	}
	source := repository.SourceMock
	if !useMock {
		if !prefs.HasAPIKey() {
			return "", "", ErrMissingCredential
		}
		if s.sources.Live == nil {
			s.log.Errorw("Live refresh requested but no live source is configured")
			return "", "", ErrInternal
		}
		source = repository.SourceLive
	}

	uid := uuid.New().String()
	id, err := s.repo.CreateRefresh(ctx, base, source, uid)
	if err != nil {
		s.log.Errorw("CreateRefresh DB error", "error", err)
		return "", "", ErrInternal
	}

	if id != uid {
		s.log.Infow("Refresh already in flight", "refresh_id", id, "base", base)
		return id, string(repository.StatusPending), nil
	}

	payload := RefreshPayload{RefreshID: id, Base: base, UseMock: useMock}
	if err := s.enqueuer.EnqueueRefreshTask(ctx, payload); err != nil {
		s.log.Errorw("Failed to enqueue task", "refresh_id", id, "error", err)
		s.markFailed(ctx, id, "enqueue error")
		return "", "", ErrInternalQueue
	}

	s.log.Infow("Enqueued refresh task", "refresh_id", id, "base", base, "source", source)
	return id, string(repository.StatusPending), nil
}

// ProcessRefresh performs the fetch for a recorded refresh (called by the
// background worker). A successful fetch replaces the current snapshot; a
// failed one clears it.
func (s *PriceService) ProcessRefresh(ctx context.Context, refreshID, base string, useMock bool) error {
	if vErr := s.validator.Validate(base); vErr != nil {
		s.completeFailure(ctx, refreshID, vErr)
		return vErr
	}

	src := s.sources.Live
	if useMock {
		src = s.sources.Mock
	}
	if src == nil {
		err := errors.New("rate source not configured")
		s.completeFailure(ctx, refreshID, err)
		return err
	}

	s.log.Infow("Processing refresh", "refresh_id", refreshID, "base", base, "mock", useMock)
	s.markRunning(ctx, refreshID)

	snapshot, err := src.FetchRates(ctx, s.preferences().APIKey, rates.Code(base))
	if errors.Is(err, provider.ErrMissingCredential) {
		err = ErrMissingCredential
	}
	if err != nil {
		s.completeFailure(ctx, refreshID, err)
		return err
	}

	if err := s.repo.MarkSuccess(ctx, refreshID, snapshot); err != nil {
		s.log.Errorw("DB update error on success", "refresh_id", refreshID, "error", err)
		s.completeFailure(ctx, refreshID, err)
		return err
	}

	s.cacheSetCurrent(ctx, snapshot)
	s.log.Infow("Refresh success", "refresh_id", refreshID, "base", snapshot.Base, "rates", len(snapshot.Rates))
	return nil
}

// GetRefreshResult retrieves the status and result of a refresh.
func (s *PriceService) GetRefreshResult(ctx context.Context, refreshID string) (*RefreshResult, error) {
	if _, err := uuid.Parse(refreshID); err != nil {
		return nil, ErrInvalidRefreshID
	}
	r, err := s.repo.GetByID(ctx, refreshID)
	if err != nil {
		s.log.Errorw("DB error fetching refresh by ID", "refresh_id", refreshID, "error", err)
		return nil, ErrInternal
	}
	if r == nil {
		return nil, ErrNotFound
	}

	return refreshResultFromRepo(r), nil
}

// CurrentPrices derives metal prices from the current snapshot.
func (s *PriceService) CurrentPrices(ctx context.Context) (*PriceView, error) {
	snapshot, err := s.currentSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &PriceView{
		Snapshot: snapshot,
		Metals:   rates.DeriveMetalPrices(snapshot, s.opts.GramsPerTroyOunce),
	}, nil
}

// Convert converts an amount using the current snapshot.
func (s *PriceService) Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error) {
	snapshot, err := s.currentSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{
		Amount:    req.Amount,
		From:      req.From,
		To:        req.To,
		Result:    rates.Convert(snapshot, req.Amount, req.From, req.To),
		Base:      snapshot.Base,
		Timestamp: snapshot.Timestamp,
	}, nil
}

// GetPreferences returns the current preferences with the API key masked.
func (s *PriceService) GetPreferences(_ context.Context) (*PreferencesView, error) {
	return preferencesView(s.preferences()), nil
}

// UpdatePreferences applies upd and writes the result back to the store.
// The in-memory preferences change only if the write succeeds.
func (s *PriceService) UpdatePreferences(ctx context.Context, upd PreferencesUpdate) (*PreferencesView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs
	if upd.APIKey != nil {
		next.APIKey = trimmed(*upd.APIKey)
	}
	if upd.BaseCurrency != nil {
		base := trimmed(*upd.BaseCurrency)
		if err := s.validator.Validate(base); err != nil {
			return nil, err
		}
		next.BaseCurrency = rates.Code(base)
	}

	if err := preferences.Save(ctx, s.prefStore, next); err != nil {
		s.log.Errorw("Failed to save preferences", "error", err)
		return nil, ErrInternal
	}
	s.prefs = next

	s.log.Infow("Preferences updated", "base_currency", next.BaseCurrency, "has_api_key", next.HasAPIKey())
	return preferencesView(next), nil
}

func preferencesView(p preferences.Preferences) *PreferencesView {
	return &PreferencesView{
		BaseCurrency: string(p.BaseCurrency),
		HasAPIKey:    p.HasAPIKey(),
		MaskedAPIKey: p.MaskedAPIKey(),
	}
}

// currentSnapshot returns the snapshot of the latest completed refresh, or an
// error matching ErrNoSnapshot when there is none or that refresh failed.
func (s *PriceService) currentSnapshot(ctx context.Context) (rates.Snapshot, error) {
	if snapshot, ok := s.cacheGetCurrent(ctx); ok {
		return snapshot, nil
	}

	r, err := s.repo.GetLatestCompleted(ctx)
	if err != nil {
		s.log.Errorw("DB error fetching latest refresh", "error", err)
		return rates.Snapshot{}, ErrInternal
	}
	if r == nil {
		return rates.Snapshot{}, ErrNoSnapshot
	}
	if r.Status == repository.StatusFailed {
		msg := "failed to fetch prices"
		if r.ErrorMsg != nil {
			msg = *r.ErrorMsg
		}
		return rates.Snapshot{}, &FetchFailedError{RefreshID: r.ID, Msg: msg}
	}
	if r.Snapshot == nil {
		return rates.Snapshot{}, ErrNoSnapshot
	}

	s.repopulateCurrent(ctx, r)
	return *r.Snapshot, nil
}

// repopulateCurrent caches the snapshot of r, then drops it again if a newer
// refresh completed in the meantime. A failure that commits after r was read
// clears the cache before or after the write and is seen by the re-read
// either way.
func (s *PriceService) repopulateCurrent(ctx context.Context, r *repository.Refresh) {
	if s.cache == nil {
		return
	}
	s.cacheSetCurrent(ctx, *r.Snapshot)

	latest, err := s.repo.GetLatestCompleted(ctx)
	if err != nil {
		s.log.Warnw("DB error re-checking latest refresh", "error", err)
		s.cacheClearCurrent(ctx)
		return
	}
	if latest == nil || latest.ID != r.ID {
		s.log.Infow("Newer refresh completed, dropping cached snapshot", "refresh_id", r.ID)
		s.cacheClearCurrent(ctx)
	}
}

func (s *PriceService) markFailed(ctx context.Context, refreshID, reason string) {
	if err := s.repo.MarkFailed(ctx, refreshID, reason); err != nil {
		s.log.Warnw("Failed to mark refresh as FAILED", "refresh_id", refreshID, "error", err)
	}
}

func (s *PriceService) markRunning(ctx context.Context, refreshID string) {
	if err := s.repo.MarkRunning(ctx, refreshID); err != nil {
		s.log.Warnw("Failed to mark refresh as RUNNING", "refresh_id", refreshID, "error", err)
	}
}

// completeFailure records the failure even when ctx is already cancelled, so
// the refresh never stays RUNNING and the base can be refreshed again.
func (s *PriceService) completeFailure(ctx context.Context, refreshID string, cause error) {
	s.log.Errorw("Refresh failed", "refresh_id", refreshID, "error", cause)

	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureBookkeepingTimeout)
	defer cancel()
	s.markFailed(bctx, refreshID, cause.Error())
	s.cacheClearCurrent(bctx)
}

var _ PriceServiceInterface = (*PriceService)(nil)
