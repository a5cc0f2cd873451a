// Package main is the entry point for the metal price service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"metalpriceservice/internal/config"
	"metalpriceservice/internal/preferences"
	"metalpriceservice/internal/provider"
	"metalpriceservice/internal/rates"
	"metalpriceservice/internal/repository"
	"metalpriceservice/internal/service"
	"metalpriceservice/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg         *config.Config
	logger      *zap.SugaredLogger
	db          *sql.DB
	rdbCache    *redis.Client
	rdbAsynq    *redis.Client
	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	httpServer  *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	db, err := repository.NewPostgresDB(&app.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to Postgres: %w", err)
	}
	app.db = db

	if err := repository.RunMigrations(app.db, app.logger); err != nil {
		return fmt.Errorf("run DB migrations: %w", err)
	}

	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			Logger:                   app.logger,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	prefRepo := repository.NewPostgresPreferenceRepository(app.db)
	prefs, err := preferences.Load(context.Background(), prefRepo, preferences.Preferences{
		APIKey:       app.cfg.Metals.APIKey,
		BaseCurrency: rates.Code(app.cfg.Metals.DefaultBase),
	})
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	app.logger.Infow("Preferences loaded", "base_currency", prefs.BaseCurrency, "has_api_key", prefs.HasAPIKey())

	refreshRepo := repository.NewPostgresRefreshRepository(app.db)
	currencyValidator := service.NewValidator()
	asynqEnqueuer := worker.NewAsynqEnqueuer(
		app.asynqClient,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)
	priceService := service.NewPriceService(
		refreshRepo,
		newRateSources(app.cfg, app.rdbCache),
		prefRepo,
		prefs,
		currencyValidator,
		asynqEnqueuer,
		app.rdbCache,
		app.logger,
		service.Options{
			GramsPerTroyOunce:  app.cfg.Engine.GramsPerTroyOunce,
			CurrentSnapshotTTL: time.Duration(app.cfg.Cache.CurrentSnapshotTTLSec) * time.Second,
			UseMockByDefault:   app.cfg.Metals.UseMock,
		})

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(service.TaskTypeRefresh, worker.NewRefreshHandler(priceService, app.logger))

	return app.initHTTP(priceService)
}

// newRateSources builds the live Metals-API source behind the provider cache,
// plus the static mock table. The live source is omitted when no base URL is set.
func newRateSources(cfg *config.Config, cache *redis.Client) service.Sources {
	sources := service.Sources{Mock: provider.NewMockProvider()}
	if cfg.Metals.BaseURL == "" {
		return sources
	}

	ttl := time.Duration(cfg.Cache.ProviderTTLSec) * time.Second
	live := provider.NewMetalsAPIProvider(cfg.Metals.BaseURL, cfg.Metals.Symbols, cfg.Metals.Timeout)
	sources.Live = provider.NewCachedRatesSource(live, cache, ttl, provider.MetalsAPIName)
	return sources
}

// Run starts the HTTP server and Asynq worker, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown tears down in order: HTTP server, Asynq worker, then connections,
// so in-flight refreshes can still reach Postgres and Redis.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	app.asynqServer.Shutdown()

	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
