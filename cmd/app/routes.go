package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"metalpriceservice/internal/api"
	"metalpriceservice/internal/api/middleware"
	"metalpriceservice/internal/service"
)

const monitoringPath = "/monitoring"

func (app *App) initHTTP(priceService service.PriceServiceInterface) error {
	refreshLimit, err := app.refreshRateLimit()
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/prices", func(r chi.Router) {
		r.Get("/", api.HandleGetPrices(priceService))
		r.With(refreshLimit).Post("/refresh", api.HandleRequestRefresh(priceService))
		r.Get("/refresh/{refresh_id}", api.HandleGetRefresh(priceService))
	})
	r.Get("/convert", api.HandleConvert(priceService))
	r.Get("/preferences", api.HandleGetPreferences(priceService))
	r.Put("/preferences", api.HandleUpdatePreferences(priceService))

	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(
		api.DatabaseDependency(app.db),
		api.RedisDependency("Cache", app.rdbCache),
		api.RedisDependency("Asynq Redis", app.rdbAsynq),
	))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	if app.cfg.Server.ServeAsynqmon {
		mon := asynqmon.New(asynqmon.Options{
			RootPath:     monitoringPath,
			RedisConnOpt: asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr},
			ReadOnly:     true,
		})
		r.Handle(mon.RootPath()+"/*", mon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}

// refreshRateLimit builds the per-IP limit for refresh requests, shared across
// instances through the cache Redis.
func (app *App) refreshRateLimit() (func(http.Handler) http.Handler, error) {
	if app.cfg.Server.RefreshRateLimit == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	rate, err := limiter.NewRateFromFormatted(app.cfg.Server.RefreshRateLimit)
	if err != nil {
		return nil, fmt.Errorf("parse refresh rate limit: %w", err)
	}
	store, err := sredis.NewStoreWithOptions(app.rdbCache, limiter.StoreOptions{Prefix: "refresh_limit"})
	if err != nil {
		return nil, fmt.Errorf("create rate limit store: %w", err)
	}
	return middleware.RateLimit(limiter.New(store, rate), app.logger), nil
}
