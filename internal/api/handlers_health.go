package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Status string `json:"status" example:"ready"`
}

// Pinger is a dependency that can report whether it is reachable.
type Pinger func(ctx context.Context) error

// Dependency is a named readiness check.
type Dependency struct {
	Name string
	Ping Pinger
}

// DatabaseDependency checks a Postgres pool.
func DatabaseDependency(db *sql.DB) Dependency {
	return Dependency{Name: "DB", Ping: db.PingContext}
}

// RedisDependency checks a Redis client. A nil client is always ready.
func RedisDependency(name string, rdb *redis.Client) Dependency {
	return Dependency{Name: name, Ping: func(ctx context.Context) error {
		if rdb == nil {
			return nil
		}
		return rdb.Ping(ctx).Err()
	}}
}

// HandleHealthz godoc
// @Summary Health check (liveness)
// @Description Always returns 200 OK if the service is running. Used for liveness probes.
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /healthz [get]
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	}
}

// HandleReadyz godoc
// @Summary Readiness check
// @Description Checks connectivity to Postgres, the cache Redis and the asynq Redis. Returns 200 only when all of them are reachable.
// @Tags health
// @Produce json
// @Success 200 {object} ReadyResponse "All dependencies ready"
// @Failure 503 {object} ErrorResponse "At least one dependency unavailable"
// @Router /readyz [get]
func HandleReadyz(deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, dep := range deps {
			if err := dep.Ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, dep.Name+" not ready")
				return
			}
		}
		writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
	}
}
