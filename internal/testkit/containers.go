package testkit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// endpoint is a started (or external) dependency and the address tests use to reach it.
type endpoint struct {
	container testcontainers.Container // nil for external endpoints
	addr      string
}

func (e *endpoint) terminate(ctx context.Context) error {
	if e == nil || e.container == nil {
		return nil
	}
	return e.container.Terminate(ctx)
}

// startPostgres returns a DSN endpoint for a fresh database.
func startPostgres(ctx context.Context, env Env) (*endpoint, error) {
	if env.PGDSN != "" {
		return &endpoint{addr: env.PGDSN}, nil
	}

	ctr, err := postgres.Run(ctx,
		env.PGImage,
		postgres.WithDatabase(randomName("metals")),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategyAndDeadline(env.StartupTimeout,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get postgres connection string: %w", err)
	}
	return &endpoint{container: ctr, addr: dsn}, nil
}

// startRedis returns a host:port endpoint, the form the service config uses.
func startRedis(ctx context.Context, env Env) (*endpoint, error) {
	if env.RedisAddr != "" {
		return &endpoint{addr: env.RedisAddr}, nil
	}

	ctr, err := tcredis.Run(ctx, env.RedisImage)
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get redis connection string: %w", err)
	}
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("parse redis connection string %q: %w", connStr, err)
	}
	return &endpoint{container: ctr, addr: opts.Addr}, nil
}

func randomName(prefix string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return prefix + "_test"
	}
	return prefix + "_" + hex.EncodeToString(b)
}
