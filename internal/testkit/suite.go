package testkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"metalpriceservice/internal/repository"
)

// Suite owns the Postgres and Redis dependencies for one test binary and
// hands out migrated, ready-to-use clients.
type Suite struct {
	mu     sync.Mutex
	env    Env
	log    *zap.SugaredLogger
	pg     *endpoint
	redis  *endpoint
	db     *sql.DB
	rdb    *redis.Client
	active bool
}

var (
	globalSuite *Suite
	globalOnce  sync.Once
)

// Global returns the process-wide Suite.
func Global() *Suite {
	globalOnce.Do(func() {
		globalSuite = &Suite{log: zap.NewExample().Sugar()}
	})
	return globalSuite
}

// Setup starts the containers, opens the clients and applies migrations.
func (s *Suite) Setup(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return errors.New("suite already set up; call Shutdown first")
	}
	if s.env, err = LoadEnv(); err != nil {
		return fmt.Errorf("load test env: %w", err)
	}
	defer func() {
		if err != nil {
			s.teardown(ctx)
		}
	}()

	if s.pg, err = startPostgres(ctx, s.env); err != nil {
		return fmt.Errorf("setup postgres: %w", err)
	}
	if s.redis, err = startRedis(ctx, s.env); err != nil {
		return fmt.Errorf("setup redis: %w", err)
	}

	if s.db, err = repository.OpenDSN(s.pg.addr); err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if err = repository.RunMigrations(s.db, s.log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	s.rdb = redis.NewClient(&redis.Options{Addr: s.redis.addr})
	if err = s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	s.active = true
	s.log.Infow("Integration suite ready", "redis_addr", s.redis.addr, "external_pg", s.pg.container == nil)
	return nil
}

// Shutdown closes clients and terminates containers unless keep_containers is set.
func (s *Suite) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.teardown(ctx)
	s.active = false
}

func (s *Suite) teardown(ctx context.Context) {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}

	if s.env.KeepContainers {
		s.log.Infow("Keeping containers", "postgres_dsn", s.pg.addrOrEmpty(), "redis_addr", s.redis.addrOrEmpty())
		return
	}
	if err := s.redis.terminate(ctx); err != nil {
		s.log.Warnw("Failed to terminate redis container", "error", err)
	}
	if err := s.pg.terminate(ctx); err != nil {
		s.log.Warnw("Failed to terminate postgres container", "error", err)
	}
}

func (e *endpoint) addrOrEmpty() string {
	if e == nil {
		return ""
	}
	return e.addr
}

// DB returns the migrated test database.
func (s *Suite) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Redis returns the test Redis client.
func (s *Suite) Redis() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb
}

// Reset truncates every service table and flushes Redis.
func (s *Suite) Reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx, "TRUNCATE TABLE refreshes, preferences"); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	if err := s.Redis().FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

// Run sets up the suite, runs the tests and shuts down. Intended for TestMain.
func (s *Suite) Run(m *testing.M) {
	ctx := context.Background()

	if err := s.Setup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	s.Shutdown(ctx)
	os.Exit(code)
}

// Run delegates to Global().Run.
func Run(m *testing.M) {
	Global().Run(m)
}
