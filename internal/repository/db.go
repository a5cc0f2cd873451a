// Package repository implements PostgreSQL storage for rate refreshes and preferences.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"metalpriceservice/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver registration
)

const pingTimeout = 5 * time.Second

// NewPostgresDB opens a pooled database connection using the provided configuration.
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := OpenDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)
	return db, nil
}

// OpenDSN opens a pgx-backed *sql.DB for dsn and verifies it with a ping.
func OpenDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return db, nil
}
