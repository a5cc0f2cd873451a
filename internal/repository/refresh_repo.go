package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"metalpriceservice/internal/rates"
)

// Status represents the state of a rate refresh.
type Status string

// Status values for the refresh lifecycle.
const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Source names where a refresh takes its rates from.
type Source string

// Sources a refresh can use.
const (
	SourceLive Source = "live"
	SourceMock Source = "mock"
)

// Refresh is one fetch of a rate snapshot.
type Refresh struct {
	ID          string
	Base        string
	Source      Source
	Status      Status
	Snapshot    *rates.Snapshot
	ErrorMsg    *string
	RequestedAt time.Time
	UpdatedAt   *time.Time
}

// RefreshRepository defines DB operations for refreshes.
type RefreshRepository interface {
	CreateRefresh(ctx context.Context, base string, source Source, id string) (string, error)
	MarkRunning(ctx context.Context, id string) error
	MarkSuccess(ctx context.Context, id string, snapshot rates.Snapshot) error
	MarkFailed(ctx context.Context, id, errorMsg string) error
	GetByID(ctx context.Context, id string) (*Refresh, error)
	GetLatestCompleted(ctx context.Context) (*Refresh, error)
}

// PostgresRefreshRepository is an implementation of RefreshRepository using PostgreSQL.
type PostgresRefreshRepository struct {
	db *sql.DB
}

// NewPostgresRefreshRepository creates a new PostgresRefreshRepository.
func NewPostgresRefreshRepository(db *sql.DB) RefreshRepository {
	return &PostgresRefreshRepository{db: db}
}

// CreateRefresh inserts a PENDING refresh. If a refresh for the same base is
// already pending or running, the existing ID is returned instead.
func (r *PostgresRefreshRepository) CreateRefresh(ctx context.Context, base string, source Source, id string) (string, error) {
	query := `INSERT INTO refreshes (id, base, source, status, requested_at)
              VALUES ($1::uuid, $2, $3, 'PENDING'::refresh_status, NOW())
              ON CONFLICT (base) WHERE status IN ('PENDING', 'RUNNING')
              DO UPDATE SET base = refreshes.base
              RETURNING id::text`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, base, string(source)).Scan(&returnedID)
	if err != nil {
		return "", fmt.Errorf("failed to create refresh: %w", err)
	}
	return returnedID, nil
}

// MarkRunning moves a PENDING refresh to RUNNING.
func (r *PostgresRefreshRepository) MarkRunning(ctx context.Context, id string) error {
	query := `UPDATE refreshes
				SET status=$1::refresh_status, updated_at=NOW()
				WHERE id=$2::uuid AND status=$3::refresh_status`
	result, err := r.db.ExecContext(ctx, query, StatusRunning, id, StatusPending)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

// MarkSuccess stores the fetched snapshot and moves the refresh to SUCCESS.
func (r *PostgresRefreshRepository) MarkSuccess(ctx context.Context, id string, snapshot rates.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	query := `UPDATE refreshes
				SET status=$1::refresh_status,
				    snapshot=$2::jsonb,
				    error=NULL,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status IN ($4::refresh_status, $5::refresh_status)`

	result, err := r.db.ExecContext(ctx, query, StatusSuccess, string(data), id, StatusPending, StatusRunning)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

// MarkFailed moves the refresh to FAILED with an error message and no snapshot.
func (r *PostgresRefreshRepository) MarkFailed(ctx context.Context, id, errorMsg string) error {
	query := `UPDATE refreshes
				SET status=$1::refresh_status,
				    snapshot=NULL,
				    error=$2,
				    updated_at=NOW()
				WHERE id=$3::uuid AND status IN ($4::refresh_status, $5::refresh_status)`

	result, err := r.db.ExecContext(ctx, query, StatusFailed, errorMsg, id, StatusPending, StatusRunning)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, id)
}

func checkRowsAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("refresh %s not found or already completed", id)
	}
	return nil
}

const refreshColumns = `id::text, base, source, status, snapshot, error, requested_at, updated_at`

// GetByID retrieves a refresh by ID.
func (r *PostgresRefreshRepository) GetByID(ctx context.Context, id string) (*Refresh, error) {
	query := `SELECT ` + refreshColumns + `
              FROM refreshes
              WHERE id=$1::uuid`

	return scanRefresh(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestCompleted returns the most recently completed refresh, successful or not.
func (r *PostgresRefreshRepository) GetLatestCompleted(ctx context.Context) (*Refresh, error) {
	query := `SELECT ` + refreshColumns + `
              FROM refreshes
              WHERE status IN ($1::refresh_status, $2::refresh_status)
              ORDER BY updated_at DESC
              LIMIT 1`

	return scanRefresh(r.db.QueryRowContext(ctx, query, StatusSuccess, StatusFailed))
}

// scanRefresh maps a single row into a Refresh, returning (nil, nil) for sql.ErrNoRows.
func scanRefresh(row *sql.Row) (*Refresh, error) {
	var q Refresh
	var source, status string
	var snapshot []byte
	var errMsg sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(&q.ID, &q.Base, &source, &status, &snapshot, &errMsg, &q.RequestedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	q.Source = Source(source)
	q.Status = Status(status)
	if len(snapshot) > 0 {
		var s rates.Snapshot
		if err := json.Unmarshal(snapshot, &s); err != nil {
			return nil, fmt.Errorf("decode snapshot of refresh %s: %w", q.ID, err)
		}
		q.Snapshot = &s
	}
	if errMsg.Valid {
		q.ErrorMsg = &errMsg.String
	}
	if updatedAt.Valid {
		q.UpdatedAt = &updatedAt.Time
	}
	return &q, nil
}
