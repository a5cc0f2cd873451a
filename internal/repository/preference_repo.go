package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"metalpriceservice/internal/preferences"
)

var _ preferences.Store = (*PostgresPreferenceRepository)(nil)

// PostgresPreferenceRepository stores preferences as key-value rows.
type PostgresPreferenceRepository struct {
	db *sql.DB
}

// NewPostgresPreferenceRepository creates a new PostgresPreferenceRepository.
func NewPostgresPreferenceRepository(db *sql.DB) *PostgresPreferenceRepository {
	return &PostgresPreferenceRepository{db: db}
}

// GetPreference returns the stored value for key and whether a row exists.
func (r *PostgresPreferenceRepository) GetPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key=$1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference upserts the value for key.
func (r *PostgresPreferenceRepository) SetPreference(ctx context.Context, key, value string) error {
	query := `INSERT INTO preferences (key, value, updated_at)
              VALUES ($1, $2, NOW())
              ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}
