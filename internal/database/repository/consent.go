package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arlo/localdash/internal/database"
	"github.com/arlo/localdash/internal/location"
)

// ConsentRepo persists the user's location-consent decision.
type ConsentRepo struct {
	DB *sql.DB
}

// Get returns the recorded decision. When no decision exists it returns
// location.ErrUndecided so the caller can prompt.
func (r *ConsentRepo) Get(ctx context.Context) (location.Decision, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT granted FROM location_consent WHERE id = 1`)
	var granted int
	if err := row.Scan(&granted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return location.DecisionDenied, location.ErrUndecided
		}
		return location.DecisionDenied, err
	}
	if granted != 0 {
		return location.DecisionGranted, nil
	}
	return location.DecisionDenied, nil
}

// Set records the decision, replacing any earlier one.
func (r *ConsentRepo) Set(ctx context.Context, d location.Decision) error {
	granted := 0
	if d == location.DecisionGranted {
		granted = 1
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO location_consent (id, granted, decided_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			granted = excluded.granted,
			decided_at = excluded.decided_at
	`, granted, database.Now().Format(time.RFC3339))
	return err
}
