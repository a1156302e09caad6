package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arlo/localdash/internal/database"
	"github.com/arlo/localdash/internal/location"
)

// LocationRepo persists the single cached-location record. Writers
// overwrite the row wholesale; there is no partial update.
type LocationRepo struct {
	DB *sql.DB
}

// Load returns the cached location, or nil when none has been saved yet.
func (r *LocationRepo) Load(ctx context.Context) (*location.Value, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT latitude, longitude FROM cached_location WHERE id = 1`)
	var v location.Value
	if err := row.Scan(&v.Latitude, &v.Longitude); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Save replaces the cached location with v.
func (r *LocationRepo) Save(ctx context.Context, v location.Value) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO cached_location (id, latitude, longitude, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at
	`, v.Latitude, v.Longitude, database.Now().Format(time.RFC3339))
	return err
}
