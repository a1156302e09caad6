package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arlo/localdash/internal/database"
	"github.com/arlo/localdash/internal/location"
	"github.com/arlo/localdash/internal/widget"
)

// Snapshot is the last successfully fetched widget payload, kept as a
// provisional seed for the next session.
type Snapshot struct {
	Widgets   []widget.Descriptor
	Location  location.Value
	FetchedAt time.Time
}

// SnapshotRepo persists the single widget-snapshot record, overwritten
// wholesale on every successful fetch.
type SnapshotRepo struct {
	DB *sql.DB
}

// Load returns the stored snapshot, or nil when none exists.
func (r *SnapshotRepo) Load(ctx context.Context) (*Snapshot, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT payload, latitude, longitude, fetched_at FROM widget_snapshots WHERE id = 1`)
	var (
		payload   string
		s         Snapshot
		fetchedAt string
	)
	if err := row.Scan(&payload, &s.Location.Latitude, &s.Location.Longitude, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &s.Widgets); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		s.FetchedAt = t
	}
	return &s, nil
}

// Save replaces the stored snapshot with s.
func (r *SnapshotRepo) Save(ctx context.Context, s Snapshot) error {
	payload, err := json.Marshal(s.Widgets)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	fetchedAt := s.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = database.Now()
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO widget_snapshots (id, payload, latitude, longitude, fetched_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			fetched_at = excluded.fetched_at
	`, string(payload), s.Location.Latitude, s.Location.Longitude, fetchedAt.Format(time.RFC3339))
	return err
}
