package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert writes the latest record for a place, replacing any prior row.
func (r *PGRepo) Upsert(ctx context.Context, record Record) error {
	if record.PlaceID == "" {
		return fmt.Errorf("place_id is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	const query = `
INSERT INTO gbp_results (place_id, title, score, data, narrative, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (place_id) DO UPDATE SET
	title = EXCLUDED.title,
	score = EXCLUDED.score,
	data = EXCLUDED.data,
	narrative = EXCLUDED.narrative,
	updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, query,
		record.PlaceID,
		record.Title,
		record.Score,
		payload,
		record.Narrative,
		time.Now().UTC(),
	)
	return err
}

// GetByPlaceID returns the stored record for a place.
func (r *PGRepo) GetByPlaceID(ctx context.Context, placeID string) (Record, error) {
	const query = `
SELECT data, narrative
FROM gbp_results
WHERE place_id = $1
LIMIT 1`
	var payload []byte
	var narrative sql.NullString
	err := r.DB.QueryRowContext(ctx, query, placeID).Scan(&payload, &narrative)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	if narrative.Valid {
		record.Narrative = narrative.String
	}
	return record, nil
}
