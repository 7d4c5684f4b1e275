package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (id, place_id, status, params, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	var params any
	if len(job.Params) > 0 {
		params = []byte(job.Params)
	}
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.PlaceID,
		job.Status,
		params,
		job.CreatedAt,
		now,
	)
	return err
}

// Get returns a job by its ID.
func (r *PGRepo) Get(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT id, place_id, status, params, created_at, updated_at
FROM jobs
WHERE id = $1
LIMIT 1`
	var job Job
	var placeID sql.NullString
	var params []byte
	err := r.DB.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID,
		&placeID,
		&job.Status,
		&params,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, err
	}
	job.PlaceID = placeID.String
	job.Params = params
	return job, nil
}

// UpdateStatus advances a job's status. Rows already in a terminal
// state are left untouched.
func (r *PGRepo) UpdateStatus(ctx context.Context, jobID, status string) error {
	const query = `
UPDATE jobs
SET status = $2, updated_at = $3
WHERE id = $1 AND status NOT IN ($4, $5)`
	result, err := r.DB.ExecContext(ctx, query, jobID, status, time.Now().UTC(), StatusFinished, StatusFailed)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil
	}
	if affected == 0 {
		// Either the job is unknown or it already reached a terminal
		// state. Distinguish so callers can surface missing jobs.
		if _, getErr := r.Get(ctx, jobID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// SetPlaceID records the resolved place for a job.
func (r *PGRepo) SetPlaceID(ctx context.Context, jobID, placeID string) error {
	const query = `
UPDATE jobs
SET place_id = $2, updated_at = $3
WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, jobID, placeID, time.Now().UTC())
	return err
}
