package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Job statuses. Transitions move forward only; the two terminal states
// are final.
const (
	StatusPending  = "Pending"
	StatusStarted  = "Analysis Started"
	StatusRunning  = "Analyzing"
	StatusWriting  = "Writing the Analysis"
	StatusFinished = "Analysis Finished"
	StatusFailed   = "Analysis Failed"
)

// StatusNotFound is reported for unknown job IDs. It is never stored.
const StatusNotFound = "not_found"

// ErrNotFound indicates no job exists for the given ID.
var ErrNotFound = errors.New("job not found")

// Job tracks one background analysis through its lifecycle. Params
// holds the original request so queue consumers can re-run it from the
// job row alone.
type Job struct {
	ID        string          `json:"id"`
	PlaceID   string          `json:"place_id"`
	Status    string          `json:"status"`
	Params    json.RawMessage `json:"params,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the status allows no further transitions.
func IsTerminal(status string) bool {
	return status == StatusFinished || status == StatusFailed
}

// ValidStatus reports whether the status is one of the known values.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusStarted, StatusRunning, StatusWriting, StatusFinished, StatusFailed:
		return true
	}
	return false
}

// AllStatuses lists every storable status, in lifecycle order.
func AllStatuses() []string {
	return []string{StatusPending, StatusStarted, StatusRunning, StatusWriting, StatusFinished, StatusFailed}
}

// Repo defines persistence operations for jobs. UpdateStatus on a job
// already in a terminal state is a no-op, not an error.
type Repo interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, jobID string) (Job, error)
	UpdateStatus(ctx context.Context, jobID, status string) error
	SetPlaceID(ctx context.Context, jobID, placeID string) error
}
