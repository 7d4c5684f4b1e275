package profile

import (
	"context"
	"errors"
)

// ErrNotFound indicates no stored result for the place.
var ErrNotFound = errors.New("result not found")

// Repo defines persistence operations for analysis results. Upsert is
// last-write-wins keyed by place_id.
type Repo interface {
	Upsert(ctx context.Context, record Record) error
	GetByPlaceID(ctx context.Context, placeID string) (Record, error)
}
