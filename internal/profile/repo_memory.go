package profile

import (
	"context"
	"sync"
)

// MemoryRepo stores results in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	byPlaceID map[string]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byPlaceID: make(map[string]Record),
	}
}

// Upsert stores the record, replacing any prior one for the place.
func (r *MemoryRepo) Upsert(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlaceID[record.PlaceID] = record
	return nil
}

// GetByPlaceID returns the stored record for a place.
func (r *MemoryRepo) GetByPlaceID(ctx context.Context, placeID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byPlaceID[placeID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}
