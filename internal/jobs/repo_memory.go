package jobs

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores jobs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Job),
	}
}

// Create stores the job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	r.byID[job.ID] = job
	return nil
}

// Get returns a job by its ID.
func (r *MemoryRepo) Get(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.byID[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// UpdateStatus advances a job's status. Jobs already in a terminal
// state are left untouched.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, jobID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	if !ok {
		return ErrNotFound
	}
	if IsTerminal(job.Status) {
		return nil
	}
	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	r.byID[jobID] = job
	return nil
}

// SetPlaceID records the resolved place for a job.
func (r *MemoryRepo) SetPlaceID(ctx context.Context, jobID, placeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	if !ok {
		return ErrNotFound
	}
	job.PlaceID = placeID
	job.UpdatedAt = time.Now().UTC()
	r.byID[jobID] = job
	return nil
}
