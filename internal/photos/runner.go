package photos

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gbp-backend/internal/shared/metrics"
	"gbp-backend/internal/shared/storage/object"
	"gbp-backend/internal/shared/telemetry"
)

// Runner executes gallery scrapes one at a time with a hard wall-clock
// budget. The browser runs under a context cancelled at the deadline,
// which tears the Chrome process down rather than leaving it hanging on
// an unexpected page state. Failure screenshots go to the object store
// when one is configured.
type Runner struct {
	scraper *GalleryScraper
	timeout time.Duration
	store   object.ObjectStore
	slot    chan struct{}
}

// NewRunner constructs a Runner. store may be nil to skip screenshot
// persistence.
func NewRunner(scraper *GalleryScraper, timeout time.Duration, store object.ObjectStore) *Runner {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Runner{
		scraper: scraper,
		timeout: timeout,
		store:   store,
		slot:    make(chan struct{}, 1),
	}
}

// Attributions runs one isolated scrape for the business. A timed-out
// or failed scrape yields an empty list; the error return exists only
// for caller-side context cancellation.
func (r *Runner) Attributions(ctx context.Context, placeID, title string) ([]Attribution, error) {
	select {
	case r.slot <- struct{}{}:
		defer func() { <-r.slot }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	result := r.scraper.Scrape(runCtx, placeID, title)
	metrics.ObserveScrapeDurationMs(float64(time.Since(started).Milliseconds()))

	if len(result.Attributions) == 0 {
		telemetry.Warn("photos.runner", map[string]any{
			"place_id":    placeID,
			"duration_ms": time.Since(started).Milliseconds(),
			"timed_out":   runCtx.Err() != nil,
		})
		r.saveScreenshot(placeID, result.Screenshot)
		return nil, nil
	}

	return result.Attributions, nil
}

// saveScreenshot persists a failure screenshot outside the scrape's
// cancelled context.
func (r *Runner) saveScreenshot(placeID string, shot []byte) {
	if r.store == nil || len(shot) == 0 {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fileName := fmt.Sprintf("scrape_failure_%s.png", time.Now().UTC().Format("20060102T150405"))
	key, size, _, err := r.store.Save(saveCtx, placeID, fileName, bytes.NewReader(shot))
	if err != nil {
		telemetry.Error("photos.screenshot", map[string]any{
			"place_id": placeID, "error": err.Error(),
		})
		return
	}
	telemetry.Info("photos.screenshot", map[string]any{
		"place_id": placeID, "storage_key": key, "size_bytes": size,
	})
}
