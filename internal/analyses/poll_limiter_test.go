package analyses

import (
	"fmt"
	"testing"
	"time"
)

func TestPollLimiterThrottlesWithinWindow(t *testing.T) {
	current := time.Unix(0, 0)
	l := newPollLimiter(time.Second, func() time.Time { return current })

	if !l.Allow("job-1") {
		t.Fatal("first poll must pass")
	}
	if l.Allow("job-1") {
		t.Fatal("second poll inside the window must be throttled")
	}

	current = current.Add(2 * time.Second)
	if !l.Allow("job-1") {
		t.Fatal("poll after the window must pass")
	}
}

func TestPollLimiterJobsAreIndependent(t *testing.T) {
	current := time.Unix(0, 0)
	l := newPollLimiter(time.Second, func() time.Time { return current })

	if !l.Allow("job-1") || !l.Allow("job-2") {
		t.Fatal("distinct jobs must not throttle each other")
	}
}

func TestPollLimiterEvictsStaleEntries(t *testing.T) {
	current := time.Unix(0, 0)
	l := newPollLimiter(time.Second, func() time.Time { return current })

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("job-%d", i))
	}

	current = current.Add(2 * time.Second)
	l.Allow("job-new")

	l.mu.Lock()
	size := len(l.lastHit)
	l.mu.Unlock()
	if size != 1 {
		t.Fatalf("stale entries must be evicted, map holds %d", size)
	}
}
