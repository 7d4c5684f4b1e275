package analyses

import (
	"sync"
	"time"
)

const pollLimitWindow = 1 * time.Second

type pollLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &pollLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *pollLimiter) Allow(jobID string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[jobID]; ok {
		if now.Sub(last) < l.window {
			return false
		}
	}
	l.prune(now)
	l.lastHit[jobID] = now
	return true
}

// prune drops entries outside the window so the map stays bounded by
// the set of jobs polled within the last window. Caller holds the lock.
func (l *pollLimiter) prune(now time.Time) {
	for id, last := range l.lastHit {
		if now.Sub(last) >= l.window {
			delete(l.lastHit, id)
		}
	}
}

func (l *pollLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(pollLimitWindow.Seconds())
	}
	return int(l.window.Seconds())
}
