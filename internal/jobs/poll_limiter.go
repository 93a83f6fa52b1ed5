package jobs

import (
	"sync"
	"time"
)

const pollLimitWindow = 1 * time.Second

// pollLimiter allows one status query per key per window.
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

func (l *pollLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok && now.Sub(last) < l.window {
		return false
	}
	l.lastHit[key] = now
	l.evict(now)
	return true
}

// evict drops keys idle for more than a minute so the map does not grow per job forever.
func (l *pollLimiter) evict(now time.Time) {
	if len(l.lastHit) < 1024 {
		return
	}
	for key, last := range l.lastHit {
		if now.Sub(last) > time.Minute {
			delete(l.lastHit, key)
		}
	}
}

func (l *pollLimiter) RetryAfterSeconds() int {
	if l == nil {
		return int(pollLimitWindow.Seconds())
	}
	return int(l.window.Seconds())
}
