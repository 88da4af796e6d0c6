package analytics

import (
	"sync"
	"time"
)

// rateLimiter counts requests per key in fixed windows. Counters of a
// finished window are dropped lazily on the next request.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	size    time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

func newRateLimiter(max int, size time.Duration) *rateLimiter {
	return &rateLimiter{
		windows: make(map[string]*window),
		max:     max,
		size:    size,
		now:     time.Now,
	}
}

// allow records a request for key and reports whether it is within the limit.
func (rl *rateLimiter) allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.windows) > 10000 {
		rl.sweep(now)
	}
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.size {
		rl.windows[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= rl.max {
		return false
	}
	w.count++
	return true
}

// sweep drops expired windows. rl.mu must be held.
func (rl *rateLimiter) sweep(now time.Time) {
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.size {
			delete(rl.windows, key)
		}
	}
}
