package noise

import (
	"sync"
	"time"
)

// Defaults calibrated against observed reconnect storms.
const (
	DefaultMaxSameError = 3
	DefaultResetWindow  = 30 * time.Second
)

type counter struct {
	count       int
	windowStart time.Time
}

// Throttle rate-limits repeated identical diagnostics. The first max
// occurrences of a pattern inside the rolling window are allowed; the rest
// are suppressed until the window elapses and the counter restarts.
//
// State is process-local and never persisted. The clock is injected so
// tests can advance time deterministically.
type Throttle struct {
	mu       sync.Mutex
	counters map[string]*counter
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewThrottle(max int, window time.Duration) *Throttle {
	if max <= 0 {
		max = DefaultMaxSameError
	}
	if window <= 0 {
		window = DefaultResetWindow
	}
	return &Throttle{
		counters: make(map[string]*counter),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// WithClock replaces the throttle's clock. Test hook.
func (t *Throttle) WithClock(now func() time.Time) *Throttle {
	t.now = now
	return t
}

// ShouldThrottle records an occurrence of pattern and reports whether it
// must be suppressed. The increment and window-reset check are a single
// critical section so concurrent callers never under- or over-count.
func (t *Throttle) ShouldThrottle(pattern string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	c, ok := t.counters[pattern]
	if !ok || now.Sub(c.windowStart) >= t.window {
		t.counters[pattern] = &counter{count: 1, windowStart: now}
		return false
	}

	c.count++
	return c.count > t.max
}

// Stats reports occurrence counts for patterns that have actually been
// throttled in their current window. Patterns still under the threshold
// are not reported.
func (t *Throttle) Stats() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := make(map[string]int)
	for pattern, c := range t.counters {
		if c.count > t.max {
			stats[pattern] = c.count
		}
	}
	return stats
}
