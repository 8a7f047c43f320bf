package memory

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// WindowLimiter is a fixed-window counter keyed by identity. With limit=3 the
// first three calls in a window are allowed and the fourth is rejected. A
// rejected call leaves the counter untouched.
type WindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	nowF    func() time.Time
}

// NewWindowLimiter allows limit calls per identity per period. A nil now uses time.Now.
func NewWindowLimiter(limit int, period time.Duration, now func() time.Time) *WindowLimiter {
	if now == nil {
		now = time.Now
	}
	return &WindowLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		nowF:    now,
	}
}

// Allow records a call for identity and reports whether it is within the limit.
func (l *WindowLimiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowF()
	w, ok := l.windows[identity]
	if !ok || now.After(w.resetAt) {
		l.windows[identity] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Sweep drops windows that have elapsed.
func (l *WindowLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowF()
	n := 0
	for k, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (l *WindowLimiter) Run(ctx context.Context, interval time.Duration) {
	runSweeper(ctx, interval, l.Sweep)
}
