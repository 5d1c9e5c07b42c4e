package control

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/dkeye/Remote/internal/app"
)

// ConnRateLimiter keeps one token bucket per connection.
// A non-positive limit disables limiting.
type ConnRateLimiter struct {
	mu       sync.Mutex
	limiters map[app.SessionID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewConnRateLimiter(perSecond float64, burst int) *ConnRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ConnRateLimiter{
		limiters: make(map[app.SessionID]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *ConnRateLimiter) Allow(sid app.SessionID) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	l, ok := rl.limiters[sid]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[sid] = l
	}
	rl.mu.Unlock()
	return l.Allow()
}

func (rl *ConnRateLimiter) Forget(sid app.SessionID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, sid)
}
