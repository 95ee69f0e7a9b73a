package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry keeps one token bucket per client key. A full bucket holds
// Requests tokens and refills completely over Window.
type limiterRegistry struct {
	now       func() time.Time
	visitors  map[string]*visitor
	lastSweep time.Time
	every     rate.Limit
	window    time.Duration
	burst     int
	mu        sync.Mutex
}

func newLimiterRegistry(limit Limit, now func() time.Time) *limiterRegistry {
	return &limiterRegistry{
		now:       now,
		visitors:  make(map[string]*visitor),
		every:     rate.Every(limit.Window / time.Duration(limit.Requests)),
		window:    limit.Window,
		burst:     limit.Requests,
		lastSweep: now(),
	}
}

func (l *limiterRegistry) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops clients idle for a whole window; their buckets would be full again anyway.
func (l *limiterRegistry) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.window {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}
