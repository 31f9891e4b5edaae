package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// VisitorRateLimit keeps one token bucket per client IP
type VisitorRateLimit struct {
	visitors  map[string]*visitor
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewVisitorRateLimit creates a limiter allowing rps requests per second with
// the given burst for each IP
func NewVisitorRateLimit(rps float64, burst int) *VisitorRateLimit {
	if burst < 1 {
		burst = 1
	}
	return &VisitorRateLimit{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

// Check checks if the IP is within rate limit
func (r *VisitorRateLimit) Check(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Clean idle visitors
	if now.Sub(r.lastSweep) > time.Minute {
		for key, v := range r.visitors {
			if now.Sub(v.lastSeen) > r.idle {
				delete(r.visitors, key)
			}
		}
		r.lastSweep = now
	}

	v, exists := r.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked visitors
func (r *VisitorRateLimit) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}
