package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emplix/emplix/internal/tenant"
)

// bucket is a token bucket refilled continuously at rate tokens/second.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter throttles requests per tenant so one noisy tenant cannot
// starve the rest. CORS preflights pass through uncounted.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[uuid.UUID]*bucket
	rate    float64
	burst   float64
	now     func() time.Time
}

// NewRateLimiter allows rate requests/second with the given burst per tenant.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[uuid.UUID]*bucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// allow takes one token from the tenant's bucket if available.
func (l *RateLimiter) allow(tenantID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[tenantID]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[tenantID] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware enforces the limit for requests with a resolved tenant.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		t := tenant.FromContext(r.Context())
		if t != nil && !l.allow(t.TenantID) {
			w.Header().Set("Retry-After", "1")
			writeErrorCode(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}
