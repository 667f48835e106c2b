package middleware

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"member-directory-backend/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout   = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	visitors sync.Map
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter allowing r requests per second with
// the given burst
func NewRateLimiter(r float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:  rate.Limit(r),
		burst: burst,
		now:   time.Now,
	}
}

func (rl *RateLimiter) getVisitor(ip string) *visitor {
	if v, ok := rl.visitors.Load(ip); ok {
		return v.(*visitor)
	}

	v, _ := rl.visitors.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	return v.(*visitor)
}

// Allow reports whether a request from ip may proceed
func (rl *RateLimiter) Allow(ip string) bool {
	v := rl.getVisitor(ip)
	v.lastSeen.Store(rl.now().UnixNano())
	return v.limiter.Allow()
}

// EvictIdle forgets clients not seen for longer than idle and returns how
// many were removed
func (rl *RateLimiter) EvictIdle(idle time.Duration) int {
	cutoff := rl.now().Add(-idle).UnixNano()
	removed := 0
	rl.visitors.Range(func(key, value any) bool {
		if value.(*visitor).lastSeen.Load() < cutoff {
			rl.visitors.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func (rl *RateLimiter) cleanupIdle(interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if removed := rl.EvictIdle(idle); removed > 0 {
			log.Debug().Int("removed", removed).Msg("Evicted idle rate limiters")
		}
	}
}

// RateLimitMiddleware rejects clients exceeding the configured rate with 429
func RateLimitMiddleware(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := NewRateLimiter(cfg.Rate, cfg.Burst)
	go limiter.cleanupIdle(limiterSweepInterval, limiterIdleTimeout)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				log.Warn().Str("client_ip", ip).Msg("Rate limit exceeded")
				respondError(w, "Too many requests, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which chi's RealIP has already
// rewritten when a proxy header is present
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
