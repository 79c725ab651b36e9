package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"shareit/internal/config"
	"shareit/internal/identity"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused bucket is kept.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// rateLimiter keeps one token bucket per caller and drops idle ones.
type rateLimiter struct {
	limiters  sync.Map // map[string]*limiterEntry
	cfg       config.RateLimitConfig
	lastSweep atomic.Int64
	now       func() time.Time
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	l := &rateLimiter{
		cfg: cfg,
		now: time.Now,
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *rateLimiter) enabled() bool {
	return l.cfg.RPS > 0
}

func (l *rateLimiter) allow(r *http.Request) bool {
	if !l.enabled() {
		return true
	}
	now := l.now()
	l.maybeSweep(now)
	return l.getLimiter(clientKey(r), now).Allow()
}

func (l *rateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if e, ok := v.(*limiterEntry); ok {
			e.lastSeen.Store(now.UnixNano())
			return e.lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	e := &limiterEntry{lim: rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)}
	e.lastSeen.Store(now.UnixNano())
	actual, loaded := l.limiters.LoadOrStore(key, e)
	if loaded {
		if actualEntry, ok := actual.(*limiterEntry); ok {
			actualEntry.lastSeen.Store(now.UnixNano())
			return actualEntry.lim
		}
	}
	return e.lim
}

// maybeSweep evicts idle buckets at most once per limiterIdleTTL.
func (l *rateLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterIdleTTL) {
		return
	}
	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	l.limiters.Range(func(k, v any) bool {
		if e, ok := v.(*limiterEntry); !ok || e.lastSeen.Load() < cutoff {
			l.limiters.Delete(k)
		}
		return true
	})
}

func (l *rateLimiter) size() int {
	n := 0
	l.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// clientKey prefers the parsed sharer id and falls back to the remote address.
// Malformed ids share the address bucket; identify rejects them anyway.
func clientKey(r *http.Request) string {
	if user, ok, err := identity.Parse(r.Header); ok && err == nil {
		return "user:" + strconv.FormatInt(user.ID, 10)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "unknown"
}
