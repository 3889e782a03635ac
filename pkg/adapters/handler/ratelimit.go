package handler

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type RateLimitConfig struct {
	Burst     int // bucket size
	PerMinute int // refill rate
	MaxKeys   int // buckets kept before full ones are evicted; 0 is unbounded
}

type bucket struct {
	tokens float64
	at     time.Time
}

// limiter is a token bucket per caller key.
type limiter struct {
	mu      sync.Mutex
	burst   float64
	perSec  float64
	maxKeys int
	buckets map[string]bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		burst:   float64(max(cfg.Burst, 1)),
		perSec:  float64(max(cfg.PerMinute, 1)) / 60,
		maxKeys: cfg.MaxKeys,
		buckets: make(map[string]bucket),
	}
}

// take spends a token for key. When none is left it reports how long until
// the next one.
func (l *limiter) take(key string, now time.Time) (remaining int, wait time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, found := l.buckets[key]
	if found {
		b = l.refill(b, now)
	} else {
		if l.maxKeys > 0 && len(l.buckets) >= l.maxKeys {
			l.evictFull(now)
		}
		b = bucket{tokens: l.burst, at: now}
	}

	if b.tokens < 1 {
		l.buckets[key] = b
		return 0, time.Duration((1 - b.tokens) / l.perSec * float64(time.Second)), false
	}
	b.tokens--
	l.buckets[key] = b
	return int(b.tokens), 0, true
}

func (l *limiter) refill(b bucket, now time.Time) bucket {
	if elapsed := now.Sub(b.at); elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+elapsed.Seconds()*l.perSec)
		b.at = now
	}
	return b
}

// evictFull drops buckets that have refilled completely. A full bucket
// behaves exactly like a missing one, so callers still spending are kept.
func (l *limiter) evictFull(now time.Time) {
	for key, b := range l.buckets {
		if l.refill(b, now).tokens >= l.burst {
			delete(l.buckets, key)
		}
	}
}

// callerKey limits signed-in callers by user id and everyone else by
// address. RealIP has already rewritten RemoteAddr.
func callerKey(r *http.Request) string {
	if id := IdentityFrom(r.Context()); id != nil && id.UserID != "" {
		return "user:" + id.UserID
	}
	return "ip:" + r.RemoteAddr
}

// RateLimit rejects callers that exhaust their bucket with 429.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(int(l.burst))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, wait, ok := l.take(callerKey(r), time.Now())
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter(wait)))
				writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter rounds up to whole seconds, never below one.
func retryAfter(wait time.Duration) int {
	return max(int(math.Ceil(wait.Seconds())), 1)
}
