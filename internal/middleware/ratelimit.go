package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"social-scheduler/pkg/apierror"
)

const (
	defaultGeneralRPM  = 100
	defaultFunctionRPM = 20
	limiterIdleTTL     = 10 * time.Minute
	limiterSweepAt     = 1000
)

type scope uint8

const (
	scopeGeneral scope = iota
	scopeFunctions
)

type bucketKey struct {
	scope  scope
	client string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps a token bucket per client and scope. The function
// endpoints get their own, stricter scope since they hit paid upstreams.
// A negative RPM disables a scope.
type RateLimitMiddleware struct {
	generalRPM  int
	functionRPM int
	now         func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*bucket
}

func NewRateLimitMiddleware(generalRPM int, functionRPM int) *RateLimitMiddleware {
	if generalRPM == 0 {
		generalRPM = defaultGeneralRPM
	}
	if functionRPM == 0 {
		functionRPM = defaultFunctionRPM
	}

	return &RateLimitMiddleware{
		generalRPM:  generalRPM,
		functionRPM: functionRPM,
		now:         time.Now,
		buckets:     map[bucketKey]*bucket{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || strings.EqualFold(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}

		s, rpm := scopeGeneral, m.generalRPM
		if isFunctionPath(r) {
			s, rpm = scopeFunctions, m.functionRPM
		}
		if rpm < 0 {
			next.ServeHTTP(w, r)
			return
		}

		if wait, ok := m.take(bucketKey{scope: s, client: clientIP(r)}, rpm); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeFailure(w, r, http.StatusTooManyRequests, apierror.CodeRateLimited, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// take spends one token. When none is left it reports how long until one is.
func (m *RateLimitMiddleware) take(key bucketKey, rpm int) (time.Duration, bool) {
	now := m.now()

	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)}
		m.buckets[key] = b
		if len(m.buckets) >= limiterSweepAt {
			m.sweepLocked(now)
		}
	}
	b.lastSeen = now
	m.mu.Unlock()

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return time.Minute, false
	}
	if wait := reservation.DelayFrom(now); wait > 0 {
		reservation.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (m *RateLimitMiddleware) sweepLocked(now time.Time) {
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(m.buckets, key)
		}
	}
}

// clientIP prefers the first proxy-forwarded address over the socket peer.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote == "" {
		return "unknown"
	}
	return remote
}
