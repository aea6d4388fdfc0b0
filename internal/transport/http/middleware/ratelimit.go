package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"inkwell/internal/httputil"
)

type ipLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimit applies a per-IP token bucket. Idle limiters are evicted after
// five minutes so the map does not grow with client churn.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute < 1 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	var (
		mu       sync.Mutex
		limiters = map[string]*ipLimiter{}
	)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		for key, l := range limiters {
			if now.After(l.expires) {
				delete(limiters, key)
			}
		}

		l, ok := limiters[ip]
		if !ok {
			l = &ipLimiter{limiter: rate.NewLimiter(limit, burst)}
			limiters[ip] = l
		}
		l.expires = now.Add(5 * time.Minute)
		return l.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !get(clientIP(r)).Allow() {
				httputil.WriteTooManyRequests(w, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
