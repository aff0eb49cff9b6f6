package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RateLimiter enforces a sliding-window request cap per client key.
type RateLimiter struct {
	requests int
	window   time.Duration
	clients  map[string]*clientWindow
	mu       sync.Mutex
}

type clientWindow struct {
	timestamps []time.Time
}

func NewRateLimiter(requests int, windowSeconds int) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	rl := &RateLimiter{
		requests: requests,
		window:   time.Duration(windowSeconds) * time.Second,
		clients:  make(map[string]*clientWindow),
	}

	go rl.cleanup()

	return rl
}

// cleanup drops clients with no activity inside two windows.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, client := range rl.clients {
			if len(client.timestamps) == 0 || now.Sub(client.timestamps[len(client.timestamps)-1]) > rl.window*2 {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether a request under key fits in the window, along with
// the remaining quota and the reset time.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		client = &clientWindow{timestamps: make([]time.Time, 0, rl.requests)}
		rl.clients[key] = client
	}

	now := time.Now()
	windowStart := now.Add(-rl.window)

	kept := client.timestamps[:0]
	for _, ts := range client.timestamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	client.timestamps = kept

	if len(client.timestamps) >= rl.requests {
		resetTime := client.timestamps[0].Add(rl.window)
		return false, 0, resetTime
	}

	client.timestamps = append(client.timestamps, now)
	remaining := rl.requests - len(client.timestamps)
	return true, remaining, now.Add(rl.window)
}

// RateLimit applies per-IP rate limiting.
func RateLimit(requests int, windowSeconds int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, windowSeconds)
	return limitWith(limiter, func(r *http.Request) string {
		return getClientIP(r)
	})
}

// RateLimitByUser keys on the authenticated user when present, falling
// back to the client IP. Used on the download-grant route so one outlet
// cannot exhaust the signer.
func RateLimitByUser(requests int, windowSeconds int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, windowSeconds)
	return limitWith(limiter, func(r *http.Request) string {
		if userID := GetUserID(r.Context()); userID != uuid.Nil {
			return "user:" + userID.String()
		}
		return getClientIP(r)
	})
}

func limitWith(limiter *RateLimiter, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetTime := limiter.Allow(keyFn(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetTime).Seconds())+1, 10))
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
