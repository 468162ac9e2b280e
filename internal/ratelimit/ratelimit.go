// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit provides a per-key fixed window limiter and its HTTP
// middleware.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// sweepThreshold is the number of tracked keys above which expired windows
// are dropped.
const sweepThreshold = 4096

// Limiter allows up to limit calls per key in each window. The window for
// a key starts with its first call.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

// New creates a limiter allowing limit calls per window.
func New(limit int, d time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if d <= 0 {
		d = time.Second
	}
	return &Limiter{
		limit:   limit,
		window:  d,
		windows: make(map[string]*window),
	}
}

// Allow reports whether a call for key is permitted now. When it is not,
// the returned duration is the time until the current window ends.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	return l.allowAt(key, time.Now())
}

func (l *Limiter) allowAt(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		if !ok && len(l.windows) >= sweepThreshold {
			l.sweep(now)
		}
		l.windows[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < l.limit {
		w.count++
		return true, 0
	}
	return false, w.start.Add(l.window).Sub(now)
}

func (l *Limiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, k)
		}
	}
}

// Reset forgets every key.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
}

// Middleware limits requests per client IP and answers 429 with a
// Retry-After header once the window is exhausted.
func (l *Limiter) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			allowed, retryAfter := l.Allow(key)
			if !allowed {
				logger.Warn("rate limit exceeded", "client", key, "path", r.URL.Path, "retry_after", retryAfter)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
