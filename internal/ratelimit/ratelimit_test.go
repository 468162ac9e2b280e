// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_TwoPerSecond(t *testing.T) {
	l := New(2, 1000*time.Millisecond)
	now := time.Now()

	allowed, _ := l.allowAt("k", now)
	assert.True(t, allowed)
	allowed, _ = l.allowAt("k", now.Add(100*time.Millisecond))
	assert.True(t, allowed)

	allowed, retryAfter := l.allowAt("k", now.Add(200*time.Millisecond))
	assert.False(t, allowed)
	assert.Equal(t, 800*time.Millisecond, retryAfter)

	allowed, _ = l.allowAt("k", now.Add(999*time.Millisecond))
	assert.False(t, allowed)

	allowed, retryAfter = l.allowAt("k", now.Add(1000*time.Millisecond))
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
}

func TestLimiter_IndependentKeys(t *testing.T) {
	l := New(1, time.Minute)
	now := time.Now()

	allowed, _ := l.allowAt("a", now)
	assert.True(t, allowed)
	allowed, _ = l.allowAt("b", now)
	assert.True(t, allowed)
	allowed, _ = l.allowAt("a", now)
	assert.False(t, allowed)
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	allowed, _ := l.Allow("a")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a")
	assert.False(t, allowed)

	l.Reset()
	allowed, _ = l.Allow("a")
	assert.True(t, allowed)
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(1, time.Second)
	now := time.Now()
	for i := 0; i < sweepThreshold; i++ {
		l.allowAt(string(rune(i)), now)
	}
	l.allowAt("fresh", now.Add(2*time.Second))
	assert.Len(t, l.windows, 1)
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(10, time.Minute)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestMiddleware(t *testing.T) {
	l := New(2, time.Minute)
	handler := l.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/functions/v1/contact-form", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222").Code)

	rec := call("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"error"`)

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}
