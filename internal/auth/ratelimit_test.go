package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestLoginLimiter(now *time.Time) *LoginLimiter {
	l := NewLoginLimiter(LoginLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: 10 * time.Minute,
	})
	l.now = func() time.Time { return *now }
	return l
}

func TestLoginLimiter_LocksAfterMaxFailures(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLoginLimiter(&now)

	assert.False(t, l.RecordFailure("1.2.3.4", "ada"))
	assert.False(t, l.RecordFailure("1.2.3.4", "ada"))
	allowed, _ := l.Allow("1.2.3.4", "ada")
	assert.True(t, allowed)

	assert.True(t, l.RecordFailure("1.2.3.4", "ada"))
	allowed, retryAfter := l.Allow("1.2.3.4", "ada")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retryAfter)

	// Other usernames and addresses are unaffected
	allowed, _ = l.Allow("1.2.3.4", "bob")
	assert.True(t, allowed)
	allowed, _ = l.Allow("5.6.7.8", "ada")
	assert.True(t, allowed)

	now = now.Add(11 * time.Minute)
	allowed, _ = l.Allow("1.2.3.4", "ada")
	assert.True(t, allowed)
}

func TestLoginLimiter_WindowResets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLoginLimiter(&now)

	l.RecordFailure("ip", "ada")
	l.RecordFailure("ip", "ada")
	now = now.Add(2 * time.Minute)

	assert.False(t, l.RecordFailure("ip", "ada"))
}

func TestLoginLimiter_SuccessClears(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLoginLimiter(&now)

	l.RecordFailure("ip", "ada")
	l.RecordFailure("ip", "ada")
	l.RecordSuccess("ip", "ada")

	assert.False(t, l.RecordFailure("ip", "ada"))
	assert.False(t, l.RecordFailure("ip", "ada"))
}

func TestLoginLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLoginLimiter(&now)

	l.RecordFailure("ip", "old")
	for i := 0; i < 3; i++ {
		l.RecordFailure("ip", "locked")
	}

	now = now.Add(5 * time.Minute)
	l.Cleanup()

	assert.NotContains(t, l.attempts, loginKey("ip", "old"))
	assert.Contains(t, l.attempts, loginKey("ip", "locked"))
}

func TestRequestLimiter_Middleware(t *testing.T) {
	rl := NewRequestLimiter(0.001, 2)
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001").Code)

	w := send("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests. Try again later."}`, w.Body.String())

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
}

func TestRequestLimiter_Cleanup(t *testing.T) {
	rl := NewRequestLimiter(1, 1)
	rl.getLimiter("stale")
	rl.limiters["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.getLimiter("fresh")

	rl.Cleanup()

	assert.NotContains(t, rl.limiters, "stale")
	assert.Contains(t, rl.limiters, "fresh")
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", RetryAfterSeconds(0))
	assert.Equal(t, "1", RetryAfterSeconds(300*time.Millisecond))
	assert.Equal(t, "2", RetryAfterSeconds(1500*time.Millisecond))
	assert.Equal(t, "900", RetryAfterSeconds(15*time.Minute))
}

type countingCleaner struct {
	calls atomic.Int32
}

func (c *countingCleaner) Cleanup() {
	c.calls.Add(1)
}

func TestRunCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cleaner := &countingCleaner{}

	done := make(chan struct{})
	go func() {
		RunCleanup(ctx, 5*time.Millisecond, cleaner)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup did not stop after cancel")
	}
}
