package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Too many requests. Try again later."

var ErrTooManyAttempts = errors.New("Too many failed login attempts. Try again later.")

// LoginLimiter locks out an IP+username pair after repeated failed logins.
// Failures are counted in a fixed window that starts at the first failure.
type LoginLimiter struct {
	mu              sync.Mutex
	attempts        map[string]*attemptRecord
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LoginLimitConfig contains configuration for the login limiter.
type LoginLimitConfig struct {
	MaxAttempts     int           // Failures before lockout (default: 5)
	WindowDuration  time.Duration // Window for counting failures (default: 15m)
	LockoutDuration time.Duration // Lockout after MaxAttempts (default: 15m)
}

func NewLoginLimiter(cfg LoginLimitConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}

	return &LoginLimiter{
		attempts:        make(map[string]*attemptRecord),
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}

func loginKey(ip, username string) string {
	return ip + ":" + username
}

// Allow reports whether a login attempt may proceed. When it may not,
// retryAfter says how long the lockout still lasts.
func (l *LoginLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[loginKey(ip, username)]
	if !ok {
		return true, 0
	}
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed login and reports whether it triggered a lockout.
func (l *LoginLimiter) RecordFailure(ip, username string) bool {
	key := loginKey(ip, username)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[key]
	if !ok || now.Sub(record.firstAttempt) > l.windowDuration {
		record = &attemptRecord{firstAttempt: now}
		l.attempts[key] = record
	}

	record.count++
	if record.count >= l.maxAttempts {
		record.lockedUntil = now.Add(l.lockoutDuration)
		return true
	}
	return false
}

// RecordSuccess clears the failure record after a successful login.
func (l *LoginLimiter) RecordSuccess(ip, username string) {
	l.mu.Lock()
	delete(l.attempts, loginKey(ip, username))
	l.mu.Unlock()
}

// Cleanup drops records whose window and lockout have both passed.
func (l *LoginLimiter) Cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, record := range l.attempts {
		if now.Sub(record.firstAttempt) > l.windowDuration && !now.Before(record.lockedUntil) {
			delete(l.attempts, key)
		}
	}
}

// RequestLimiter throttles requests per client IP with a token bucket.
type RequestLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRequestLimiter allows requestsPerSecond per IP with the given burst.
func NewRequestLimiter(requestsPerSecond float64, burst int) *RequestLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RequestLimiter{
		limiters: make(map[string]*visitor),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

func (rl *RequestLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Middleware rejects requests over the limit with 429.
func (rl *RequestLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msgTooManyRequests})
			return
		}
		c.Next()
	}
}

// Cleanup forgets clients idle for longer than the idle TTL.
func (rl *RequestLimiter) Cleanup() {
	cutoff := time.Now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.limiters {
		if v.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// RetryAfterSeconds formats d for a Retry-After header, rounding up.
func RetryAfterSeconds(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// Cleaner is implemented by both limiters.
type Cleaner interface {
	Cleanup()
}

// RunCleanup calls Cleanup on every cleaner each interval until ctx is done.
func RunCleanup(ctx context.Context, interval time.Duration, cleaners ...Cleaner) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range cleaners {
				c.Cleanup()
			}
		case <-ctx.Done():
			return
		}
	}
}
