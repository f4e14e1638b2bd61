package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RateLimiter implements a simple in-memory fixed-window rate limiter keyed
// by client IP.
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration
	cleanup  time.Duration // cleanup interval
	reject   gin.HandlerFunc
	done     chan struct{}
	stopOnce sync.Once
}

type Visitor struct {
	windowStart time.Time
	lastSeen    time.Time
	count       int
}

// NewRateLimiter creates a limiter allowing rate requests per minute.
func NewRateLimiter(rate int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     rate,
		window:   time.Minute,
		cleanup:  time.Minute,
		reject: func(c *gin.Context) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded", nil)
		},
		done: make(chan struct{}),
	}

	go rl.cleanupVisitors()

	return rl
}

// WithRejectHandler replaces the response written when a client is over
// its budget.
func (rl *RateLimiter) WithRejectHandler(reject gin.HandlerFunc) *RateLimiter {
	rl.reject = reject
	return rl
}

// RateLimit middleware function
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "60")
			rl.reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Allow records a request from key at now and reports whether it fits the
// budget of the current window.
func (rl *RateLimiter) Allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists || now.Sub(v.windowStart) >= rl.window {
		rl.visitors[key] = &Visitor{windowStart: now, lastSeen: now, count: 1}
		return true
	}

	v.lastSeen = now
	if v.count >= rl.rate {
		return false
	}
	v.count++
	return true
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanupVisitors removes old visitor entries
func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if now.Sub(v.lastSeen) > 5*rl.window {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Security middleware
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

const RequestIDKey = "request_id"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header("X-Request-ID", requestID)
		c.Set(RequestIDKey, requestID)
		c.Next()
	}
}
