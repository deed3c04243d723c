package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter counts requests per client in fixed windows
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, w time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		rate:    rate,
		window:  w,
		now:     time.Now,
	}
}

// Allow records a request for key. When the window is exhausted it returns
// false and the time left until it resets.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.prune(now)
		l.clients[key] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count >= l.rate {
		return false, l.window - now.Sub(w.start)
	}
	w.count++
	return true, 0
}

// prune drops expired windows. Must be called with lock held.
func (l *RateLimiter) prune(now time.Time) {
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.window {
			delete(l.clients, key)
		}
	}
}

// RateLimit middleware limits requests per IP
func RateLimit(rate int, per time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, per)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if ok, retryAfter := limiter.Allow(clientIP); !ok {
			slog.Warn("rate limit exceeded",
				"client_ip", clientIP,
				"request_id", GetRequestID(c),
			)

			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
