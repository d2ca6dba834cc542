package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter is a fixed-window request counter keyed by client. It is
// process-local: each instance keeps its own counters.
type Limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window

	// now is overridable so tests control time.
	now func() time.Time
}

type window struct {
	start time.Time
	count int
}

// New creates a limiter allowing max requests per key per window.
func New(max int, windowSize time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  windowSize,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow reports whether the request identified by key may proceed. The first
// request after the window rolls over resets the counter.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists || now.Sub(w.start) >= l.window {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}

	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func Middleware(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c)
		if !l.Allow(ip) {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

// ClientIP resolves the caller's IP from proxy headers, falling back to the
// remote address, then to "unknown".
func ClientIP(c *gin.Context) string {
	// X-Forwarded-For may contain a comma-separated list of IPs. Use the first one.
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 && strings.TrimSpace(ips[0]) != "" {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := c.Request.RemoteAddr
	// RemoteAddr might be in "ip:port" format; strip the port if present.
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	if ip == "" {
		return "unknown"
	}
	return ip
}
