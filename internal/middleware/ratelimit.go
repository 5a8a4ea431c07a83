package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/emilythestrangee/media-ranker/backend/internal/respond"
)

const (
	msgTooManyRequests = "Too many requests"

	defaultIdleTTL = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client. Signed-in users are
// keyed by id, everyone else by IP. Buckets idle for longer than the idle TTL
// are dropped.
type ClientRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewClientRateLimiter(limit rate.Limit, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		idle:     defaultIdleTTL,
		now:      time.Now,
	}
}

func (l *ClientRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *ClientRateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func clientKey(c *gin.Context) string {
	if viewer := ViewerFrom(c); viewer != nil {
		return "user:" + strconv.Itoa(viewer.ID)
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects requests beyond the client's allowance with 429.
func RateLimit(l *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(clientKey(c)) {
			respond.Fail(c, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitRedirect sends requests beyond the client's allowance to the path
// target returns, with a failure flash.
func RateLimitRedirect(l *ClientRateLimiter, target func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(clientKey(c)) {
			respond.Redirect(c, target(c), respond.Failure(msgTooManyRequests, nil))
			return
		}
		c.Next()
	}
}
