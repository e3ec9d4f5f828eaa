// internal/middleware/rate_limit.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/ipr-backend/internal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller: the user id when authenticated, otherwise
// the client ip.
type RateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}
}

// Run evicts idle visitors every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(3 * time.Minute)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()
	for key, v := range rl.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			key = "user:" + userID
		}

		if !rl.getVisitor(key).Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, utils.CodeRateLimited, "Rate limit exceeded. Please try again later.", nil)
			return
		}

		c.Next()
	}
}

// Limiters are the per-route-group buckets.
type Limiters struct {
	General *RateLimiter
	Auth    *RateLimiter
	Upload  *RateLimiter
}

func DefaultLimiters() Limiters {
	return Limiters{
		General: NewRateLimiter(rate.Every(100*time.Millisecond), 20), // 10 requests per second
		Auth:    NewRateLimiter(rate.Every(12*time.Second), 5),        // 5 auth requests per minute
		Upload:  NewRateLimiter(rate.Every(6*time.Second), 10),        // 10 uploads per minute
	}
}

func (l Limiters) Run(ctx context.Context) {
	for _, rl := range []*RateLimiter{l.General, l.Auth, l.Upload} {
		go rl.Run(ctx)
	}
}
