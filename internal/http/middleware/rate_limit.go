package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msaimsawaid/music/internal/utils"
)

// RateLimiter enforces a per-IP request budget over a sliding window. The
// current and previous window counts are weighted by how far the window
// has slid, so a burst straddling the boundary cannot double the budget.
type RateLimiter struct {
	limit  int
	window time.Duration
	mu     sync.Mutex
	items  map[string]*windowEntry
}

type windowEntry struct {
	windowStart time.Time
	prevCount   int
	currCount   int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*windowEntry),
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.items[ip]
	if !ok {
		entry = &windowEntry{windowStart: now}
		rl.items[ip] = entry
	}

	elapsed := now.Sub(entry.windowStart)
	switch {
	case elapsed >= 2*rl.window:
		entry.windowStart = now
		entry.prevCount = 0
		entry.currCount = 0
		elapsed = 0
	case elapsed >= rl.window:
		entry.windowStart = entry.windowStart.Add(rl.window)
		entry.prevCount = entry.currCount
		entry.currCount = 0
		elapsed -= rl.window
	}

	prevWeight := 1 - float64(elapsed)/float64(rl.window)
	estimate := float64(entry.prevCount)*prevWeight + float64(entry.currCount)

	if estimate >= float64(rl.limit) {
		return false, rl.window - elapsed
	}

	entry.currCount++
	return true, 0
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			utils.RespondError(c, utils.NewAppError(http.StatusTooManyRequests, "Too many requests from this IP, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
