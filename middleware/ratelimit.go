package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-client token bucket
type RateLimiter struct {
	tokens         map[string]float64
	lastRefill     map[string]time.Time
	mu             sync.Mutex
	rate           float64 // tokens per second
	bucketSize     float64 // maximum tokens
	refillInterval time.Duration
	idleTimeout    time.Duration
	lastPrune      time.Time
	now            func() time.Time
}

func NewRateLimiter(rate float64, bucketSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:         make(map[string]float64),
		lastRefill:     make(map[string]time.Time),
		rate:           rate,
		bucketSize:     bucketSize,
		refillInterval: time.Second,
		idleTimeout:    10 * time.Minute,
		now:            time.Now,
	}
}

// Allow consumes a token for key, reporting whether the request may proceed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Initialize if first request
	if _, exists := rl.lastRefill[key]; !exists {
		rl.tokens[key] = rl.bucketSize
		rl.lastRefill[key] = now
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(rl.lastRefill[key])
	newTokens := float64(elapsed) / float64(rl.refillInterval) * rl.rate
	rl.tokens[key] = min(rl.bucketSize, rl.tokens[key]+newTokens)
	rl.lastRefill[key] = now

	// Drop idle clients now and then so the maps stay bounded
	if now.Sub(rl.lastPrune) > rl.idleTimeout {
		rl.prune(now)
	}

	// Check if we have enough tokens
	if rl.tokens[key] < 1 {
		return false
	}

	// Consume one token
	rl.tokens[key]--
	return true
}

// prune forgets clients that have been idle long enough to have a full bucket again
func (rl *RateLimiter) prune(now time.Time) {
	for key, last := range rl.lastRefill {
		if now.Sub(last) > rl.idleTimeout {
			delete(rl.lastRefill, key)
			delete(rl.tokens, key)
		}
	}
	rl.lastPrune = now
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
