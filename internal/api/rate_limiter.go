package api

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements token bucket rate limiting
type RateLimiter struct {
	tokens         int
	maxTokens      int
	refillRate     time.Duration
	lastRefillTime time.Time
	mu             sync.Mutex
}

// NewRateLimiter creates a limiter holding maxTokens that adds one token
// every refillRate (350ms is roughly three requests per second).
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return &RateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if rl.tryAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.refillRate > 0 {
		now := time.Now()
		if add := int(now.Sub(rl.lastRefillTime) / rl.refillRate); add > 0 {
			rl.tokens += add
			if rl.tokens > rl.maxTokens {
				rl.tokens = rl.maxTokens
			}
			rl.lastRefillTime = rl.lastRefillTime.Add(time.Duration(add) * rl.refillRate)
		}
	} else {
		rl.tokens = rl.maxTokens
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}
