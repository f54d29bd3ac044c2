package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSubmitGrievance = "submit_grievance"
	ActionAdminInsights   = "admin_insights"
)

// Policy is a token bucket shape: Burst actions at once, refilled evenly to
// PerHour actions per hour.
type Policy struct {
	PerHour int
	Burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one bucket per user and action.
type RateLimiter struct {
	policies map[string]Policy
	fallback Policy
	buckets  map[string]*bucket
	mutex    sync.Mutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		policies: make(map[string]Policy),
		fallback: Policy{PerHour: 1200, Burst: 20},
		buckets:  make(map[string]*bucket),
	}
}

// SetPolicy configures an action. Existing buckets keep their old shape
// until they are cleaned up.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	if p.Burst <= 0 {
		p.Burst = p.PerHour
	}
	rl.mutex.Lock()
	rl.policies[action] = p
	rl.mutex.Unlock()
}

// Allow consumes a token when one is available. Otherwise it reports how
// long until the next one.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	limiter := rl.limiter(userID, action)

	r := limiter.Reserve()
	if !r.OK() {
		return false, time.Hour
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) limiter(userID, action string) *rate.Limiter {
	key := userID + ":" + action

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		p, found := rl.policies[action]
		if !found {
			p = rl.fallback
		}
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(p.PerHour)/3600), p.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(2 * time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
