package infrastructure

import (
	"sync"
	"time"
)

// NotifyLimiter implements token bucket rate limiting per phone number, used to
// keep repeated inbound messages from the same unknown contact from flooding
// the staff alert channel.
type NotifyLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*phoneBucket
	rate        float64 // tokens per second
	maxTokens   float64 // burst capacity
	cleanupTick time.Duration
}

type phoneBucket struct {
	tokens     float64
	lastUpdate time.Time
}

func NewNotifyLimiter(rate float64, burst int) *NotifyLimiter {
	nl := &NotifyLimiter{
		buckets:     make(map[string]*phoneBucket),
		rate:        rate,
		maxTokens:   float64(burst),
		cleanupTick: 5 * time.Minute,
	}

	go nl.cleanup()

	return nl
}

// Allow checks if an alert for this phone may be sent (consumes 1 token if so).
func (nl *NotifyLimiter) Allow(phone string) bool {
	nl.mu.Lock()
	defer nl.mu.Unlock()

	bucket, exists := nl.buckets[phone]
	now := time.Now()

	if !exists {
		nl.buckets[phone] = &phoneBucket{
			tokens:     nl.maxTokens - 1,
			lastUpdate: now,
		}
		return true
	}

	// Refill tokens based on time elapsed
	elapsed := now.Sub(bucket.lastUpdate).Seconds()
	bucket.tokens += elapsed * nl.rate
	if bucket.tokens > nl.maxTokens {
		bucket.tokens = nl.maxTokens
	}
	bucket.lastUpdate = now

	if bucket.tokens >= 1 {
		bucket.tokens -= 1
		return true
	}

	return false
}

// cleanup removes stale buckets periodically
func (nl *NotifyLimiter) cleanup() {
	ticker := time.NewTicker(nl.cleanupTick)
	for range ticker.C {
		nl.mu.Lock()
		now := time.Now()
		for phone, bucket := range nl.buckets {
			if now.Sub(bucket.lastUpdate) > 10*time.Minute {
				delete(nl.buckets, phone)
			}
		}
		nl.mu.Unlock()
	}
}
