package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter limits how often a key may act
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// TokenBucketLimiter is an in-process token bucket keyed by caller.
// Tokens accrue continuously at the configured per-minute rate, so
// bursts up to a full minute's budget are allowed after idle periods.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	perSec   float64
}

type bucket struct {
	tokens  float64
	updated time.Time
}

// NewTokenBucketLimiter creates a limiter allowing requestsPerMinute
// sustained requests per key.
func NewTokenBucketLimiter(requestsPerMinute int) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(requestsPerMinute),
		perSec:   float64(requestsPerMinute) / 60.0,
	}
	go l.evictStale(5 * time.Minute)
	return l
}

// Allow consumes one token for key, reporting whether any remained.
func (l *TokenBucketLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, updated: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.updated).Seconds() * l.perSec
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.updated = now

	if b.tokens < 1 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Reset restores key to a full bucket.
func (l *TokenBucketLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}

// evictStale drops buckets idle long enough to have refilled completely.
func (l *TokenBucketLimiter) evictStale(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-time.Hour)
		l.mu.Lock()
		for key, b := range l.buckets {
			if b.updated.Before(cutoff) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// IPRateLimiter limits requests per client address
type IPRateLimiter struct {
	limiter RateLimiter
}

func NewIPRateLimiter(requestsPerMinute int) *IPRateLimiter {
	return &IPRateLimiter{limiter: NewTokenBucketLimiter(requestsPerMinute)}
}

func (l *IPRateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	return l.limiter.Allow(ctx, "ip:"+ip)
}

// UserRateLimiter limits requests per authenticated user
type UserRateLimiter struct {
	limiter RateLimiter
}

func NewUserRateLimiter(requestsPerMinute int) *UserRateLimiter {
	return &UserRateLimiter{limiter: NewTokenBucketLimiter(requestsPerMinute)}
}

func (l *UserRateLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	return l.limiter.Allow(ctx, "user:"+userID)
}
