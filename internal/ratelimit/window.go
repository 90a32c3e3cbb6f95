// Package ratelimit throttles callers of the raffle API with a per-key
// sliding window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of a single limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until the oldest counted request leaves the window.
	RetryAfter int
}

// SlidingWindow implements Limiter in memory. It is per process; replicas
// each enforce their own window.
type SlidingWindow struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time
}

type WindowOption func(*SlidingWindow)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) WindowOption {
	return func(s *SlidingWindow) {
		s.now = now
	}
}

func NewSlidingWindow(opts ...WindowOption) *SlidingWindow {
	s := &SlidingWindow{
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow records a request for key if fewer than limit requests fell inside
// the trailing window.
func (s *SlidingWindow) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stamps := prune(s.buckets[key], now.Add(-window))

	if len(stamps) >= limit {
		s.buckets[key] = stamps
		resetAt := now.Add(window)
		if len(stamps) > 0 {
			resetAt = stamps[0].Add(window)
		}
		return &Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(resetAt.Sub(now)),
		}, nil
	}

	stamps = append(stamps, now)
	s.buckets[key] = stamps
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(stamps),
		ResetAt:   stamps[0].Add(window),
	}, nil
}

// Reset forgets every request recorded for key.
func (s *SlidingWindow) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// prune drops timestamps at or before cutoff. Timestamps are in insertion order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}

func retryAfter(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
