package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "raffle/pkg/domain"
	"raffle/pkg/requestcontext"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type SlidingWindowSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *SlidingWindow
}

func TestSlidingWindowSuite(t *testing.T) {
	suite.Run(t, new(SlidingWindowSuite))
}

func (s *SlidingWindowSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewSlidingWindow(WithClock(func() time.Time { return s.now }))
}

func (s *SlidingWindowSuite) TestAllowUpToLimit() {
	for i := range testLimit {
		result, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-i-1, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(60, result.RetryAfter)
}

func (s *SlidingWindowSuite) TestWindowSlides() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
		s.Require().NoError(err)
	}

	s.now = s.now.Add(testWindow + time.Millisecond)
	result, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(testLimit-1, result.Remaining)
}

func (s *SlidingWindowSuite) TestKeysAreIndependent() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "a", testLimit, testWindow)
		s.Require().NoError(err)
	}
	result, err := s.store.Allow(s.ctx, "b", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *SlidingWindowSuite) TestReset() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(s.ctx, "k"))

	result, err := s.store.Allow(s.ctx, "k", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *SlidingWindowSuite) TestConcurrentNeverExceedsLimit() {
	const limit = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, "k", limit, testWindow)
			if err == nil && result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(limit, allowed)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("limiter down")
}

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	caller := id.Identity{0xa1}

	post := func(ctx context.Context) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/v1/raffles/1/entries", nil).WithContext(ctx)
	}

	t.Run("limits per caller", func(t *testing.T) {
		h := New(NewSlidingWindow(), 1, time.Minute, logger).Handler(ok)
		ctx := requestcontext.WithCaller(context.Background(), caller)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, post(ctx))
		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, post(ctx))
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Contains(t, rr.Body.String(), "rate_limit_exceeded")

		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, post(requestcontext.WithClientIP(context.Background(), "10.0.0.1")))
		assert.Equal(t, http.StatusNoContent, rr.Code, "unsigned requests are keyed by IP")
	})

	t.Run("reads are not limited", func(t *testing.T) {
		h := New(NewSlidingWindow(), 1, time.Minute, logger).Handler(ok)
		for range 3 {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/raffles", nil))
			assert.Equal(t, http.StatusNoContent, rr.Code)
		}
	})

	t.Run("zero limit disables", func(t *testing.T) {
		h := New(NewSlidingWindow(), 0, time.Minute, logger).Handler(ok)
		for range 3 {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, post(context.Background()))
			assert.Equal(t, http.StatusNoContent, rr.Code)
		}
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		h := New(failingLimiter{}, 1, time.Minute, logger).Handler(ok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, post(context.Background()))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
