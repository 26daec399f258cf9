package ratelimit

import (
	"context"
	"sync"
	"time"

	"barfeed/internal/datafeed"
	"barfeed/internal/model"
)

// TokenBucket is a token bucket limiter.
//   - rate: tokens per second
//   - capacity: maximum tokens the bucket can hold (burst)
type TokenBucket struct {
	rate     float64
	capacity float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func NewTokenBucket(tokensPerSecond float64, burst int) *TokenBucket {
	if tokensPerSecond <= 0 {
		tokensPerSecond = 0.0000001
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:     tokensPerSecond,
		capacity: float64(burst),
		tokens:   float64(burst), // start full
		last:     time.Now(),
	}
}

// PerMinute builds a bucket refilling rpm tokens per minute.
func PerMinute(rpm, burst int) *TokenBucket {
	return NewTokenBucket(float64(rpm)/60, burst)
}

// Wait blocks until one token is available or ctx is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
			tb.tokens += elapsed * tb.rate
			if tb.tokens > tb.capacity {
				tb.tokens = tb.capacity
			}
			tb.last = now
		}
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		deficit := 1 - tb.tokens
		tb.mu.Unlock()

		waitDur := time.Duration(deficit / tb.rate * float64(time.Second))
		if waitDur <= 0 {
			waitDur = time.Millisecond
		}
		timer := time.NewTimer(waitDur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TokenBucketDatafeed gates history queries with a token bucket. Init is not
// throttled.
type TokenBucketDatafeed struct {
	D  datafeed.Datafeed
	TB *TokenBucket
}

func (t *TokenBucketDatafeed) Name() string { return t.D.Name() }

func (t *TokenBucketDatafeed) Init(ctx context.Context, username, password string) bool {
	return t.D.Init(ctx, username, password)
}

func (t *TokenBucketDatafeed) QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	if t.TB != nil {
		if err := t.TB.Wait(ctx); err != nil {
			return nil, false
		}
	}
	return t.D.QueryHistory(ctx, req)
}
