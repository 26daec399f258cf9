package ratelimit

import (
	"context"
	"sync"
	"time"

	"barfeed/internal/datafeed"
	"barfeed/internal/model"
)

// MinInterval wraps a datafeed and enforces a minimum time between history
// queries. Concurrent queries wait until the interval has elapsed since the
// last one, or give up when the context is canceled.
type MinInterval struct {
	D        datafeed.Datafeed
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Name() string { return m.D.Name() }

func (m *MinInterval) Init(ctx context.Context, username, password string) bool {
	return m.D.Init(ctx, username, password)
}

func (m *MinInterval) QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, false
			case <-t.C:
			}
		}
	}
	bars, ok := m.D.QueryHistory(ctx, req)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return bars, ok
}
