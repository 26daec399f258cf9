package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"barfeed/internal/datafeed"
	"barfeed/internal/model"
)

// Datafeed caches successful history queries for a TTL. Rejected queries are
// not cached. Concurrent identical queries share one upstream call.
type Datafeed struct {
	D datafeed.Datafeed

	items *gocache.Cache
	group singleflight.Group
}

// New wraps d. A non-positive ttl disables caching.
func New(d datafeed.Datafeed, ttl, cleanup time.Duration) *Datafeed {
	c := &Datafeed{D: d}
	if ttl > 0 {
		c.items = gocache.New(ttl, cleanup)
	}
	return c
}

func (c *Datafeed) Name() string { return c.D.Name() }

func (c *Datafeed) Init(ctx context.Context, username, password string) bool {
	return c.D.Init(ctx, username, password)
}

type result struct {
	bars []model.Bar
	ok   bool
}

func (c *Datafeed) QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	if c.items == nil {
		return c.D.QueryHistory(ctx, req)
	}

	key := cacheKey(req)
	if v, found := c.items.Get(key); found {
		return clone(v.([]model.Bar)), true
	}

	// The shared call ignores caller cancellation. Each caller stops waiting
	// when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, found := c.items.Get(key); found {
			return result{bars: v.([]model.Bar), ok: true}, nil
		}
		bars, ok := c.D.QueryHistory(shared, req)
		if ok {
			c.items.SetDefault(key, bars)
		}
		return result{bars: bars, ok: ok}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false
	case res := <-ch:
		r := res.Val.(result)
		if !r.ok {
			return nil, false
		}
		return clone(r.bars), true
	}
}

// ItemCount returns the number of cached queries, expired ones included.
func (c *Datafeed) ItemCount() int {
	if c.items == nil {
		return 0
	}
	return c.items.ItemCount()
}

func cacheKey(req model.HistoryRequest) string {
	return fmt.Sprintf("%s|%s|%d|%d", req.VtSymbol(), req.Interval, req.Start.UnixNano(), req.End.UnixNano())
}

// clone keeps callers from mutating cached bars. An empty result stays
// non-nil.
func clone(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, len(bars))
	copy(out, bars)
	return out
}
