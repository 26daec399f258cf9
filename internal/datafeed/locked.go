package datafeed

import (
	"context"
	"sync"

	"barfeed/internal/model"
)

// Locked serializes access to a datafeed. The vendor adapters hold session
// state and are not safe for concurrent use on their own.
type Locked struct {
	D  Datafeed
	mu sync.Mutex
}

func (l *Locked) Name() string { return l.D.Name() }

func (l *Locked) Init(ctx context.Context, username, password string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.D.Init(ctx, username, password)
}

func (l *Locked) QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.D.QueryHistory(ctx, req)
}
