package datafeed

import (
	"context"
	"time"

	"barfeed/internal/model"
)

// Datafeed is a historical bar source backed by one vendor.
//
// Failures never surface as errors: Init reports false, and QueryHistory
// reports ok=false when the request is rejected (not initialized, unknown
// symbol, unsupported interval or a failed remote call). A request the vendor
// answers without rows yields an empty, non-nil slice and ok=true.
type Datafeed interface {
	Name() string
	Init(ctx context.Context, username, password string) bool
	QueryHistory(ctx context.Context, req model.HistoryRequest) ([]model.Bar, bool)
}

// clock is swapped in tests.
type clock func() time.Time
