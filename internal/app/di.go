package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"barfeed/internal/config"
	"barfeed/internal/datafeed"
	"barfeed/internal/datafeed/cache"
	"barfeed/internal/datafeed/ratelimit"
	"barfeed/internal/export"
	"barfeed/internal/httpx"
	"barfeed/internal/saver"
	"barfeed/internal/store"
)

// ProvideHTTPClient creates the vendor transport (for Wire).
func ProvideHTTPClient(cfg config.Config) *httpx.Client {
	return httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
}

// ProvideDatafeed selects the vendor and wraps it with locking, rate limiting
// and caching as configured (for Wire).
func ProvideDatafeed(cfg config.Config, httpClient *httpx.Client) (datafeed.Datafeed, error) {
	base, err := datafeed.New(cfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating datafeed: %w", err)
	}
	log.WithField("vendor", base.Name()).Info("using datafeed")

	var d datafeed.Datafeed = &datafeed.Locked{D: base}
	// Prefer token bucket with burst if RPM is set, otherwise use min-interval
	if cfg.Limits.MaxRequestsPerMinute > 0 {
		d = &ratelimit.TokenBucketDatafeed{D: d, TB: ratelimit.PerMinute(cfg.Limits.MaxRequestsPerMinute, cfg.Limits.Burst)}
	} else if cfg.Limits.MinRequestIntervalSec > 0 {
		d = &ratelimit.MinInterval{D: d, Interval: time.Duration(cfg.Limits.MinRequestIntervalSec) * time.Second}
	}
	if cfg.Cache.TTLSeconds > 0 {
		d = cache.New(d, time.Duration(cfg.Cache.TTLSeconds)*time.Second, time.Duration(cfg.Cache.CleanupSeconds)*time.Second)
	}
	return d, nil
}

// ProvideSaver creates the file saver for cfg.Export.Format (for Wire).
func ProvideSaver(cfg config.Config) (saver.Saver, error) {
	s := saver.New(cfg.Export.Format)
	if s == nil {
		return nil, fmt.Errorf("unsupported export format %q (use: csv, parquet, json)", cfg.Export.Format)
	}
	return s, nil
}

// OpenBarStore connects to Postgres and makes sure the bars table exists.
// The returned func closes the connection.
func OpenBarStore(ctx context.Context, cfg config.Config) (*store.BarStore, func(), error) {
	if cfg.Postgres.URL == "" {
		return nil, nil, fmt.Errorf("database url not set (DATABASE_URL)")
	}
	conn, err := store.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = conn.Close(context.Background()) }

	s := store.New(conn, cfg.Postgres.Table)
	if err := s.EnsureSchema(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}

// NewUploader builds the S3 uploader from cfg.
func NewUploader(cfg config.Config) (*export.Uploader, error) {
	if cfg.S3.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint not set (S3_ENDPOINT)")
	}
	client, err := export.NewMinioClient(cfg.S3)
	if err != nil {
		return nil, err
	}
	return export.NewUploader(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
}
