package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"barfeed/internal/aggregate"
	"barfeed/internal/config"
	"barfeed/internal/datafeed"
	"barfeed/internal/model"
	"barfeed/internal/saver"
)

var (
	ErrInitFailed = errors.New("datafeed init failed")
	ErrRejected   = errors.New("history request rejected")
)

// App holds the dependencies built by Wire.
type App struct {
	Config   config.Config
	Datafeed datafeed.Datafeed
	Saver    saver.Saver
}

// BarSaver persists fetched bars.
type BarSaver interface {
	SaveBars(ctx context.Context, bars []model.Bar) (int64, error)
	LatestBar(ctx context.Context, symbol string, exchange model.Exchange, interval model.Interval) (time.Time, error)
}

// FileUploader copies an exported file to remote storage.
type FileUploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// Sinks are the optional destinations beyond the local file. With Resume set,
// the query starts at the latest bar already in Store and only newer bars are
// kept.
type Sinks struct {
	Store    BarSaver
	Uploader FileUploader
	Resume   bool
}

type FetchResult struct {
	Path   string
	Bars   int
	Stored int64
	Object string
	// UpToDate is set when Store already covers the requested range and
	// nothing was queried.
	UpToDate bool
}

// Fetch initializes the datafeed, queries req and writes the bars to
// Config.Export.Dir, then to any configured sinks.
func (a *App) Fetch(ctx context.Context, req model.HistoryRequest, sinks Sinks) (FetchResult, error) {
	var res FetchResult

	var latest time.Time
	if sinks.Resume && sinks.Store != nil {
		var err error
		latest, err = sinks.Store.LatestBar(ctx, req.Symbol, req.Exchange, req.Interval)
		if err != nil {
			return res, err
		}
		if !latest.IsZero() {
			if !latest.Before(req.End) {
				log.WithFields(log.Fields{"symbol": req.VtSymbol(), "latest": latest}).Info("store is up to date")
				res.UpToDate = true
				return res, nil
			}
			if latest.After(req.Start) {
				req.Start = latest
			}
		}
	}

	if !a.Datafeed.Init(ctx, "", "") {
		return res, fmt.Errorf("%s: %w", a.Datafeed.Name(), ErrInitFailed)
	}
	bars, ok := a.Datafeed.QueryHistory(ctx, req)
	if !ok {
		return res, fmt.Errorf("%s %s: %w", req.VtSymbol(), req.Interval, ErrRejected)
	}
	bars = after(aggregate.Dedup(bars), latest)
	res.Bars = len(bars)

	dir := a.Config.Export.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, fmt.Errorf("creating export dir: %w", err)
	}
	res.Path = filepath.Join(dir, saver.FileName(req, a.Saver.Extension()))
	if err := a.Saver.Save(bars, res.Path); err != nil {
		return res, fmt.Errorf("saving %s: %w", res.Path, err)
	}
	first, last := aggregate.Span(bars)
	log.WithFields(log.Fields{"path": res.Path, "bars": res.Bars, "first": first, "last": last}).Info("saved bars")

	if sinks.Store != nil {
		n, err := sinks.Store.SaveBars(ctx, bars)
		if err != nil {
			return res, err
		}
		res.Stored = n
		log.WithField("rows", n).Info("stored bars")
	}
	if sinks.Uploader != nil {
		object, err := sinks.Uploader.Upload(ctx, res.Path)
		if err != nil {
			return res, err
		}
		res.Object = object
	}
	return res, nil
}

// after drops bars at or before t. A zero t keeps everything.
func after(bars []model.Bar, t time.Time) []model.Bar {
	if t.IsZero() {
		return bars
	}
	out := bars[:0]
	for _, b := range bars {
		if b.Datetime.After(t) {
			out = append(out, b)
		}
	}
	return out
}
